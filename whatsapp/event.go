// Package whatsapp is the inbound-event adapter boundary: it translates
// whatsmeow's group-message events into the ingestion pipeline's
// InboundEvent and dispatches them through the per-group worker pool, and
// sends outbound confirmations/clarifications. The transport protocol
// itself is never reimplemented, grounded on
// infrastructure/whatsapp/adapter's whatsmeow usage.
package whatsapp

import (
	"time"

	"github.com/doualaexpress/deligate/ingestion/pipeline"
)

// RawInboundEvent is the minimal shape the transport library must supply:
// body, external_message_id, external_group_id, group_display_name,
// is_group, from_self, quoted_external_message_id, timestamp. Timestamp is
// kept here for logging/debugging even though the pipeline itself is
// timestamp-agnostic.
type RawInboundEvent struct {
	Body string
	ExternalMessageID string
	ExternalGroupID string
	GroupDisplayName string
	IsGroup bool
	FromSelf bool
	QuotedExternalMessageID string
	Timestamp time.Time
}

func (r RawInboundEvent) toInboundEvent() pipeline.InboundEvent {
	return pipeline.InboundEvent{
		Body: r.Body,
		ExternalMessageID: r.ExternalMessageID,
		ExternalGroupID: r.ExternalGroupID,
		GroupDisplayName: r.GroupDisplayName,
		IsGroup: r.IsGroup,
		FromSelf: r.FromSelf,
		QuotedExternalMessageID: r.QuotedExternalMessageID,
	}
}
