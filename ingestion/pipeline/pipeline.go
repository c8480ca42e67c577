// Package pipeline is the Ingestion Pipeline: Parser -> Router ->
// Store write, orchestrated per inbound event and handed to the per-group
// worker pool (pkg/msgworker) by whatsapp.Listener for ordering.
package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	deliverydomain "github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/ingestion/parser"
	"github.com/doualaexpress/deligate/ingestion/resolver"
	tenantapp "github.com/doualaexpress/deligate/tenant/application"
)

// InboundEvent is the raw event the external WhatsApp transport produces,
// as built by whatsapp.RawInboundEvent's toInboundEvent (every field but the
// timestamp).
type InboundEvent struct {
	Body string
	ExternalMessageID string
	ExternalGroupID string
	GroupDisplayName string
	IsGroup bool
	FromSelf bool
	QuotedExternalMessageID string
}

// Confirmer emits an outbound confirmation when send_confirmations is on;
// implemented by whatsapp.OutboundSender. Defined here so the
// pipeline depends only on an interface, not the transport package.
type Confirmer interface {
	SendConfirmation(ctx context.Context, externalGroupID, text string) error
}

type Pipeline struct {
	Router *tenantapp.Service
	Deliveries *deliveryapp.Service
	Resolver *resolver.Resolver
	Confirmer Confirmer
	SendConfirmations bool
}

func New(router *tenantapp.Service, deliveries *deliveryapp.Service, res *resolver.Resolver, confirmer Confirmer, sendConfirmations bool) *Pipeline {
	return &Pipeline{Router: router, Deliveries: deliveries, Resolver: res, Confirmer: confirmer, SendConfirmations: sendConfirmations}
}

// Process runs one inbound event through the pipeline. Callers are
// responsible for per-group serialisation; Process itself does not
// serialize.
func (p *Pipeline) Process(ctx context.Context, ev InboundEvent) error {
	routed, err := p.Router.Route(ctx, tenantapp.RawEvent{
		ExternalGroupID: ev.ExternalGroupID,
		GroupDisplayName: ev.GroupDisplayName,
		IsGroup: ev.IsGroup,
		FromSelf: ev.FromSelf,
	})
	if err != nil {
		return err
	}
	if !routed.Accepted {
		return nil
	}

	result := parser.Parse(ev.Body)
	switch result.Kind {
	case parser.KindIgnore:
		return nil

	case parser.KindCreate:
		return p.processCreate(ctx, ev, routed, result.Create)

	case parser.KindUpdate:
		err := p.Resolver.Apply(ctx, resolver.Event{
			ExternalMessageID: ev.ExternalMessageID,
			QuotedExternalMessageID: ev.QuotedExternalMessageID,
			Actor: deliverydomain.DefaultActor,
		}, result.Update)
		if err != nil {
			logrus.WithError(err).Infof("[INGESTION] update not applied for group %s", ev.ExternalGroupID)
			p.clarify(ctx, ev.ExternalGroupID, err)
			return nil
		}
		return nil
	}
	return nil
}

func (p *Pipeline) processCreate(ctx context.Context, ev InboundEvent, routed tenantapp.Routed, fields *parser.CreateFields) error {
	agencyID, groupID := routed.AgencyID, routed.GroupID

	delivery := &deliverydomain.Delivery{
		Phone: fields.Phone,
		Items: fields.Items,
		AmountDue: fields.AmountDue,
		Quartier: fields.Quartier,
		Carrier: fields.Carrier,
		Status: deliverydomain.StatusPending,
		AgencyID: &agencyID,
		GroupID: &groupID,
		WhatsappMessageID: ev.ExternalMessageID,
	}

	if err := p.Deliveries.Repo.Create(ctx, delivery); err != nil {
		return err
	}

	if p.SendConfirmations && p.Confirmer != nil {
		text := "Commande enregistree: " + fields.Items
		if err := p.Confirmer.SendConfirmation(ctx, ev.ExternalGroupID, text); err != nil {
			logrus.WithError(err).Warn("[INGESTION] failed to send confirmation")
		}
	}
	return nil
}

// clarify emits a best-effort clarifying message for an unresolved or
// missing update target: these classifications are internal and
// never surface as HTTP errors.
func (p *Pipeline) clarify(ctx context.Context, externalGroupID string, cause error) {
	if !p.SendConfirmations || p.Confirmer == nil {
		return
	}
	var text string
	switch cause {
	case resolver.ErrTargetUnresolved:
		text = "Impossible de determiner la commande visee: repondez a un message existant ou indiquez un numero."
	case resolver.ErrTargetMissing:
		text = "Aucune commande en cours pour ce numero."
	default:
		return
	}
	if err := p.Confirmer.SendConfirmation(ctx, externalGroupID, text); err != nil {
		logrus.WithError(err).Warn("[INGESTION] failed to send clarification")
	}
}
