package whatsapp

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/doualaexpress/deligate/ingestion/pipeline"
	"github.com/doualaexpress/deligate/pkg/msgworker"
)

// Listener wires a whatsmeow client's event stream into the per-group
// worker pool, grounded on infrastructure/whatsapp/adapter/events.go's
// handleEvent switch (here narrowed to the one event kind this domain
// cares about: group text messages).
type Listener struct {
	Client *whatsmeow.Client
	Pool *msgworker.Pool
	Pipeline *pipeline.Pipeline
}

func NewListener(client *whatsmeow.Client, pool *msgworker.Pool, p *pipeline.Pipeline) *Listener {
	return &Listener{Client: client, Pool: pool, Pipeline: p}
}

// Register attaches the handler; call once after the client is constructed
// and before Connect.
func (l *Listener) Register() {
	l.Client.AddEventHandler(l.handleEvent)
}

func (l *Listener) handleEvent(evt interface{}) {
	msg, ok := evt.(*events.Message)
	if !ok {
		return
	}
	if msg.Info.IsFromMe {
		return
	}
	if msg.Info.Chat.String() == "status@broadcast" || msg.Info.IsIncomingBroadcast() {
		return
	}

	body := extractText(msg)
	if body == "" {
		return
	}

	raw := RawInboundEvent{
		Body: body,
		ExternalMessageID: msg.Info.ID,
		ExternalGroupID: msg.Info.Chat.String(),
		GroupDisplayName: msg.Info.PushName,
		IsGroup: strings.HasSuffix(msg.Info.Chat.String(), "@g.us"),
		FromSelf: msg.Info.IsFromMe,
		QuotedExternalMessageID: quotedMessageID(msg),
		Timestamp: msg.Info.Timestamp,
	}
	ev := raw.toInboundEvent()

	job := msgworker.IngestionJob{
		GroupID: ev.ExternalGroupID,
		Handler: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return l.Pipeline.Process(ctx, ev)
		},
	}
	if !l.Pool.TryDispatch(job) {
		logrus.Warnf("[WHATSAPP] dropped event for group %s: worker queue full", ev.ExternalGroupID)
	}
}

// extractText pulls plain body text out of the message types this domain's
// grammars actually parse: conversation and extended-text. No media
// handling; out of scope.
func extractText(msg *events.Message) string {
	if conv := msg.Message.GetConversation(); conv != "" {
		return conv
	}
	if ext := msg.Message.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}

func quotedMessageID(msg *events.Message) string {
	if ext := msg.Message.GetExtendedTextMessage(); ext != nil {
		if ctx := ext.GetContextInfo(); ctx != nil {
			return ctx.GetStanzaID()
		}
	}
	return ""
}
