package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// OutboundSender implements pipeline.Confirmer: best-effort confirmation
// and clarification sends, bounded by three attempts with exponential
// backoff capped at 10s, grounded on
// infrastructure/whatsapp/adapter/messaging.go's SendMessage.
type OutboundSender struct {
	Client *whatsmeow.Client
}

func NewOutboundSender(client *whatsmeow.Client) *OutboundSender {
	return &OutboundSender{Client: client}
}

const (
	maxSendAttempts = 3
	sendBackoffBase = 500 * time.Millisecond
	sendBackoffCap = 10 * time.Second
)

func (o *OutboundSender) SendConfirmation(ctx context.Context, externalGroupID, text string) error {
	jid, err := types.ParseJID(externalGroupID)
	if err != nil {
		return fmt.Errorf("invalid group jid %q: %w", externalGroupID, err)
	}

	msg := &waE2E.Message{Conversation: proto.String(text)}

	var lastErr error
	backoff := sendBackoffBase
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		_, lastErr = o.Client.SendMessage(ctx, jid, msg)
		if lastErr == nil {
			return nil
		}
		logrus.WithError(lastErr).Warnf("[WHATSAPP] confirmation send attempt %d/%d failed for group %s", attempt, maxSendAttempts, externalGroupID)
		if attempt == maxSendAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > sendBackoffCap {
			backoff = sendBackoffCap
		}
	}
	return lastErr
}
