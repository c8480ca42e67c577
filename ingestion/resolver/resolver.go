// Package resolver implements the Update Resolver: target
// resolution by quoted message id or phone, then dispatch of the parsed
// mutation variant onto the Domain Store's status-transition operations.
package resolver

import (
	"context"
	"errors"

	deliveryapp "github.com/doualaexpress/deligate/delivery/application"
	deliverydomain "github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/ingestion/parser"
)

var (
	ErrTargetUnresolved = errors.New("update target could not be resolved: no quoted message and no phone found")
	ErrTargetMissing = errors.New("update target phone has no open delivery")
)

// Event is the subset of the inbound transport event the resolver needs.
type Event struct {
	ExternalMessageID string
	QuotedExternalMessageID string
	Actor string
}

type Resolver struct {
	Deliveries *deliveryapp.Service
}

func New(deliveries *deliveryapp.Service) *Resolver {
	return &Resolver{Deliveries: deliveries}
}

// resolveTarget implements the three-step target resolution: quoted message
// id first, then phone lookup restricted to open deliveries.
func (r *Resolver) resolveTarget(ctx context.Context, ev Event, upd *parser.UpdateFields) (*deliverydomain.Delivery, error) {
	if ev.QuotedExternalMessageID != "" {
		d, err := r.Deliveries.Repo.FindByMessageID(ctx, ev.QuotedExternalMessageID)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, deliverydomain.ErrDeliveryNotFound) {
			return nil, err
		}
		// fall through to phone resolution
	}

	if upd.Phone == "" {
		return nil, ErrTargetUnresolved
	}
	d, err := r.Deliveries.Repo.FindByPhone(ctx, upd.Phone, true)
	if errors.Is(err, deliverydomain.ErrDeliveryNotFound) {
		return nil, ErrTargetMissing
	}
	return d, err
}

// Apply resolves the target and dispatches the mutation variant.
func (r *Resolver) Apply(ctx context.Context, ev Event, upd *parser.UpdateFields) error {
	// Phone change is resolved by the *first* phone named in the body, not
	// by quoted-message context: the change must be applied to the
	// Delivery keyed by the first phone.
	if upd.Variant == parser.VariantPhoneChange {
		d, err := r.Deliveries.Repo.FindByPhone(ctx, upd.Phone, true)
		if errors.Is(err, deliverydomain.ErrDeliveryNotFound) {
			return ErrTargetMissing
		}
		if err != nil {
			return err
		}
		return r.Deliveries.ApplyPhoneChange(ctx, d, upd.NewPhone, ev.Actor)
	}

	target, err := r.resolveTarget(ctx, ev, upd)
	if err != nil {
		return err
	}

	switch upd.Variant {
	case parser.VariantDelivered:
		return r.Deliveries.ApplyStatusChange(ctx, target, deliveryapp.StatusChangeRequest{
			Target: deliverydomain.StatusDelivered, ManualPaid: upd.Amount, Actor: ev.Actor,
		})

	case parser.VariantFailed:
		return r.Deliveries.ApplyStatusChange(ctx, target, deliveryapp.StatusChangeRequest{
			Target: deliverydomain.StatusFailed, Actor: ev.Actor,
		})

	case parser.VariantPickup:
		return r.Deliveries.ApplyStatusChange(ctx, target, deliveryapp.StatusChangeRequest{
			Target: deliverydomain.StatusPickup, Actor: ev.Actor,
		})

	case parser.VariantPending:
		return r.Deliveries.ApplyStatusChange(ctx, target, deliveryapp.StatusChangeRequest{
			Target: deliverydomain.StatusPending, Actor: ev.Actor,
		})

	case parser.VariantCollected:
		if upd.Amount == nil {
			return nil
		}
		_, err := r.Deliveries.ApplyCollected(ctx, target, *upd.Amount, ev.ExternalMessageID, ev.Actor)
		return err

	case parser.VariantModifier:
		return r.Deliveries.ApplyContentModification(ctx, target, upd.NewAmountDue, upd.NewItems, ev.Actor)
	}

	return nil
}
