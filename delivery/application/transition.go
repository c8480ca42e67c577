package application

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/doualaexpress/deligate/delivery/domain"
)

// StatusChangeRequest is the input to a status transition, whether it comes
// from the HTTP PUT /deliveries/:id endpoint or the Update Resolver.
type StatusChangeRequest struct {
	Target domain.Status
	ManualFee *int64
	ManualPaid *int64
	Actor string
}

// ApplyStatusChange resolves the tariff (if needed), derives the target
// state via domain.ApplyStatusTransition, persists it with Repo.Update, then
// appends one HistoryEntry with Repo.SaveHistory. The two writes are separate
// statements, not one transaction: if SaveHistory fails, the updated row is
// not rolled back. The caller is responsible for the surrounding per-group
// serialisation; this method itself is safe to call concurrently
// across different deliveries.
func (s *Service) ApplyStatusChange(ctx context.Context, d *domain.Delivery, req StatusChangeRequest) error {
	prev := d.Status

	var in domain.TransitionInput
	in.ManualFee = req.ManualFee
	in.ManualPaid = req.ManualPaid
	if req.Target == domain.StatusDelivered || req.Target == domain.StatusClientAbsent {
		if d.AgencyID != nil && d.Quartier != "" {
			if tariff, err := s.Repo.GetTariff(ctx, *d.AgencyID, d.Quartier); err == nil && tariff != nil {
				in.TariffFee = &tariff.Amount
			}
		}
	}

	result := domain.ApplyStatusTransition(d, prev, req.Target, in)
	d.Status = req.Target
	d.DeliveryFee = result.Fee
	d.AmountPaid = result.Paid

	if err := s.Repo.Update(ctx, d); err != nil {
		return err
	}

	actor := req.Actor
	if actor == "" {
		actor = domain.DefaultActor
	}
	details, _ := json.Marshal(map[string]any{
		"from_status": prev,
		"to_status": req.Target,
		"delivery_fee": d.DeliveryFee,
		"amount_paid": d.AmountPaid,
	})
	return s.Repo.SaveHistory(ctx, &domain.HistoryEntry{
		DeliveryID: d.ID,
		Action: domain.ActionStatusChanged,
		Details: string(details),
		Actor: actor,
	})
}

// ApplyCollected implements the additive `collected X` mutation with
// external_message_id deduplication.
func (s *Service) ApplyCollected(ctx context.Context, d *domain.Delivery, amount int64, externalMessageID, actor string) (bool, error) {
	if externalMessageID != "" {
		dup, err := s.Repo.HasHistoryForMessageID(ctx, d.ID, externalMessageID)
		if err != nil {
			return false, err
		}
		if dup {
			return false, nil
		}
	}

	var in domain.TransitionInput
	if d.AgencyID != nil && d.Quartier != "" {
		if tariff, err := s.Repo.GetTariff(ctx, *d.AgencyID, d.Quartier); err == nil && tariff != nil {
			in.TariffFee = &tariff.Amount
		}
	}

	paid, becameDelivered, fee := domain.ApplyCollected(d, amount, in)
	d.AmountPaid = paid
	d.DeliveryFee = fee
	if becameDelivered {
		d.Status = domain.StatusDelivered
	}

	if err := s.Repo.Update(ctx, d); err != nil {
		return false, err
	}

	if actor == "" {
		actor = domain.DefaultActor
	}
	details, _ := json.Marshal(map[string]any{
		"amount": amount,
		"external_message_id": externalMessageID,
		"became_delivered": becameDelivered,
	})
	err := s.Repo.SaveHistory(ctx, &domain.HistoryEntry{
		DeliveryID: d.ID,
		Action: domain.ActionPaymentReceived,
		Details: string(details),
		Actor: actor,
	})
	return becameDelivered, err
}

// ApplyContentModification implements the `modifier:` mutation.
func (s *Service) ApplyContentModification(ctx context.Context, d *domain.Delivery, newAmountDue *int64, newItems *string, actor string) error {
	amountDue, amountPaid, items := domain.ApplyContentModification(d, newAmountDue, newItems)
	d.AmountDue, d.AmountPaid, d.Items = amountDue, amountPaid, items

	if err := s.Repo.Update(ctx, d); err != nil {
		return err
	}
	if actor == "" {
		actor = domain.DefaultActor
	}
	details, _ := json.Marshal(map[string]any{"amount_due": amountDue, "items": items})
	return s.Repo.SaveHistory(ctx, &domain.HistoryEntry{
		DeliveryID: d.ID,
		Action: domain.ActionUpdated,
		Details: string(details),
		Actor: actor,
	})
}

// ApplyPhoneChange implements `changer numéro A B`: locates by phone
// A is the caller's job (the resolver calls FindByPhone); this applies the
// replacement to the already-resolved row. Rejects the change if newPhone
// already keys another open delivery, enforcing uniqueness of open
// deliveries per phone.
func (s *Service) ApplyPhoneChange(ctx context.Context, d *domain.Delivery, newPhone, actor string) error {
	existing, err := s.Repo.FindByPhone(ctx, newPhone, true)
	if err != nil && !errors.Is(err, domain.ErrDeliveryNotFound) {
		return err
	}
	if existing != nil && existing.ID != d.ID {
		return domain.ErrPhoneAlreadyOpen
	}

	oldPhone := d.Phone
	d.Phone = newPhone
	if err := s.Repo.Update(ctx, d); err != nil {
		return err
	}
	if actor == "" {
		actor = domain.DefaultActor
	}
	details, _ := json.Marshal(map[string]any{"old_phone": oldPhone, "new_phone": newPhone})
	return s.Repo.SaveHistory(ctx, &domain.HistoryEntry{
		DeliveryID: d.ID,
		Action: domain.ActionUpdated,
		Details: string(details),
		Actor: actor,
	})
}
