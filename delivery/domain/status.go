package domain

import "github.com/doualaexpress/deligate/pkg/money"

// TransitionInput carries the pieces of a status-change mutation that can
// only come from outside the pure algebra: an explicit manual fee/payment
// supplied in the WhatsApp body, and a tariff amount already resolved by the
// caller (the Update Resolver consults the Tariff repository; this package
// stays free of I/O per its "classification before routing" design note).
type TransitionInput struct {
	ManualFee *int64 // explicit fee in the mutation; 0 is a valid explicit value
	ManualPaid *int64 // explicit amount_paid in the mutation
	TariffFee *int64 // resolved tariff(agency_id, quartier) amount, if any
}

// TransitionResult is the target state derived by ApplyStatusTransition.
type TransitionResult struct {
	Fee int64
	Paid int64
}

func maxZero(v int64) int64 {
	return int64(money.MaxZero(money.Minor(v)))
}

// ApplyStatusTransition implements its status-transition algebra: given
// the delivery's state *before* the mutation (prev status, current fee/due/
// paid) and the desired target status, it derives the new delivery_fee and
// amount_paid as a pure function of current state — never as a delta. This
// is what makes re-delivery of the same inbound message idempotent.
func ApplyStatusTransition(d *Delivery, prev Status, target Status, in TransitionInput) TransitionResult {
	switch target {
	case StatusDelivered:
		fee := deliveredFee(d, in)
		paid := deliveredPaid(d, fee, in)
		return TransitionResult{Fee: fee, Paid: paid}

	case StatusClientAbsent:
		fee := deliveredFee(d, in)
		return TransitionResult{Fee: fee, Paid: 0}

	case StatusPickup:
		return TransitionResult{Fee: PickupFee, Paid: maxZero(d.AmountDue - PickupFee)}

	case StatusPresentZone1:
		return TransitionResult{Fee: Zone1Fee, Paid: 0}

	case StatusPresentZone2:
		return TransitionResult{Fee: Zone2Fee, Paid: 0}

	case StatusFailed:
		paid := d.AmountPaid
		if prev == StatusDelivered && d.DeliveryFee != 0 {
			paid = 0
		} else if d.AmountPaid > 0 {
			paid = 0
		}
		return TransitionResult{Fee: 0, Paid: paid}

	default:
		// Any other target (chiefly "pending"): apply the "leaving" rules.
		if prev == StatusDelivered {
			return TransitionResult{Fee: 0, Paid: 0} // revert
		}
		if prev == StatusPresentZone1 || prev == StatusPresentZone2 {
			return TransitionResult{Fee: 0, Paid: d.AmountPaid}
		}
		return TransitionResult{Fee: d.DeliveryFee, Paid: d.AmountPaid}
	}
}

// deliveredFee resolves the → delivered / → client_absent fee-source
// priority: (a) explicit manual fee, (b) existing non-zero row fee, (c)
// tariff, else leave unset (kept at 0, per its recommendation to always
// write 0 rather than null for "no fee").
func deliveredFee(d *Delivery, in TransitionInput) int64 {
	if in.ManualFee != nil {
		return *in.ManualFee
	}
	if d.DeliveryFee != 0 {
		return d.DeliveryFee
	}
	if in.TariffFee != nil {
		return *in.TariffFee
	}
	return 0
}

func deliveredPaid(d *Delivery, fee int64, in TransitionInput) int64 {
	if in.ManualPaid != nil {
		return *in.ManualPaid
	}
	if d.AmountPaid == 0 && d.AmountDue > 0 {
		return maxZero(d.AmountDue - fee)
	}
	if d.AmountPaid > 0 {
		return maxZero(d.AmountPaid - fee)
	}
	return d.AmountPaid
}

// ApplyCollected implements the additive "collected X" mutation: it
// adds amount to amount_paid and, if the result reaches amount_due,
// additionally applies the → delivered fee rule. Deduplication by
// external_message_id is the caller's responsibility (the resolver checks
// history before calling this).
func ApplyCollected(d *Delivery, amount int64, in TransitionInput) (paid int64, becameDelivered bool, fee int64) {
	paid = d.AmountPaid + amount
	fee = d.DeliveryFee
	if paid >= d.AmountDue {
		fee = deliveredFee(d, in)
		becameDelivered = true
	}
	return paid, becameDelivered, fee
}

// ApplyContentModification implements the `modifier:` mutation:
// updates items and/or amount_due, recomputing amount_paid when amount_due
// changes on an already-delivered row.
func ApplyContentModification(d *Delivery, newAmountDue *int64, newItems *string) (amountDue int64, amountPaid int64, items string) {
	amountDue, amountPaid, items = d.AmountDue, d.AmountPaid, d.Items
	if newItems != nil {
		items = *newItems
	}
	if newAmountDue != nil {
		amountDue = *newAmountDue
		if d.Status == StatusDelivered {
			amountPaid = maxZero(amountDue - d.DeliveryFee)
		}
	}
	return amountDue, amountPaid, items
}
