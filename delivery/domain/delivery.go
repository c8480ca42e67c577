// Package domain holds the Delivery aggregate and the pure status-transition
// algebra, grounded on the teacher's clients/domain model shape.
package domain

import "time"

// Status is one of the fixed delivery lifecycle states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPickup Status = "pickup"
	StatusDelivered Status = "delivered"
	StatusFailed Status = "failed"
	StatusClientAbsent Status = "client_absent"
	StatusPresentZone1 Status = "present_ne_decroche_zone1"
	StatusPresentZone2 Status = "present_ne_decroche_zone2"
)

// closedStatuses lists the statuses find_delivery_by_phone(open_only=true)
// treats as closed. "cancelled" is listed even though no lifecycle
// operation in this system ever assigns it, so the guard still excludes
// it if some future caller writes that value directly.
var closedStatuses = map[Status]bool{
	StatusDelivered: true,
	StatusFailed: true,
	Status("cancelled"): true,
}

func (s Status) IsOpen() bool {
	return !closedStatuses[s]
}

// Delivery is the main domain record.
type Delivery struct {
	ID int64 `json:"id"`
	Phone string `json:"phone"`
	CustomerName string `json:"customer_name,omitempty"`
	Items string `json:"items"`
	AmountDue int64 `json:"amount_due"`
	AmountPaid int64 `json:"amount_paid"`
	DeliveryFee int64 `json:"delivery_fee"`
	Status Status `json:"status"`
	Quartier string `json:"quartier,omitempty"`
	Notes string `json:"notes,omitempty"`
	Carrier string `json:"carrier,omitempty"`
	AgencyID *int64 `json:"agency_id,omitempty"`
	GroupID *int64 `json:"group_id,omitempty"`
	WhatsappMessageID string `json:"whatsapp_message_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining is amount_due - amount_paid, floored at zero.
func (d *Delivery) Remaining() int64 {
	r := d.AmountDue - d.AmountPaid
	if r < 0 {
		return 0
	}
	return r
}
