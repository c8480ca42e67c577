package domain

import "time"

// HistoryAction tags the kind of mutation recorded.
type HistoryAction string

const (
	ActionCreated HistoryAction = "created"
	ActionUpdated HistoryAction = "updated"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionPaymentReceived HistoryAction = "payment_received"
)

// HistoryEntry is an append-only audit row, one per successful mutation.
type HistoryEntry struct {
	ID int64 `json:"id"`
	DeliveryID int64 `json:"delivery_id"`
	Action HistoryAction `json:"action"`
	Details string `json:"details"` // typically a JSON snapshot
	Actor string `json:"actor"` // "bot" by default, else the authenticated user
	CreatedAt time.Time `json:"created_at"`
}

const DefaultActor = "bot"
