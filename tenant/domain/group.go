package domain

import "time"

// Group is a WhatsApp channel bound to exactly one Agency.
type Group struct {
	ID int64 `json:"id"`
	AgencyID int64 `json:"agency_id"`
	ExternalGroupID string `json:"external_group_id"`
	Name string `json:"name"`
	Active bool `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
