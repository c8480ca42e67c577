package domain

import "time"

// Filter captures list_deliveries' filter parameters. AgencyID
// is populated by the caller from the TenantScope, not by the HTTP request.
type Filter struct {
	Status Status
	Phone string // substring match
	Date *time.Time
	StartDate *time.Time
	EndDate *time.Time
	AgencyID *int64
	GroupID *int64

	Page int
	Limit int

	SortBy string
	SortDesc bool
}

// AllowedSortColumns is the whitelist list_deliveries' sort_by parameter is
// checked against; an unknown SortBy is silently replaced with
// DefaultSortColumn rather than rejected.
var AllowedSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"amount_due": true,
	"amount_paid": true,
	"status": true,
	"phone": true,
}

const DefaultSortColumn = "created_at"

// NormalizedSort returns a column/direction pair safe to interpolate into
// SQL: unknown columns fall back to the default rather than erroring.
func (f Filter) NormalizedSort() (column string, desc bool) {
	if f.SortBy != "" && AllowedSortColumns[f.SortBy] {
		return f.SortBy, f.SortDesc
	}
	return DefaultSortColumn, true
}

// Pagination mirrors the wire shape in the HTTP response envelope.
type Pagination struct {
	Page int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// DailyStats is the result of daily_stats: total count, per-status
// counts, and the three monetary aggregates.
type DailyStats struct {
	Date string `json:"date"`
	Total int `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	CollectedSum int64 `json:"collected"` // Σ amount_paid
	RemainingSum int64 `json:"remaining"` // Σ (amount_due - amount_paid)
	DueSum int64 `json:"due"` // Σ amount_due
}
