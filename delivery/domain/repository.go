package domain

import "context"

// Repository defines typed persistence for Delivery + HistoryEntry + Tariff
// (its Domain Store).
type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	GetByID(ctx context.Context, id int64) (*Delivery, error)

	// FindByPhone returns the most recent Delivery with that phone;
	// openOnly excludes closed statuses.
	FindByPhone(ctx context.Context, phone string, openOnly bool) (*Delivery, error)

	// FindByMessageID is the primary key for reply-threaded updates.
	FindByMessageID(ctx context.Context, externalMessageID string) (*Delivery, error)

	Update(ctx context.Context, d *Delivery) error
	Delete(ctx context.Context, id int64) error // cascades history first

	List(ctx context.Context, f Filter) ([]*Delivery, Pagination, error)
	DailyStats(ctx context.Context, date *string, agencyID, groupID *int64) (DailyStats, error)
	Search(ctx context.Context, agencyID *int64, query string) ([]*Delivery, error)

	SaveHistory(ctx context.Context, entry *HistoryEntry) error
	ListHistory(ctx context.Context, deliveryID int64) ([]*HistoryEntry, error)

	// HasHistoryForMessageID supports the `collected` dedup rule: it scans
	// HistoryEntry.Details for externalMessageID.
	HasHistoryForMessageID(ctx context.Context, deliveryID int64, externalMessageID string) (bool, error)

	GetTariff(ctx context.Context, agencyID int64, quartier string) (*Tariff, error)

	// BulkCreate implements POST /deliveries/bulk: 1-100 rows, each
	// persisted in its own savepoint so one bad row never rolls back the
	// others.
	BulkCreate(ctx context.Context, rows []*Delivery) (BulkResult, error)
}

// BulkResult mirrors the wire shape POST /deliveries/bulk returns.
type BulkResult struct {
	Created int
	Results []*Delivery
	Failed []BulkFailure
}

type BulkFailure struct {
	Index int
	Error string
}
