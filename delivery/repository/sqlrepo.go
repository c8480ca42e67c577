// Package repository implements delivery/domain.Repository over
// core/storage.Adapter, grounded on workspace/repository/sqlite_repo.go's
// raw `?`-placeholder query style generalised to Delivery/HistoryEntry/
// Tariff and the filter/pagination/stats operations this domain needs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doualaexpress/deligate/core/storage"
	"github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/pkg/money"
)

type SQLRepo struct {
	db *storage.Adapter
}

func NewSQLRepo(db *storage.Adapter) *SQLRepo {
	return &SQLRepo{db: db}
}

func (r *SQLRepo) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			phone TEXT NOT NULL,
			customer_name TEXT,
			items TEXT,
			amount_due REAL NOT NULL DEFAULT 0,
			amount_paid REAL NOT NULL DEFAULT 0,
			delivery_fee REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			quartier TEXT,
			notes TEXT,
			carrier TEXT,
			agency_id INTEGER,
			group_id INTEGER,
			whatsapp_message_id TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_phone ON deliveries(phone)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_agency ON deliveries(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_group ON deliveries(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_message_id ON deliveries(whatsapp_message_id)`,
		`CREATE TABLE IF NOT EXISTS delivery_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			delivery_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			details TEXT,
			actor TEXT NOT NULL DEFAULT 'bot',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (delivery_id) REFERENCES deliveries(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_delivery ON delivery_history(delivery_id)`,
		`CREATE TABLE IF NOT EXISTS tariffs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agency_id INTEGER NOT NULL,
			quartier TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			UNIQUE(agency_id, quartier)
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return fmt.Errorf("init delivery schema: %w", err)
		}
	}
	return nil
}

const deliveryColumns = "id, phone, customer_name, items, amount_due, amount_paid, delivery_fee, status, quartier, notes, carrier, agency_id, group_id, whatsapp_message_id, created_at, updated_at"

func scanDelivery(scanner interface {
	Scan(dest...any) error
}) (*domain.Delivery, error) {
	d := &domain.Delivery{}
	var customerName, quartier, notes, carrier, msgID sql.NullString
	var agencyID, groupID sql.NullInt64
	var amountDue, amountPaid, fee float64

	err := scanner.Scan(&d.ID, &d.Phone, &customerName, &d.Items, &amountDue, &amountPaid, &fee,
		&d.Status, &quartier, &notes, &carrier, &agencyID, &groupID, &msgID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}

	d.CustomerName, d.Quartier, d.Notes, d.Carrier, d.WhatsappMessageID = customerName.String, quartier.String, notes.String, carrier.String, msgID.String
	d.AmountDue, d.AmountPaid, d.DeliveryFee = int64(amountDue), int64(amountPaid), int64(fee)
	if agencyID.Valid {
		v := agencyID.Int64
		d.AgencyID = &v
	}
	if groupID.Valid {
		v := groupID.Int64
		d.GroupID = &v
	}
	return d, nil
}

// roundMoney implements the storage adapter's monetary-rounding guarantee:
// half-away-from-zero to two decimals, rejecting negatives.
func roundMoney(v int64) (int64, error) {
	if v < 0 {
		return 0, domain.ErrNegativeAmount
	}
	return int64(money.RoundHalfAwayFromZero(float64(v))), nil
}

func (r *SQLRepo) Create(ctx context.Context, d *domain.Delivery) error {
	amountDue, err := roundMoney(d.AmountDue)
	if err != nil {
		return err
	}
	amountPaid, err := roundMoney(d.AmountPaid)
	if err != nil {
		return err
	}
	fee, err := roundMoney(d.DeliveryFee)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	if d.Status == "" {
		d.Status = domain.StatusPending
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertDeliveryTx(ctx, r.db, tx, d, amountDue, amountPaid, fee)
	if err != nil {
		return err
	}
	d.ID = id
	d.AmountDue, d.AmountPaid, d.DeliveryFee = amountDue, amountPaid, fee

	if err := insertHistoryTx(ctx, r.db, tx, d.ID, domain.ActionCreated, "{}", domain.DefaultActor); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDeliveryTx(ctx context.Context, a *storage.Adapter, tx *sql.Tx, d *domain.Delivery, amountDue, amountPaid, fee int64) (int64, error) {
	query := a.Rewrite(`INSERT INTO deliveries
		(phone, customer_name, items, amount_due, amount_paid, delivery_fee, status, quartier, notes, carrier, agency_id, group_id, whatsapp_message_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	args := []any{d.Phone, d.CustomerName, d.Items, amountDue, amountPaid, fee, string(d.Status), d.Quartier, d.Notes, d.Carrier, d.AgencyID, d.GroupID, d.WhatsappMessageID, d.CreatedAt, d.UpdatedAt}

	if a.Backend == storage.Postgres {
		var id int64
		if err := tx.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertHistoryTx(ctx context.Context, a *storage.Adapter, tx *sql.Tx, deliveryID int64, action domain.HistoryAction, details, actor string) error {
	_, err := tx.ExecContext(ctx, a.Rewrite(`INSERT INTO delivery_history (delivery_id, action, details, actor, created_at) VALUES (?, ?, ?, ?, ?)`),
		deliveryID, string(action), details, actor, time.Now().UTC())
	return err
}

func (r *SQLRepo) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, "SELECT "+deliveryColumns+" FROM deliveries WHERE id = ?", id)
	return scanDelivery(row)
}

// FindByPhone returns the most recent Delivery with that phone.
func (r *SQLRepo) FindByPhone(ctx context.Context, phone string, openOnly bool) (*domain.Delivery, error) {
	query := "SELECT " + deliveryColumns + " FROM deliveries WHERE phone = ?"
	if openOnly {
		query += " AND status NOT IN ('delivered', 'failed', 'cancelled')"
	}
	query += " ORDER BY created_at DESC LIMIT 1"
	row := r.db.QueryRow(ctx, query, phone)
	return scanDelivery(row)
}

func (r *SQLRepo) FindByMessageID(ctx context.Context, externalMessageID string) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, "SELECT "+deliveryColumns+" FROM deliveries WHERE whatsapp_message_id = ? ORDER BY created_at DESC LIMIT 1", externalMessageID)
	return scanDelivery(row)
}

func (r *SQLRepo) Update(ctx context.Context, d *domain.Delivery) error {
	amountDue, err := roundMoney(d.AmountDue)
	if err != nil {
		return err
	}
	amountPaid, err := roundMoney(d.AmountPaid)
	if err != nil {
		return err
	}
	fee, err := roundMoney(d.DeliveryFee)
	if err != nil {
		return err
	}
	d.AmountDue, d.AmountPaid, d.DeliveryFee = amountDue, amountPaid, fee
	d.UpdatedAt = time.Now().UTC()

	_, err = r.db.Exec(ctx, `UPDATE deliveries SET phone=?, customer_name=?, items=?, amount_due=?, amount_paid=?, delivery_fee=?, status=?, quartier=?, notes=?, carrier=?, agency_id=?, group_id=?, whatsapp_message_id=?, updated_at=? WHERE id=?`,
		d.Phone, d.CustomerName, d.Items, amountDue, amountPaid, fee, string(d.Status), d.Quartier, d.Notes, d.Carrier, d.AgencyID, d.GroupID, d.WhatsappMessageID, d.UpdatedAt, d.ID)
	return err
}

// Delete cascades history before deleting the row (cascade on all backends).
func (r *SQLRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, r.db.Rewrite("DELETE FROM delivery_history WHERE delivery_id = ?"), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.db.Rewrite("DELETE FROM deliveries WHERE id = ?"), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLRepo) List(ctx context.Context, f domain.Filter) ([]*domain.Delivery, domain.Pagination, error) {
	var where []string
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Phone != "" {
		where = append(where, "phone LIKE ?")
		args = append(args, "%"+f.Phone+"%")
	}
	if f.Date != nil {
		where = append(where, "DATE(created_at, 'localtime') = ?")
		args = append(args, f.Date.Format("2006-01-02"))
	}
	if f.StartDate != nil {
		where = append(where, "DATE(created_at, 'localtime') >= ?")
		args = append(args, f.StartDate.Format("2006-01-02"))
	}
	if f.EndDate != nil {
		where = append(where, "DATE(created_at, 'localtime') <= ?")
		args = append(args, f.EndDate.Format("2006-01-02"))
	}
	if f.AgencyID != nil {
		where = append(where, "agency_id = ?")
		args = append(args, *f.AgencyID)
	}
	if f.GroupID != nil {
		where = append(where, "group_id = ?")
		args = append(args, *f.GroupID)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countRow := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM deliveries"+whereClause, args...)
	if err := countRow.Scan(&total); err != nil {
		return nil, domain.Pagination{}, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	sortCol, desc := f.NormalizedSort()
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	offset := (page - 1) * limit

	query := "SELECT " + deliveryColumns + " FROM deliveries" + whereClause +
		fmt.Sprintf(" ORDER BY %s %s LIMIT ? OFFSET ?", sortCol, dir)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	defer rows.Close()

	var out []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, domain.Pagination{}, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Pagination{}, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return out, domain.Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

func (r *SQLRepo) DailyStats(ctx context.Context, date *string, agencyID, groupID *int64) (domain.DailyStats, error) {
	where := []string{"DATE(created_at, 'localtime') = DATE('now', 'localtime')"}
	var args []any
	dateLabel := "today"
	if date != nil {
		where = []string{"DATE(created_at, 'localtime') = ?"}
		args = append(args, *date)
		dateLabel = *date
	}
	if agencyID != nil {
		where = append(where, "agency_id = ?")
		args = append(args, *agencyID)
	}
	if groupID != nil {
		where = append(where, "group_id = ?")
		args = append(args, *groupID)
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	stats := domain.DailyStats{Date: dateLabel, ByStatus: map[domain.Status]int{}}

	rows, err := r.db.Query(ctx, "SELECT status, COUNT(*), COALESCE(SUM(amount_paid),0), COALESCE(SUM(amount_due),0) FROM deliveries"+whereClause+" GROUP BY status", args...)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		var paidSum, dueSum float64
		if err := rows.Scan(&status, &count, &paidSum, &dueSum); err != nil {
			return stats, err
		}
		stats.ByStatus[domain.Status(status)] = count
		stats.Total += count
		stats.CollectedSum += int64(paidSum)
		stats.DueSum += int64(dueSum)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}
	stats.RemainingSum = stats.DueSum - stats.CollectedSum
	if stats.RemainingSum < 0 {
		stats.RemainingSum = 0
	}
	return stats, nil
}

// Search implements the ILIKE-style substring search over
// phone/items/customer_name/quartier with a 100-row cap.
func (r *SQLRepo) Search(ctx context.Context, agencyID *int64, query string) ([]*domain.Delivery, error) {
	like := "%" + query + "%"
	sqlQuery := "SELECT " + deliveryColumns + " FROM deliveries WHERE (phone LIKE ? OR items LIKE ? OR customer_name LIKE ? OR quartier LIKE ?)"
	args := []any{like, like, like, like}
	if agencyID != nil {
		sqlQuery += " AND agency_id = ?"
		args = append(args, *agencyID)
	}
	sqlQuery += " ORDER BY created_at DESC LIMIT 100"

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLRepo) SaveHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry.Actor == "" {
		entry.Actor = domain.DefaultActor
	}
	entry.CreatedAt = time.Now().UTC()
	id, err := r.db.InsertReturningID(ctx, `INSERT INTO delivery_history (delivery_id, action, details, actor, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.DeliveryID, string(entry.Action), entry.Details, entry.Actor, entry.CreatedAt)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *SQLRepo) ListHistory(ctx context.Context, deliveryID int64) ([]*domain.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, "SELECT id, delivery_id, action, details, actor, created_at FROM delivery_history WHERE delivery_id = ? ORDER BY created_at DESC", deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		h := &domain.HistoryEntry{}
		var details sql.NullString
		if err := rows.Scan(&h.ID, &h.DeliveryID, &h.Action, &details, &h.Actor, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Details = details.String
		out = append(out, h)
	}
	return out, rows.Err()
}

// HasHistoryForMessageID supports the `collected` dedup rule: a
// plain LIKE scan over the JSON details column is sufficient since
// external_message_id values are opaque tokens unlikely to collide as
// substrings, and this keeps the schema free of a secondary index solely
// for deduplication.
func (r *SQLRepo) HasHistoryForMessageID(ctx context.Context, deliveryID int64, externalMessageID string) (bool, error) {
	var count int
	row := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM delivery_history WHERE delivery_id = ? AND details LIKE ?", deliveryID, "%"+externalMessageID+"%")
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SQLRepo) GetTariff(ctx context.Context, agencyID int64, quartier string) (*domain.Tariff, error) {
	t := &domain.Tariff{}
	var amount float64
	row := r.db.QueryRow(ctx, "SELECT id, agency_id, quartier, amount FROM tariffs WHERE agency_id = ? AND quartier = ?", agencyID, quartier)
	err := row.Scan(&t.ID, &t.AgencyID, &t.Quartier, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Amount = int64(amount)
	return t, nil
}
