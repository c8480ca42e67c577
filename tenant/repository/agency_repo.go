// Package repository implements tenant/domain's repository interfaces over
// core/storage.Adapter, following the teacher's SQLiteClientRepository
// shape (InitSchema + raw `?`-placeholder CRUD) generalised from clients to
// agencies/groups.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doualaexpress/deligate/core/storage"
	"github.com/doualaexpress/deligate/tenant/domain"
)

type AgencyRepo struct {
	db *storage.Adapter
}

func NewAgencyRepo(db *storage.Adapter) *AgencyRepo {
	return &AgencyRepo{db: db}
}

func (r *AgencyRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS agencies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'agency',
		active BOOLEAN NOT NULL DEFAULT 1,
		code TEXT,
		address TEXT,
		phone TEXT,
		logo BLOB,
		last_login_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_agencies_email ON agencies(email);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_agencies_code ON agencies(code) WHERE code IS NOT NULL;
	`)
	return err
}

func (r *AgencyRepo) Create(ctx context.Context, a *domain.Agency) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Role == "" {
		a.Role = domain.RoleAgency
	}

	id, err := r.db.InsertReturningID(ctx, `
		INSERT INTO agencies (name, email, password_hash, role, active, code, address, phone, logo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Email, a.PasswordHash, string(a.Role), a.Active, nullableString(a.Code), a.Address, a.Phone, a.Logo, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapUniqueErr(err, domain.ErrDuplicateAgency)
	}
	a.ID = id
	return nil
}

func (r *AgencyRepo) scanRow(row *sql.Row) (*domain.Agency, error) {
	a := &domain.Agency{}
	var code, address, phone sql.NullString
	var logo []byte
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Active, &code, &address, &phone, &logo, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAgencyNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Code, a.Address, a.Phone, a.Logo = code.String, address.String, phone.String, logo
	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	return a, nil
}

const agencyColumns = "id, name, email, password_hash, role, active, code, address, phone, logo, last_login_at, created_at, updated_at"

func (r *AgencyRepo) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	row := r.db.QueryRow(ctx, "SELECT "+agencyColumns+" FROM agencies WHERE id = ?", id)
	return r.scanRow(row)
}

func (r *AgencyRepo) GetByEmail(ctx context.Context, email string) (*domain.Agency, error) {
	row := r.db.QueryRow(ctx, "SELECT "+agencyColumns+" FROM agencies WHERE email = ?", email)
	return r.scanRow(row)
}

// GetByCode is case-insensitive; callers are expected to have already
// trimmed/upper-cased and rejected codes under 4 characters.
func (r *AgencyRepo) GetByCode(ctx context.Context, code string) (*domain.Agency, error) {
	row := r.db.QueryRow(ctx, "SELECT "+agencyColumns+" FROM agencies WHERE UPPER(code) = ?", strings.ToUpper(code))
	return r.scanRow(row)
}

func (r *AgencyRepo) Update(ctx context.Context, a *domain.Agency) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		UPDATE agencies SET name=?, email=?, password_hash=?, role=?, active=?, code=?, address=?, phone=?, logo=?, last_login_at=?, updated_at=?
		WHERE id=?`,
		a.Name, a.Email, a.PasswordHash, string(a.Role), a.Active, nullableString(a.Code), a.Address, a.Phone, a.Logo, a.LastLoginAt, a.UpdatedAt, a.ID,
	)
	return mapUniqueErr(err, domain.ErrDuplicateAgency)
}

func (r *AgencyRepo) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE agencies SET active=0, updated_at=? WHERE id=?", time.Now().UTC(), id)
	return err
}

func (r *AgencyRepo) List(ctx context.Context) ([]*domain.Agency, error) {
	rows, err := r.db.Query(ctx, "SELECT "+agencyColumns+" FROM agencies ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

func (r *AgencyRepo) ListActiveNonSuperAdmin(ctx context.Context) ([]*domain.Agency, error) {
	rows, err := r.db.Query(ctx, "SELECT "+agencyColumns+" FROM agencies WHERE active=1 AND role != ? ORDER BY created_at ASC", string(domain.RoleSuperAdmin))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

func (r *AgencyRepo) scanRows(rows *sql.Rows) ([]*domain.Agency, error) {
	var out []*domain.Agency
	for rows.Next() {
		a := &domain.Agency{}
		var code, address, phone sql.NullString
		var logo []byte
		var lastLogin sql.NullTime
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Active, &code, &address, &phone, &logo, &lastLogin, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Code, a.Address, a.Phone, a.Logo = code.String, address.String, phone.String, logo
		if lastLogin.Valid {
			a.LastLoginAt = &lastLogin.Time
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mapUniqueErr(err error, domainErr error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return domainErr
	}
	return err
}
