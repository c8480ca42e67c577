package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doualaexpress/deligate/core/storage"
	"github.com/doualaexpress/deligate/tenant/domain"
)

type GroupRepo struct {
	db *storage.Adapter
}

func NewGroupRepo(db *storage.Adapter) *GroupRepo {
	return &GroupRepo{db: db}
}

func (r *GroupRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agency_id INTEGER NOT NULL,
		external_group_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (agency_id) REFERENCES agencies(id)
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_groups_external_id ON groups(external_group_id);
	CREATE INDEX IF NOT EXISTS idx_groups_agency ON groups(agency_id);
	`)
	return err
}

const groupColumns = "id, agency_id, external_group_id, name, active, created_at, updated_at"

func (r *GroupRepo) scan(row *sql.Row) (*domain.Group, error) {
	g := &domain.Group{}
	err := row.Scan(&g.ID, &g.AgencyID, &g.ExternalGroupID, &g.Name, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	return g, err
}

// Create is the insertion half of its idempotent auto-provisioning: the
// unique index on external_group_id is the enforcement point; the caller
// (tenant/application.Service.Route) re-reads on conflict rather than retrying the
// insert.
func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	id, err := r.db.InsertReturningID(ctx, `
		INSERT INTO groups (agency_id, external_group_id, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.AgencyID, g.ExternalGroupID, g.Name, g.Active, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return mapUniqueErr(err, domain.ErrDuplicateGroup)
	}
	g.ID = id
	return nil
}

func (r *GroupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	return r.scan(r.db.QueryRow(ctx, "SELECT "+groupColumns+" FROM groups WHERE id = ?", id))
}

func (r *GroupRepo) GetByExternalID(ctx context.Context, externalGroupID string) (*domain.Group, error) {
	return r.scan(r.db.QueryRow(ctx, "SELECT "+groupColumns+" FROM groups WHERE external_group_id = ?", externalGroupID))
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	g.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, "UPDATE groups SET name=?, active=?, updated_at=? WHERE id=?", g.Name, g.Active, g.UpdatedAt, g.ID)
	return err
}

func (r *GroupRepo) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE groups SET active=0, updated_at=? WHERE id=?", time.Now().UTC(), id)
	return err
}

// HardDelete physically removes the group row. Callers must call Detach
// first: deliveries are detached, not cascaded.
func (r *GroupRepo) HardDelete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM groups WHERE id = ?", id)
	return err
}

// Detach clears group_id on every Delivery owned by this group: group
// deletion detaches its deliveries rather than cascading.
func (r *GroupRepo) Detach(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE deliveries SET group_id = NULL WHERE group_id = ?", id)
	return err
}

func (r *GroupRepo) List(ctx context.Context, scope domain.Scope) ([]*domain.Group, error) {
	var rows *sql.Rows
	var err error
	if scope.Unrestricted {
		rows, err = r.db.Query(ctx, "SELECT "+groupColumns+" FROM groups ORDER BY created_at DESC")
	} else {
		rows, err = r.db.Query(ctx, "SELECT "+groupColumns+" FROM groups WHERE agency_id = ? ORDER BY created_at DESC", scope.AgencyID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Group
	for rows.Next() {
		g := &domain.Group{}
		if err := rows.Scan(&g.ID, &g.AgencyID, &g.ExternalGroupID, &g.Name, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
