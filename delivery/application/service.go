// Package application is the Domain Store facade: it applies
// TenantScope to every Repository call so the isolation property is a
// type-level argument rather than a convention, and exposes the
// operations the HTTP layer and ingestion pipeline call.
package application

import (
	"context"

	tenant "github.com/doualaexpress/deligate/tenant/domain"

	"github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

type Service struct {
	Repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{Repo: repo}
}

// scoped applies a TenantScope to a Filter: unrestricted scopes pass
// through, agency scopes force agency_id.
func scoped(f domain.Filter, scope tenant.Scope) domain.Filter {
	if !scope.Unrestricted {
		id := scope.AgencyID
		f.AgencyID = &id
	}
	return f
}

func (s *Service) List(ctx context.Context, f domain.Filter, scope tenant.Scope) ([]*domain.Delivery, domain.Pagination, error) {
	return s.Repo.List(ctx, scoped(f, scope))
}

// Get returns NotFound when the row's agency_id differs from scope,
// not Forbidden, so callers cannot distinguish "exists elsewhere" from
// "does not exist".
func (s *Service) Get(ctx context.Context, id int64, scope tenant.Scope) (*domain.Delivery, error) {
	d, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rowVisible(d, scope) {
		return nil, apperror.NotFoundError(domain.ErrDeliveryNotFound.Error())
	}
	return d, nil
}

func rowVisible(d *domain.Delivery, scope tenant.Scope) bool {
	if scope.Unrestricted {
		return true
	}
	return d.AgencyID != nil && *d.AgencyID == scope.AgencyID
}

func (s *Service) Create(ctx context.Context, d *domain.Delivery, scope tenant.Scope) error {
	if !scope.Unrestricted {
		id := scope.AgencyID
		d.AgencyID = &id
	}
	return s.Repo.Create(ctx, d)
}

func (s *Service) History(ctx context.Context, deliveryID int64, scope tenant.Scope) ([]*domain.HistoryEntry, error) {
	if _, err := s.Get(ctx, deliveryID, scope); err != nil {
		return nil, err
	}
	return s.Repo.ListHistory(ctx, deliveryID)
}

func (s *Service) DailyStats(ctx context.Context, date *string, groupID *int64, scope tenant.Scope) (domain.DailyStats, error) {
	var agencyID *int64
	if !scope.Unrestricted {
		id := scope.AgencyID
		agencyID = &id
	}
	return s.Repo.DailyStats(ctx, date, agencyID, groupID)
}

func (s *Service) Search(ctx context.Context, query string, scope tenant.Scope) ([]*domain.Delivery, error) {
	var agencyID *int64
	if !scope.Unrestricted {
		id := scope.AgencyID
		agencyID = &id
	}
	return s.Repo.Search(ctx, agencyID, query)
}

// BulkCreate stamps every row with the caller's agency_id (when scoped)
// before delegating to the repository's per-row savepoint insert.
func (s *Service) BulkCreate(ctx context.Context, rows []*domain.Delivery, scope tenant.Scope) (domain.BulkResult, error) {
	if !scope.Unrestricted {
		id := scope.AgencyID
		for _, d := range rows {
			d.AgencyID = &id
		}
	}
	return s.Repo.BulkCreate(ctx, rows)
}

func (s *Service) Delete(ctx context.Context, id int64, scope tenant.Scope) error {
	if _, err := s.Get(ctx, id, scope); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
