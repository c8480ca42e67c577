// Package application implements the Tenant Router and the
// agency/group management operations the HTTP layer calls, grounded on the
// teacher's usecase-layer services that sit atop a repository interface.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/doualaexpress/deligate/pkg/apperror"
	"github.com/doualaexpress/deligate/tenant/domain"
)

// RawEvent is the subset of the inbound transport event the router needs.
type RawEvent struct {
	ExternalGroupID string
	GroupDisplayName string
	IsGroup bool
	FromSelf bool
}

// Routed is the router's decision for one inbound event.
type Routed struct {
	AgencyID int64
	GroupID int64
	Accepted bool
}

type Service struct {
	Agencies domain.AgencyRepository
	Groups domain.GroupRepository
	DefaultAgencyID int64 // 0 means unset
	GroupIDFilter string
}

func NewService(agencies domain.AgencyRepository, groups domain.GroupRepository, defaultAgencyID int64, groupIDFilter string) *Service {
	return &Service{Agencies: agencies, Groups: groups, DefaultAgencyID: defaultAgencyID, GroupIDFilter: groupIDFilter}
}

// Route implements end to end: rejection rules, lookup, and idempotent
// auto-provisioning.
func (s *Service) Route(ctx context.Context, ev RawEvent) (Routed, error) {
	if !ev.IsGroup || ev.FromSelf {
		return Routed{Accepted: false}, nil
	}
	if s.GroupIDFilter != "" && ev.ExternalGroupID != s.GroupIDFilter {
		return Routed{Accepted: false}, nil
	}

	group, err := s.Groups.GetByExternalID(ctx, ev.ExternalGroupID)
	if err == nil {
		if !group.Active {
			return Routed{Accepted: false}, nil
		}
		return Routed{AgencyID: group.AgencyID, GroupID: group.ID, Accepted: true}, nil
	}
	if !errors.Is(err, domain.ErrGroupNotFound) {
		return Routed{}, err
	}

	agencyID, err := s.chooseProvisioningAgency(ctx)
	if err != nil {
		return Routed{}, err
	}

	newGroup := &domain.Group{
		AgencyID: agencyID,
		ExternalGroupID: ev.ExternalGroupID,
		Name: ev.GroupDisplayName,
		Active: true,
	}
	if err := s.Groups.Create(ctx, newGroup); err != nil {
		if errors.Is(err, domain.ErrDuplicateGroup) {
			// Lost the provisioning race; re-read to stay idempotent.
			existing, reErr := s.Groups.GetByExternalID(ctx, ev.ExternalGroupID)
			if reErr != nil {
				return Routed{}, reErr
			}
			if !existing.Active {
				return Routed{Accepted: false}, nil
			}
			return Routed{AgencyID: existing.AgencyID, GroupID: existing.ID, Accepted: true}, nil
		}
		return Routed{}, err
	}

	logrus.Infof("[TENANT_ROUTER] auto-provisioned group %q under agency %d", ev.ExternalGroupID, agencyID)
	return Routed{AgencyID: newGroup.AgencyID, GroupID: newGroup.ID, Accepted: true}, nil
}

// chooseProvisioningAgency implements the default-agency priority order a→d.
func (s *Service) chooseProvisioningAgency(ctx context.Context) (int64, error) {
	if s.DefaultAgencyID != 0 {
		agency, err := s.Agencies.GetByID(ctx, s.DefaultAgencyID)
		if err == nil && agency.Active {
			return agency.ID, nil
		}
	}

	candidates, err := s.Agencies.ListActiveNonSuperAdmin(ctx)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, apperror.InvalidArgumentError(fmt.Sprintf("tenant routing: %v", domain.ErrNoTenantAvailable))
	}
	// candidates is already ordered by created_at ASC, so the single-match
	// case (b) and earliest-created case (c) both resolve to candidates[0].
	return candidates[0].ID, nil
}

// GetAgencyByCode implements a case-insensitive, length-guarded lookup.
func (s *Service) GetAgencyByCode(ctx context.Context, code string) (*domain.Agency, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if len(code) < 4 {
		return nil, nil
	}
	agency, err := s.Agencies.GetByCode(ctx, code)
	if errors.Is(err, domain.ErrAgencyNotFound) {
		return nil, nil
	}
	return agency, err
}
