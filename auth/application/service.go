// Package application implements login/logout/me/join-by-code, grounded on
// the teacher's clients_portal auth usecase but flattened to match the
// Agency-only tenant model (no separate portal-user aggregate).
package application

import (
	"context"
	"time"

	"github.com/doualaexpress/deligate/auth/domain"
	"github.com/doualaexpress/deligate/auth/infrastructure"
	"github.com/doualaexpress/deligate/auth/security"
	"github.com/doualaexpress/deligate/pkg/apperror"
	tenantapp "github.com/doualaexpress/deligate/tenant/application"
	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

type Service struct {
	Agencies tenant.AgencyRepository
	Tenants *tenantapp.Service
	Issuer *security.TokenIssuer
	Blocklist infrastructure.Blocklist
}

func NewService(agencies tenant.AgencyRepository, tenants *tenantapp.Service, issuer *security.TokenIssuer, blocklist infrastructure.Blocklist) *Service {
	return &Service{Agencies: agencies, Tenants: tenants, Issuer: issuer, Blocklist: blocklist}
}

// Session is what the HTTP layer returns from a successful login.
type Session struct {
	Token string
	ExpiresAt time.Time
	Agency *tenant.Agency
}

// Login never distinguishes "no such email" from "bad password" in the
// error it returns, per its user-visible-failure rule.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	agency, err := s.Agencies.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !security.CheckPasswordHash(password, agency.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !agency.Active {
		return nil, domain.ErrAgencyInactive
	}

	token, expiresAt, err := s.Issuer.Generate(agency.ID, agency.Role)
	if err != nil {
		return nil, apperror.InternalError("could not issue session token")
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Agency: agency}, nil
}

// Logout revokes the bearer token for the remainder of its natural
// lifetime, so it is rejected by NewAuthMiddleware even though the JWT
// signature itself stays valid until expiry.
func (s *Service) Logout(ctx context.Context, token string, claims domain.Claims) error {
	ttl := time.Until(claims.ExpiresAt)
	return s.Blocklist.Revoke(ctx, token, ttl)
}

// Me returns the authenticated caller's own agency row.
func (s *Service) Me(ctx context.Context, claims domain.Claims) (*tenant.Agency, error) {
	return s.Agencies.GetByID(ctx, claims.AgencyID)
}

// JoinByCode is the anonymous lookup a WhatsApp group admin uses to
// discover which agency a join code belongs to without authenticating;
// only PublicMetadata is ever returned.
func (s *Service) JoinByCode(ctx context.Context, code string) (*tenant.PublicMetadata, error) {
	agency, err := s.Tenants.GetAgencyByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, apperror.NotFoundError("no agency matches that join code")
	}
	meta := agency.ToPublicMetadata()
	return &meta, nil
}
