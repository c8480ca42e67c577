// Package domain holds the session/claims model for auth, adapted from the
// teacher's clients_portal/auth/domain.PortalClaims shape generalised from
// portal-user roles to the Agency role/scope model.
package domain

import (
	"time"

	tenant "github.com/doualaexpress/deligate/tenant/domain"
)

// Claims encodes {agency_id, role, expires_at}.
type Claims struct {
	AgencyID  int64
	Role      tenant.Role
	ExpiresAt time.Time
}

// Scope derives the TenantScope from session claims.
func (c Claims) Scope() tenant.Scope {
	if c.Role == tenant.RoleSuperAdmin {
		return tenant.SuperAdminScope()
	}
	return tenant.AgencyScope(c.AgencyID)
}
