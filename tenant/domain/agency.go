// Package domain holds the Agency/Group tenant model, grounded on the
// teacher's clients/domain shape (plain structs, one errors.go, a
// repository.go interface file per aggregate) generalised from client
// tiering to agency/group tenancy.
package domain

import "time"

// Role distinguishes a super-administrator (unrestricted scope) from a
// regular agency user (scoped to its own agency_id).
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAgency Role = "agency"
)

// Agency is the tenant: the unit of data isolation and billing.
type Agency struct {
	ID int64 `json:"id"`
	Name string `json:"name"`
	Email string `json:"email"`
	PasswordHash string `json:"-"`
	Role Role `json:"role"`
	Active bool `json:"active"`
	Code string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
	Phone string `json:"phone,omitempty"`
	Logo []byte `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// IsSuperAdmin reports whether this agency row carries unrestricted scope.
func (a *Agency) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// PublicMetadata is the sanitised view returned by the anonymous "join by
// code" flow: never includes the password hash, email, or logo blob.
type PublicMetadata struct {
	ID int64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

func (a *Agency) ToPublicMetadata() PublicMetadata {
	return PublicMetadata{ID: a.ID, Name: a.Name, Code: a.Code}
}
