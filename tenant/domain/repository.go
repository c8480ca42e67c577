package domain

import "context"

// AgencyRepository defines persistence for Agencies.
type AgencyRepository interface {
	Create(ctx context.Context, a *Agency) error
	GetByID(ctx context.Context, id int64) (*Agency, error)
	GetByEmail(ctx context.Context, email string) (*Agency, error)
	GetByCode(ctx context.Context, code string) (*Agency, error)
	Update(ctx context.Context, a *Agency) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Agency, error)

	// ListActiveNonSuperAdmin supports Tenant Router auto-provisioning
	// priorities (b) and (c): the first active non-super-admin agency, in
	// created_at order.
	ListActiveNonSuperAdmin(ctx context.Context) ([]*Agency, error)
}

// GroupRepository defines persistence for Groups.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetByExternalID(ctx context.Context, externalGroupID string) (*Group, error)
	Update(ctx context.Context, g *Group) error
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	Detach(ctx context.Context, id int64) error // clears deliveries.group_id on deletion
	List(ctx context.Context, scope Scope) ([]*Group, error)
}
