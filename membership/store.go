package membership

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for memberships and scope bindings.
type Store interface {
	// CreateMembership persists a new membership.
	CreateMembership(ctx context.Context, m *Membership) error

	// GetMembership retrieves a membership by ID.
	GetMembership(ctx context.Context, mbrID id.MembershipID) (*Membership, error)

	// UpdateMembership persists changes to a membership (principal link,
	// template change).
	UpdateMembership(ctx context.Context, m *Membership) error

	// DeleteMembership removes a membership and its scope bindings.
	// Assignment cleanup is the caller's responsibility.
	DeleteMembership(ctx context.Context, mbrID id.MembershipID) error

	// ListMemberships returns memberships matching the filter.
	ListMemberships(ctx context.Context, filter *ListFilter) ([]*Membership, error)

	// CountMemberships returns the number of memberships matching the filter.
	CountMemberships(ctx context.Context, filter *ListFilter) (int64, error)

	// ListMembershipsForPrincipal returns every membership linked to a
	// principal, across tenants.
	ListMembershipsForPrincipal(ctx context.Context, principalID string) ([]*Membership, error)

	// ListMembershipsByTemplate returns memberships referencing a template.
	ListMembershipsByTemplate(ctx context.Context, tmplID id.TemplateID) ([]*Membership, error)

	// CreateBinding persists a new scope binding.
	CreateBinding(ctx context.Context, b *ScopeBinding) error

	// DeleteBinding removes a scope binding by ID.
	DeleteBinding(ctx context.Context, bindID id.BindingID) error

	// ListBindings returns all scope bindings for a membership.
	ListBindings(ctx context.Context, mbrID id.MembershipID) ([]*ScopeBinding, error)

	// HasBinding reports whether a binding ties the membership to the given
	// concrete resource.
	HasBinding(ctx context.Context, mbrID id.MembershipID, scopeType, scopeID string) (bool, error)

	// DeleteBindingsByMembership removes all bindings for a membership.
	DeleteBindingsByMembership(ctx context.Context, mbrID id.MembershipID) error
}
