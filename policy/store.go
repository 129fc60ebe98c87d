package policy

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for named policies.
type Store interface {
	// CreatePolicy persists a new policy.
	CreatePolicy(ctx context.Context, p *Policy) error

	// GetPolicy retrieves a policy by ID.
	GetPolicy(ctx context.Context, polID id.PolicyID) (*Policy, error)

	// GetPolicyByName retrieves a policy by tenant and name. An empty
	// tenantID looks up system-wide policies.
	GetPolicyByName(ctx context.Context, tenantID, name string) (*Policy, error)

	// UpdatePolicy persists changes to a policy.
	UpdatePolicy(ctx context.Context, p *Policy) error

	// DeletePolicy removes a policy by ID.
	DeletePolicy(ctx context.Context, polID id.PolicyID) error

	// ListPolicies returns policies matching the filter.
	ListPolicies(ctx context.Context, filter *ListFilter) ([]*Policy, error)

	// CountPolicies returns the number of policies matching the filter.
	CountPolicies(ctx context.Context, filter *ListFilter) (int64, error)

	// ListVisiblePolicies returns the tenant's own policies plus all
	// system-wide ones.
	ListVisiblePolicies(ctx context.Context, tenantID string) ([]*Policy, error)

	// DeletePoliciesByTenant removes all policies owned by a tenant.
	DeletePoliciesByTenant(ctx context.Context, tenantID string) error
}
