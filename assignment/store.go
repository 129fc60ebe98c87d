package assignment

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for policy assignments.
type Store interface {
	// CreateAssignment persists a new assignment.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, asgnID id.AssignmentID) (*Assignment, error)

	// DeleteAssignment removes an assignment by ID.
	DeleteAssignment(ctx context.Context, asgnID id.AssignmentID) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListAssignmentsByMembership returns all assignments for a membership.
	ListAssignmentsByMembership(ctx context.Context, mbrID id.MembershipID) ([]*Assignment, error)

	// ListAssignmentsByPolicy returns all assignments referencing a policy.
	ListAssignmentsByPolicy(ctx context.Context, polID id.PolicyID) ([]*Assignment, error)

	// DeleteAssignmentsByMembership removes all assignments for a membership.
	DeleteAssignmentsByMembership(ctx context.Context, mbrID id.MembershipID) error

	// DeleteAssignmentsByTenant removes all assignments for a tenant.
	DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error
}
