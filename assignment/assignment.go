// Package assignment defines the policy assignment entity: a membership
// bound to permissions at one concrete resource.
package assignment

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is the sentinel for a missing assignment.
var ErrNotFound = errors.New("assignment not found")

// Assignment binds a membership to permissions at one concrete resource.
// At least one of PolicyID and Overrides must be present. When Overrides is
// non-empty it fully replaces the linked policy's permissions for this
// assignment; the two are never merged domain by domain.
//
// ScopeType is the string form of a hierarchy level; plain strings keep
// this package free of the root package (same pattern as the permissions
// maps: domain key → action letters).
type Assignment struct {
	ID           id.AssignmentID   `json:"id" db:"id"`
	TenantID     string            `json:"tenant_id" db:"tenant_id"`
	MembershipID id.MembershipID   `json:"membership_id" db:"membership_id"`
	ScopeType    string            `json:"scope_type" db:"scope_type"`
	ResourceID   string            `json:"resource_id" db:"resource_id"`
	PolicyID     *id.PolicyID      `json:"policy_id,omitempty" db:"policy_id"`
	Overrides    map[string]string `json:"overrides,omitempty" db:"-"`
	GrantedBy    string            `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing assignments.
type ListFilter struct {
	TenantID     string           `json:"tenant_id,omitempty"`
	MembershipID *id.MembershipID `json:"membership_id,omitempty"`
	PolicyID     *id.PolicyID     `json:"policy_id,omitempty"`
	ScopeType    string           `json:"scope_type,omitempty"`
	ResourceID   string           `json:"resource_id,omitempty"`
	Limit        int              `json:"limit,omitempty"`
	Offset       int              `json:"offset,omitempty"`
}
