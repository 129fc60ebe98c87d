// Package policy defines the named permission policy entity.
package policy

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is the sentinel for a missing policy.
var ErrNotFound = errors.New("policy not found")

// Policy is a named, reusable bundle of per-domain permissions. A policy
// with an empty TenantID is system-wide: visible to every tenant but
// mutable only by platform operators. A tenant-owned policy is visible and
// mutable only within that tenant.
//
// Permissions maps single-character domain keys to action-letter strings
// ("rcud" form); both sides are validated at the write boundary.
type Policy struct {
	ID          id.PolicyID       `json:"id" db:"id"`
	TenantID    string            `json:"tenant_id,omitempty" db:"tenant_id"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description,omitempty" db:"description"`
	Permissions map[string]string `json:"permissions" db:"-"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// System reports whether the policy is system-wide.
func (p *Policy) System() bool { return p.TenantID == "" }

// ListFilter contains filters for listing policies.
type ListFilter struct {
	TenantID      string `json:"tenant_id,omitempty"`
	IncludeSystem bool   `json:"include_system,omitempty"`
	Search        string `json:"search,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}
