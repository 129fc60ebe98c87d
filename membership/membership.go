// Package membership defines the membership entity bridging a principal to
// a tenant, and the scope bindings that anchor template permissions to
// concrete resources.
package membership

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is the sentinel for a missing membership or binding.
var ErrNotFound = errors.New("membership not found")

// Membership bridges a principal to a tenant. A membership with an empty
// PrincipalID is a pending invitation placeholder; the principal is linked
// when the invite is accepted. Deleting a membership cascades its scope
// bindings and policy assignments.
type Membership struct {
	ID          id.MembershipID `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	PrincipalID string          `json:"principal_id,omitempty" db:"principal_id"`
	TemplateID  *id.TemplateID  `json:"template_id,omitempty" db:"template_id"`
	InviteEmail string          `json:"invite_email,omitempty" db:"invite_email"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Pending reports whether the membership is still an unaccepted invite.
func (m *Membership) Pending() bool { return m.PrincipalID == "" }

// ScopeBinding ties a membership to one concrete resource. PROPERTY- and
// UNIT-level template items only activate where such a row exists.
type ScopeBinding struct {
	ID           id.BindingID    `json:"id" db:"id"`
	MembershipID id.MembershipID `json:"membership_id" db:"membership_id"`
	ScopeType    string          `json:"scope_type" db:"scope_type"`
	ScopeID      string          `json:"scope_id" db:"scope_id"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing memberships.
type ListFilter struct {
	TenantID    string `json:"tenant_id,omitempty"`
	PrincipalID string `json:"principal_id,omitempty"`
	Pending     *bool  `json:"pending,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}
