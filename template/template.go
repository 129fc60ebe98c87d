// Package template defines role templates: reusable per-scope-level
// permission declarations attached to memberships.
package template

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is the sentinel for a missing template.
var ErrNotFound = errors.New("template not found")

// Template is a named bundle of per-scope-level permission declarations a
// membership can reference.
type Template struct {
	ID          id.TemplateID `json:"id" db:"id"`
	TenantID    string        `json:"tenant_id" db:"tenant_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// Item is one declaration within a template. An ORG-level item activates
// unconditionally for the membership's tenant; a PROPERTY- or UNIT-level
// item activates only at resources the membership holds a scope binding
// for. Permissions maps domain keys to action letters.
type Item struct {
	ID          id.TemplateItemID `json:"id" db:"id"`
	TemplateID  id.TemplateID     `json:"template_id" db:"template_id"`
	ScopeType   string            `json:"scope_type" db:"scope_type"`
	Permissions map[string]string `json:"permissions" db:"-"`
}

// ListFilter contains filters for listing templates.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
