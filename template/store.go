package template

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for role templates and items.
type Store interface {
	// CreateTemplate persists a new template.
	CreateTemplate(ctx context.Context, t *Template) error

	// GetTemplate retrieves a template by ID.
	GetTemplate(ctx context.Context, tmplID id.TemplateID) (*Template, error)

	// UpdateTemplate persists changes to a template.
	UpdateTemplate(ctx context.Context, t *Template) error

	// DeleteTemplate removes a template and its items.
	DeleteTemplate(ctx context.Context, tmplID id.TemplateID) error

	// ListTemplates returns templates matching the filter.
	ListTemplates(ctx context.Context, filter *ListFilter) ([]*Template, error)

	// CountTemplates returns the number of templates matching the filter.
	CountTemplates(ctx context.Context, filter *ListFilter) (int64, error)

	// SetItems replaces all items of a template.
	SetItems(ctx context.Context, tmplID id.TemplateID, items []*Item) error

	// ListItems returns all items of a template.
	ListItems(ctx context.Context, tmplID id.TemplateID) ([]*Item, error)

	// DeleteTemplatesByTenant removes all templates owned by a tenant.
	DeleteTemplatesByTenant(ctx context.Context, tenantID string) error
}
