// Package resource defines the read model of the property hierarchy:
// properties under an organization, units under a property, assets under a
// unit or directly under a property. The engine only reads it; the owning
// CRUD backend writes it.
package resource

import (
	"errors"
	"time"

	"github.com/xraph/steward/id"
)

// ErrNotFound is the sentinel for a missing or cross-tenant resource.
var ErrNotFound = errors.New("resource not found")

// Property is a property owned by one organization.
type Property struct {
	ID        id.PropertyID `json:"id" db:"id"`
	OrgID     id.OrgID      `json:"org_id" db:"org_id"`
	Name      string        `json:"name" db:"name"`
	Address   string        `json:"address,omitempty" db:"address"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Unit is a rentable unit within a property.
type Unit struct {
	ID         id.UnitID     `json:"id" db:"id"`
	PropertyID id.PropertyID `json:"property_id" db:"property_id"`
	Name       string        `json:"name" db:"name"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// Asset is a physical asset attached to a unit or directly to a property.
// Exactly one of UnitID and PropertyID is set; anything else is an
// inconsistent reference and resolves as not found.
type Asset struct {
	ID         id.AssetID     `json:"id" db:"id"`
	UnitID     *id.UnitID     `json:"unit_id,omitempty" db:"unit_id"`
	PropertyID *id.PropertyID `json:"property_id,omitempty" db:"property_id"`
	Name       string         `json:"name" db:"name"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Ancestry is the parent chain of one resource, loaded in a single store
// call. Fields below the queried level are empty; OrgID is always set for a
// consistent row.
type Ancestry struct {
	OrgID      string `json:"org_id"`
	PropertyID string `json:"property_id,omitempty"`
	UnitID     string `json:"unit_id,omitempty"`
	AssetID    string `json:"asset_id,omitempty"`
}
