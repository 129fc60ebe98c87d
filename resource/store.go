package resource

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for the property hierarchy.
//
// FindAncestors is the one call the resolution engine depends on; the CRUD
// operations exist for backends and fixtures.
type Store interface {
	// FindAncestors loads the resource identified by (scopeType, resourceID)
	// together with its full parent chain in one call. scopeType is the
	// string form of a hierarchy level ("PROPERTY", "UNIT", "ASSET").
	// Returns ErrNotFound (wrapped) when the resource does not exist or its
	// chain is inconsistent.
	FindAncestors(ctx context.Context, scopeType, resourceID string) (*Ancestry, error)

	// CreateProperty persists a new property.
	CreateProperty(ctx context.Context, p *Property) error

	// GetProperty retrieves a property by ID.
	GetProperty(ctx context.Context, propID id.PropertyID) (*Property, error)

	// DeleteProperty removes a property by ID.
	DeleteProperty(ctx context.Context, propID id.PropertyID) error

	// CreateUnit persists a new unit.
	CreateUnit(ctx context.Context, u *Unit) error

	// GetUnit retrieves a unit by ID.
	GetUnit(ctx context.Context, unitID id.UnitID) (*Unit, error)

	// DeleteUnit removes a unit by ID.
	DeleteUnit(ctx context.Context, unitID id.UnitID) error

	// CreateAsset persists a new asset.
	CreateAsset(ctx context.Context, a *Asset) error

	// GetAsset retrieves an asset by ID.
	GetAsset(ctx context.Context, assetID id.AssetID) (*Asset, error)

	// DeleteAsset removes an asset by ID.
	DeleteAsset(ctx context.Context, assetID id.AssetID) error

	// ListPropertiesByOrg returns all properties under an organization.
	ListPropertiesByOrg(ctx context.Context, orgID string) ([]*Property, error)
}
