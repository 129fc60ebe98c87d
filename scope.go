package steward

// ScopeType identifies a level of the resource hierarchy at which
// permissions can be declared. The containment is strict: an asset belongs
// to exactly one unit or property, a unit to exactly one property, a
// property to exactly one organization.
type ScopeType string

const (
	// ScopeOrg is the organization (tenant) level, the top of the hierarchy.
	ScopeOrg ScopeType = "ORG"

	// ScopeProperty is a property within an organization.
	ScopeProperty ScopeType = "PROPERTY"

	// ScopeUnit is a unit within a property.
	ScopeUnit ScopeType = "UNIT"

	// ScopeAsset is an asset attached to a unit or directly to a property.
	ScopeAsset ScopeType = "ASSET"
)

// ValidScopeType reports whether t is one of the four hierarchy levels.
func ValidScopeType(t ScopeType) bool {
	switch t {
	case ScopeOrg, ScopeProperty, ScopeUnit, ScopeAsset:
		return true
	}
	return false
}

// Scope is a (type, id) pair identifying one point in the hierarchy.
type Scope struct {
	Type ScopeType `json:"type"`
	ID   string    `json:"id"`
}

// ScopeChain is the ordered walk from a resource up to its organization,
// most specific first, ORG last. An empty chain means the resource could
// not be resolved within the claimed tenant and callers must deny.
type ScopeChain []Scope
