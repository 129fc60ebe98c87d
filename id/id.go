// Package id defines TypeID-based identity types for all Steward entities.
//
// Every entity in Steward uses a single ID struct with a prefix that
// identifies the entity type. IDs are K-sortable (UUIDv7-based), globally
// unique, and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Steward entity types.
const (
	PrefixOrg         Prefix = "org"
	PrefixProperty    Prefix = "prop"
	PrefixUnit        Prefix = "unit"
	PrefixAsset       Prefix = "asset"
	PrefixMembership  Prefix = "mbr"
	PrefixPolicy      Prefix = "pol"
	PrefixAssignment  Prefix = "asgn"
	PrefixTemplate    Prefix = "tmpl"
	PrefixTemplateItm Prefix = "titm"
	PrefixBinding     Prefix = "bind"
	PrefixDecisionLog Prefix = "declog"
)

// ID is the primary identifier type for all Steward entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "prop_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases per entity
// ──────────────────────────────────────────────────

// OrgID is a type-safe identifier for organizations (prefix: "org").
type OrgID = ID

// PropertyID is a type-safe identifier for properties (prefix: "prop").
type PropertyID = ID

// UnitID is a type-safe identifier for units (prefix: "unit").
type UnitID = ID

// AssetID is a type-safe identifier for assets (prefix: "asset").
type AssetID = ID

// MembershipID is a type-safe identifier for memberships (prefix: "mbr").
type MembershipID = ID

// PolicyID is a type-safe identifier for named policies (prefix: "pol").
type PolicyID = ID

// AssignmentID is a type-safe identifier for policy assignments (prefix: "asgn").
type AssignmentID = ID

// TemplateID is a type-safe identifier for role templates (prefix: "tmpl").
type TemplateID = ID

// TemplateItemID is a type-safe identifier for template items (prefix: "titm").
type TemplateItemID = ID

// BindingID is a type-safe identifier for scope bindings (prefix: "bind").
type BindingID = ID

// DecisionLogID is a type-safe identifier for decision log entries (prefix: "declog").
type DecisionLogID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewOrgID generates a new unique organization ID.
func NewOrgID() ID { return New(PrefixOrg) }

// NewPropertyID generates a new unique property ID.
func NewPropertyID() ID { return New(PrefixProperty) }

// NewUnitID generates a new unique unit ID.
func NewUnitID() ID { return New(PrefixUnit) }

// NewAssetID generates a new unique asset ID.
func NewAssetID() ID { return New(PrefixAsset) }

// NewMembershipID generates a new unique membership ID.
func NewMembershipID() ID { return New(PrefixMembership) }

// NewPolicyID generates a new unique policy ID.
func NewPolicyID() ID { return New(PrefixPolicy) }

// NewAssignmentID generates a new unique assignment ID.
func NewAssignmentID() ID { return New(PrefixAssignment) }

// NewTemplateID generates a new unique template ID.
func NewTemplateID() ID { return New(PrefixTemplate) }

// NewTemplateItemID generates a new unique template item ID.
func NewTemplateItemID() ID { return New(PrefixTemplateItm) }

// NewBindingID generates a new unique scope binding ID.
func NewBindingID() ID { return New(PrefixBinding) }

// NewDecisionLogID generates a new unique decision log ID.
func NewDecisionLogID() ID { return New(PrefixDecisionLog) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseOrgID parses a string and validates the "org" prefix.
func ParseOrgID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOrg) }

// ParsePropertyID parses a string and validates the "prop" prefix.
func ParsePropertyID(s string) (ID, error) { return ParseWithPrefix(s, PrefixProperty) }

// ParseUnitID parses a string and validates the "unit" prefix.
func ParseUnitID(s string) (ID, error) { return ParseWithPrefix(s, PrefixUnit) }

// ParseAssetID parses a string and validates the "asset" prefix.
func ParseAssetID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAsset) }

// ParseMembershipID parses a string and validates the "mbr" prefix.
func ParseMembershipID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMembership) }

// ParsePolicyID parses a string and validates the "pol" prefix.
func ParsePolicyID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPolicy) }

// ParseAssignmentID parses a string and validates the "asgn" prefix.
func ParseAssignmentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAssignment) }

// ParseTemplateID parses a string and validates the "tmpl" prefix.
func ParseTemplateID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTemplate) }

// ParseTemplateItemID parses a string and validates the "titm" prefix.
func ParseTemplateItemID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTemplateItm) }

// ParseBindingID parses a string and validates the "bind" prefix.
func ParseBindingID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBinding) }

// ParseDecisionLogID parses a string and validates the "declog" prefix.
func ParseDecisionLogID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDecisionLog) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
