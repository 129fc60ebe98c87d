package steward

import (
	"fmt"
	"strings"
)

// Mask is a set of actions encoded as bit flags.
type Mask uint8

// Action bits. Combinations form a single mask.
const (
	ActionRead   Mask = 1 << iota // r
	ActionCreate                  // c
	ActionUpdate                  // u
	ActionDelete                  // d
)

// actionLetters is the canonical letter order for mask serialization.
// Output always follows this sequence regardless of assembly order.
var actionLetters = []struct {
	letter byte
	bit    Mask
}{
	{'r', ActionRead},
	{'c', ActionCreate},
	{'u', ActionUpdate},
	{'d', ActionDelete},
}

// ParseMask converts an action-letter string into a mask. Unknown letters
// are ignored. Use it for persisted or token-sourced strings that were
// validated on the way in; user input goes through ParseMaskStrict instead.
func ParseMask(letters string) Mask {
	var m Mask
	for i := 0; i < len(letters); i++ {
		switch letters[i] {
		case 'r':
			m |= ActionRead
		case 'c':
			m |= ActionCreate
		case 'u':
			m |= ActionUpdate
		case 'd':
			m |= ActionDelete
		}
	}
	return m
}

// ParseMaskStrict converts an action-letter string into a mask, rejecting
// any character outside r, c, u, d.
func ParseMaskStrict(letters string) (Mask, error) {
	var m Mask
	for i := 0; i < len(letters); i++ {
		switch letters[i] {
		case 'r':
			m |= ActionRead
		case 'c':
			m |= ActionCreate
		case 'u':
			m |= ActionUpdate
		case 'd':
			m |= ActionDelete
		default:
			return 0, fmt.Errorf("%w: unknown action letter %q", ErrInvalidActionLetter, string(letters[i]))
		}
	}
	return m, nil
}

// Letters returns the canonical string form of the mask, letters always in
// the order r, c, u, d. The zero mask yields an empty string.
func (m Mask) Letters() string {
	var b strings.Builder
	for _, al := range actionLetters {
		if m&al.bit != 0 {
			b.WriteByte(al.letter)
		}
	}
	return b.String()
}

// Has reports whether every bit of required is present in m. Partial
// overlap is insufficient.
func (m Mask) Has(required Mask) bool {
	return m&required == required
}

// Domain is a category of application functionality permissions are
// declared against, identified by a single-character key.
type Domain string

// The closed set of permission domains.
const (
	DomainLeases       Domain = "l"
	DomainMaintenance  Domain = "m"
	DomainFinances     Domain = "f"
	DomainTenants      Domain = "t"
	DomainOrganization Domain = "o"
	DomainPortfolio    Domain = "p"
)

// Domains lists every known domain.
var Domains = []Domain{
	DomainLeases,
	DomainMaintenance,
	DomainFinances,
	DomainTenants,
	DomainOrganization,
	DomainPortfolio,
}

// KnownDomain reports whether d is a member of the closed domain set.
func KnownDomain(d Domain) bool {
	switch d {
	case DomainLeases, DomainMaintenance, DomainFinances,
		DomainTenants, DomainOrganization, DomainPortfolio:
		return true
	}
	return false
}

// PermissionMap maps domains to action masks.
type PermissionMap map[Domain]Mask

// DecodePermissions converts a persisted domain→letters map into a
// PermissionMap. Lenient: unknown domain keys and letters are dropped;
// stored values were validated at write time.
func DecodePermissions(raw map[string]string) PermissionMap {
	if len(raw) == 0 {
		return nil
	}
	pm := make(PermissionMap, len(raw))
	for k, letters := range raw {
		d := Domain(k)
		if !KnownDomain(d) {
			continue
		}
		if m := ParseMask(letters); m != 0 {
			pm[d] = m
		}
	}
	return pm
}

// ParsePermissions converts a user-supplied domain→letters map into a
// PermissionMap. Every unknown domain key or action letter is reported as a
// field-level error; nothing is silently coerced.
func ParsePermissions(raw map[string]string) (PermissionMap, error) {
	pm := make(PermissionMap, len(raw))
	var verr ValidationError
	for k, letters := range raw {
		d := Domain(k)
		if !KnownDomain(d) {
			verr.Add("permissions."+k, "unknown domain key")
			continue
		}
		m, err := ParseMaskStrict(letters)
		if err != nil {
			verr.Add("permissions."+k, err.Error())
			continue
		}
		pm[d] = m
	}
	if len(verr.Fields) > 0 {
		return nil, &verr
	}
	return pm, nil
}

// Encode returns the domain→letters form of the map, suitable for
// persistence and token embedding.
func (p PermissionMap) Encode() map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for d, m := range p {
		out[string(d)] = m.Letters()
	}
	return out
}

// Merge unions other into p domain by domain with bitwise OR. A grant from
// one source is never lost because another source at the same scope is more
// restrictive.
func (p PermissionMap) Merge(other PermissionMap) PermissionMap {
	if len(other) == 0 {
		return p
	}
	if p == nil {
		p = make(PermissionMap, len(other))
	}
	for d, m := range other {
		p[d] |= m
	}
	return p
}

// Clone returns an independent copy of the map.
func (p PermissionMap) Clone() PermissionMap {
	if p == nil {
		return nil
	}
	out := make(PermissionMap, len(p))
	for d, m := range p {
		out[d] = m
	}
	return out
}
