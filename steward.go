// Package steward provides hierarchy-aware permission resolution for
// multi-tenant property management.
//
// Steward decides, for an authenticated principal, a resource, and a
// requested action, whether access is granted. Permissions are declared at
// any level of the resource hierarchy (organization → property → unit →
// asset) and flow from named policies, per-resource policy assignments, and
// per-resource overrides. The engine merges those sources into a compact
// per-scope grant set, walks the resource's scope chain on every check, and
// caches computed grants until a mutation invalidates them.
//
//	eng, err := steward.NewEngine(
//	    steward.WithStore(memStore),
//	)
//	allowed, err := eng.Authorize(ctx, principal, steward.ActionRead,
//	    steward.DomainLeases, steward.ScopeUnit, "unit_123", "org_456")
package steward

// Principal is the authenticated identity an authorization check runs for.
// It is supplied by the authentication layer; Steward never stores it.
type Principal struct {
	ID string `json:"id"`

	// GlobalAdmin marks platform operators. They bypass grant resolution
	// and satisfy every check.
	GlobalAdmin bool `json:"global_admin,omitempty"`
}

// Credential carries the principal plus an optional grant set embedded at
// token issuance time. When Grants is non-nil the materializer uses it
// directly and never touches the store.
type Credential struct {
	Principal Principal `json:"principal"`
	Grants    []byte    `json:"grants,omitempty"`
}

// AccessEntry is one effective grant: within tenant TenantID, at scope
// (ScopeType, ScopeID), the principal holds Permissions. The permissions
// map is treated as immutable once materialized.
type AccessEntry struct {
	TenantID    string        `json:"tenant_id"`
	ScopeType   ScopeType     `json:"scope_type"`
	ScopeID     string        `json:"scope_id"`
	Permissions PermissionMap `json:"permissions"`
}

// AccessGrantSet is the full list of effective grants for one principal
// across its memberships, as materialized for a request. It holds at most
// one entry per distinct (tenant, scope type, scope id); grants from
// sibling memberships of the same tenant union into one entry.
type AccessGrantSet []AccessEntry

// Find returns the entry matching the given tenant and scope, if present.
func (g AccessGrantSet) Find(tenantID string, scopeType ScopeType, scopeID string) (AccessEntry, bool) {
	for _, e := range g {
		if e.TenantID == tenantID && e.ScopeType == scopeType && e.ScopeID == scopeID {
			return e, true
		}
	}
	return AccessEntry{}, false
}
