package steward

import (
	"context"

	"github.com/xraph/forge"
)

type contextKey int

const (
	ctxKeyTenantID contextKey = iota
	ctxKeyPrincipal
	ctxKeyGrants
)

// WithTenant returns a context carrying the tenant ID. Use this for
// standalone mode (without Forge).
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenantID, tenantID)
}

// TenantFromContext extracts the tenant ID, preferring forge.Scope when the
// request runs inside a Forge app and falling back to the standalone value.
func TenantFromContext(ctx context.Context) string {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return s.OrgID()
	}
	v, ok := ctx.Value(ctxKeyTenantID).(string)
	if !ok {
		return ""
	}
	return v
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext extracts the authenticated principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}

// WithGrants returns a context carrying a materialized grant set. The
// materializer attaches it exactly once per request; downstream checks
// reuse it rather than recomputing mid-request.
func WithGrants(ctx context.Context, grants AccessGrantSet) context.Context {
	return context.WithValue(ctx, ctxKeyGrants, grants)
}

// GrantsFromContext extracts the materialized grant set.
func GrantsFromContext(ctx context.Context) (AccessGrantSet, bool) {
	g, ok := ctx.Value(ctxKeyGrants).(AccessGrantSet)
	return g, ok
}
