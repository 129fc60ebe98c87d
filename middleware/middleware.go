// Package middleware provides HTTP authorization middleware for Steward.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

// Require enforces authorization. The resource ID comes from the request's
// :id path parameter and the tenant from the request scope. Grants come
// from the context when the embedding app attached them via
// Materializer.Attach; otherwise the engine materializes per check, served
// from the principal cache. A check that cannot be computed fails the
// request; it is never treated as a deny.
func Require(eng *steward.Engine, required steward.Mask, domain steward.Domain, scopeType steward.ScopeType) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal, ok := resolvePrincipal(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			tenantID := steward.TenantFromContext(ctx.Context())
			resourceID := ctx.Param("id")

			allowed, err := eng.Authorize(ctx.Context(), principal, required, domain, scopeType, resourceID, tenantID)
			if err != nil {
				return errorResponse(ctx, 500, "authorization unavailable")
			}
			if !allowed {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the principal holds the required action
// on ANY of the given domains.
func RequireAny(eng *steward.Engine, required steward.Mask, scopeType steward.ScopeType, domains ...steward.Domain) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal, ok := resolvePrincipal(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			tenantID := steward.TenantFromContext(ctx.Context())
			resourceID := ctx.Param("id")

			for _, domain := range domains {
				allowed, err := eng.Authorize(ctx.Context(), principal, required, domain, scopeType, resourceID, tenantID)
				if err != nil {
					return errorResponse(ctx, 500, "authorization unavailable")
				}
				if allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if the principal holds the required
// action on ALL of the given domains.
func RequireAll(eng *steward.Engine, required steward.Mask, scopeType steward.ScopeType, domains ...steward.Domain) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			principal, ok := resolvePrincipal(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			tenantID := steward.TenantFromContext(ctx.Context())
			resourceID := ctx.Param("id")

			for _, domain := range domains {
				allowed, err := eng.Authorize(ctx.Context(), principal, required, domain, scopeType, resourceID, tenantID)
				if err != nil {
					return errorResponse(ctx, 500, "authorization unavailable")
				}
				if !allowed {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// resolvePrincipal extracts the principal from context.
// Priority: attached Steward principal → Forge user ID.
func resolvePrincipal(ctx forge.Context) (steward.Principal, bool) {
	if p, ok := steward.PrincipalFromContext(ctx.Context()); ok {
		return p, true
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return steward.Principal{ID: userID}, true
	}
	return steward.Principal{}, false
}

func denyResponse(ctx forge.Context) error {
	return errorResponse(ctx, 403, "access denied")
}

func errorResponse(ctx forge.Context, status int, message string) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": message})
}
