package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/template"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var verr *steward.ValidationError
	if errors.As(err, &verr) {
		return forge.BadRequest(verr.Error())
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, steward.ErrPolicyImmutable) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, steward.ErrEmptyAssignment) ||
		errors.Is(err, steward.ErrInvalidActionLetter) ||
		errors.Is(err, steward.ErrInvalidScopeType) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, policy.ErrNotFound) ||
		errors.Is(err, assignment.ErrNotFound) ||
		errors.Is(err, membership.ErrNotFound) ||
		errors.Is(err, template.ErrNotFound) ||
		errors.Is(err, resource.ErrNotFound) ||
		errors.Is(err, steward.ErrPolicyNotFound) ||
		errors.Is(err, steward.ErrAssignmentNotFound) ||
		errors.Is(err, steward.ErrMembershipNotFound) ||
		errors.Is(err, steward.ErrTemplateNotFound) ||
		errors.Is(err, steward.ErrResourceNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// requestTenant resolves the tenant the request operates within. Every
// management route is tenant-scoped; a request with no resolvable tenant
// is rejected before it touches the store.
func requestTenant(ctx forge.Context) (string, error) {
	tenantID := steward.TenantFromContext(ctx.Context())
	if tenantID == "" {
		return "", forge.BadRequest("tenant could not be resolved from request")
	}
	return tenantID, nil
}

// requestPrincipal resolves the authenticated principal, falling back to
// the Forge user ID when the materializer middleware did not run.
func requestPrincipal(ctx forge.Context) steward.Principal {
	if p, ok := steward.PrincipalFromContext(ctx.Context()); ok {
		return p
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return steward.Principal{ID: userID}
	}
	return steward.Principal{}
}
