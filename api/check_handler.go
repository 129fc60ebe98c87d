package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the principal holds the action on the domain for the resource."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("authzBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	)
}

// validateCheck rejects malformed check input before any store access.
func validateCheck(req *CheckRequest) (steward.Mask, error) {
	if req.PrincipalID == "" && !req.GlobalAdmin {
		return 0, forge.BadRequest("principal_id is required")
	}
	if req.TenantID == "" {
		return 0, forge.BadRequest("tenant_id is required")
	}
	if req.ResourceID == "" {
		return 0, forge.BadRequest("resource_id is required")
	}
	if !steward.ValidScopeType(steward.ScopeType(req.ScopeType)) {
		return 0, forge.BadRequest("scope_type must be one of ORG, PROPERTY, UNIT, ASSET")
	}
	if !steward.KnownDomain(steward.Domain(req.Domain)) {
		return 0, forge.BadRequest("unknown domain key")
	}
	required, err := steward.ParseMaskStrict(req.Action)
	if err != nil {
		return 0, forge.BadRequest(err.Error())
	}
	if required == 0 {
		return 0, forge.BadRequest("action is required")
	}
	return required, nil
}

func (a *API) runCheck(ctx forge.Context, req *CheckRequest) (bool, error) {
	required, err := validateCheck(req)
	if err != nil {
		return false, err
	}
	principal := steward.Principal{ID: req.PrincipalID, GlobalAdmin: req.GlobalAdmin}
	allowed, err := a.eng.Authorize(ctx.Context(), principal, required,
		steward.Domain(req.Domain), steward.ScopeType(req.ScopeType),
		req.ResourceID, req.TenantID)
	if err != nil {
		return false, mapError(err)
	}
	return allowed, nil
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	allowed, err := a.runCheck(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := &CheckResponse{Allowed: allowed}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	allowed, err := a.runCheck(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := &CheckResponse{Allowed: allowed}
	if !allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i := range req.Checks {
		allowed, err := a.runCheck(ctx, &req.Checks[i])
		if err != nil {
			return nil, err
		}
		results[i] = CheckResponse{Allowed: allowed}
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}
