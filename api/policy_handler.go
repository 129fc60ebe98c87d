package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/policy"
)

func (a *API) registerPolicyRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("policies"))

	if err := g.POST("/policies", a.createPolicy,
		forge.WithSummary("Create policy"),
		forge.WithDescription("Creates a new named permission policy."),
		forge.WithOperationID("createPolicy"),
		forge.WithRequestSchema(CreatePolicyRequest{}),
		forge.WithCreatedResponse(&policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies/:policyId", a.getPolicy,
		forge.WithSummary("Get policy"),
		forge.WithOperationID("getPolicy"),
		forge.WithResponseSchema(http.StatusOK, "Policy details", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/policies/:policyId", a.updatePolicy,
		forge.WithSummary("Update policy"),
		forge.WithOperationID("updatePolicy"),
		forge.WithRequestSchema(UpdatePolicyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated policy", &policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/policies/:policyId", a.deletePolicy,
		forge.WithSummary("Delete policy"),
		forge.WithOperationID("deletePolicy"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/policies", a.listPolicies,
		forge.WithSummary("List policies"),
		forge.WithDescription("Lists the tenant's policies plus system-wide ones."),
		forge.WithOperationID("listPolicies"),
		forge.WithRequestSchema(ListPoliciesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Policy list", []*policy.Policy{}),
		forge.WithErrorResponses(),
	)
}

// visiblePolicy loads a policy and enforces tenant visibility: a tenant
// sees its own and system-wide policies, never another tenant's.
func (a *API) visiblePolicy(ctx forge.Context, tenantID string) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}
	p, err := a.eng.Store().GetPolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}
	if !p.System() && p.TenantID != tenantID {
		return nil, forge.NotFound("policy not found")
	}
	return p, nil
}

func (a *API) createPolicy(ctx forge.Context, req *CreatePolicyRequest) (*policy.Policy, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	perms, err := steward.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, mapError(err)
	}
	if len(perms) == 0 {
		return nil, forge.BadRequest("permissions cannot be empty")
	}

	if req.System {
		if !requestPrincipal(ctx).GlobalAdmin {
			return nil, forge.Forbidden("system policies require a platform operator")
		}
		tenantID = ""
	}

	p := &policy.Policy{
		ID:          id.NewPolicyID(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: perms.Encode(),
	}

	if err := a.eng.Store().CreatePolicy(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) getPolicy(ctx forge.Context, _ *GetPolicyRequest) (*policy.Policy, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	p, err := a.visiblePolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) updatePolicy(ctx forge.Context, req *UpdatePolicyRequest) (*policy.Policy, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	p, err := a.visiblePolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if p.System() && !requestPrincipal(ctx).GlobalAdmin {
		return nil, mapError(steward.ErrPolicyImmutable)
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Permissions != nil {
		perms, err := steward.ParsePermissions(req.Permissions)
		if err != nil {
			return nil, mapError(err)
		}
		if len(perms) == 0 {
			return nil, forge.BadRequest("permissions cannot be empty")
		}
		p.Permissions = perms.Encode()
	}

	if err := a.eng.Store().UpdatePolicy(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	// An edited policy changes every grant that references it.
	if err := a.eng.InvalidatePolicy(ctx.Context(), p.ID); err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) deletePolicy(ctx forge.Context, _ *GetPolicyRequest) (*struct{}, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	p, err := a.visiblePolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if p.System() && !requestPrincipal(ctx).GlobalAdmin {
		return nil, mapError(steward.ErrPolicyImmutable)
	}

	// Collect affected principals before the rows disappear; publish only
	// after the delete commits.
	principals, err := a.eng.PolicyPrincipals(ctx.Context(), p.ID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().DeletePolicy(ctx.Context(), p.ID); err != nil {
		return nil, mapError(err)
	}
	a.eng.PublishInvalidation(ctx.Context(), event.MutationPolicyUpdated, tenantID, principals...)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listPolicies(ctx forge.Context, req *ListPoliciesRequest) ([]*policy.Policy, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	filter := &policy.ListFilter{
		TenantID:      tenantID,
		IncludeSystem: true,
		Search:        req.Search,
		Limit:         defaultLimit(req.Limit),
		Offset:        req.Offset,
	}

	policies, err := a.eng.Store().ListPolicies(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return policies, ctx.JSON(http.StatusOK, policies)
}
