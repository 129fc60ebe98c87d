package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
)

func (a *API) registerAssignmentRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("assignments"))

	if err := g.POST("/assignments", a.createAssignment,
		forge.WithSummary("Create assignment"),
		forge.WithDescription("Binds a membership to permissions at one concrete resource."),
		forge.WithOperationID("createAssignment"),
		forge.WithRequestSchema(CreateAssignmentRequest{}),
		forge.WithCreatedResponse(&assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/assignments/:assignmentId", a.getAssignment,
		forge.WithSummary("Get assignment"),
		forge.WithOperationID("getAssignment"),
		forge.WithResponseSchema(http.StatusOK, "Assignment details", &assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/assignments/:assignmentId", a.deleteAssignment,
		forge.WithSummary("Delete assignment"),
		forge.WithOperationID("deleteAssignment"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/assignments", a.listAssignments,
		forge.WithSummary("List assignments"),
		forge.WithOperationID("listAssignments"),
		forge.WithRequestSchema(ListAssignmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Assignment list", []*assignment.Assignment{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createAssignment(ctx forge.Context, req *CreateAssignmentRequest) (*assignment.Assignment, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	mbrID, err := id.ParseMembershipID(req.MembershipID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}
	if !steward.ValidScopeType(steward.ScopeType(req.ScopeType)) {
		return nil, forge.BadRequest("scope_type must be one of ORG, PROPERTY, UNIT, ASSET")
	}
	if req.ResourceID == "" {
		return nil, forge.BadRequest("resource_id is required")
	}
	if req.PolicyID == "" && len(req.Overrides) == 0 {
		return nil, mapError(steward.ErrEmptyAssignment)
	}

	// The membership must belong to the request's tenant.
	m, err := a.eng.Store().GetMembership(ctx.Context(), mbrID)
	if err != nil {
		return nil, mapError(err)
	}
	if m.TenantID != tenantID {
		return nil, forge.NotFound("membership not found")
	}

	asgn := &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		TenantID:     tenantID,
		MembershipID: mbrID,
		ScopeType:    req.ScopeType,
		ResourceID:   req.ResourceID,
		GrantedBy:    requestPrincipal(ctx).ID,
	}

	if req.PolicyID != "" {
		polID, err := id.ParsePolicyID(req.PolicyID)
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
		asgn.PolicyID = &polID
	}

	if len(req.Overrides) > 0 {
		perms, err := steward.ParsePermissions(req.Overrides)
		if err != nil {
			return nil, mapError(err)
		}
		asgn.Overrides = perms.Encode()
	}

	if err := a.eng.Store().CreateAssignment(ctx.Context(), asgn); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.InvalidateMembership(ctx.Context(), mbrID, event.MutationAssignmentChanged); err != nil {
		return nil, mapError(err)
	}

	return asgn, ctx.JSON(http.StatusCreated, asgn)
}

func (a *API) getAssignment(ctx forge.Context, _ *GetAssignmentRequest) (*assignment.Assignment, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	asgnID, err := id.ParseAssignmentID(ctx.Param("assignmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid assignment ID: %v", err))
	}

	asgn, err := a.eng.Store().GetAssignment(ctx.Context(), asgnID)
	if err != nil {
		return nil, mapError(err)
	}
	if asgn.TenantID != tenantID {
		return nil, forge.NotFound("assignment not found")
	}

	return asgn, ctx.JSON(http.StatusOK, asgn)
}

func (a *API) deleteAssignment(ctx forge.Context, _ *GetAssignmentRequest) (*struct{}, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	asgnID, err := id.ParseAssignmentID(ctx.Param("assignmentId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid assignment ID: %v", err))
	}

	asgn, err := a.eng.Store().GetAssignment(ctx.Context(), asgnID)
	if err != nil {
		return nil, mapError(err)
	}
	if asgn.TenantID != tenantID {
		return nil, forge.NotFound("assignment not found")
	}

	if err := a.eng.Store().DeleteAssignment(ctx.Context(), asgnID); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.InvalidateMembership(ctx.Context(), asgn.MembershipID, event.MutationAssignmentChanged); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAssignments(ctx forge.Context, req *ListAssignmentsRequest) ([]*assignment.Assignment, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	filter := &assignment.ListFilter{
		TenantID:   tenantID,
		ScopeType:  req.ScopeType,
		ResourceID: req.ResourceID,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}
	if req.MembershipID != "" {
		mbrID, err := id.ParseMembershipID(req.MembershipID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
		}
		filter.MembershipID = &mbrID
	}
	if req.PolicyID != "" {
		polID, err := id.ParsePolicyID(req.PolicyID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
		}
		filter.PolicyID = &polID
	}

	assignments, err := a.eng.Store().ListAssignments(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return assignments, ctx.JSON(http.StatusOK, assignments)
}
