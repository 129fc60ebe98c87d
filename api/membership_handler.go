package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
)

func (a *API) registerMembershipRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("memberships"))

	if err := g.POST("/memberships", a.createMembership,
		forge.WithSummary("Create membership"),
		forge.WithDescription("Creates a membership, or a pending invitation when principal_id is omitted."),
		forge.WithOperationID("createMembership"),
		forge.WithRequestSchema(CreateMembershipRequest{}),
		forge.WithCreatedResponse(&membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships/:membershipId", a.getMembership,
		forge.WithSummary("Get membership"),
		forge.WithOperationID("getMembership"),
		forge.WithResponseSchema(http.StatusOK, "Membership details", &membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/memberships/:membershipId/accept", a.acceptInvite,
		forge.WithSummary("Accept invitation"),
		forge.WithDescription("Links a principal to a pending membership."),
		forge.WithOperationID("acceptInvite"),
		forge.WithRequestSchema(AcceptInviteRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Linked membership", &membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/memberships/:membershipId", a.deleteMembership,
		forge.WithSummary("Delete membership"),
		forge.WithDescription("Deletes a membership; its scope bindings and assignments cascade."),
		forge.WithOperationID("deleteMembership"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships", a.listMemberships,
		forge.WithSummary("List memberships"),
		forge.WithOperationID("listMemberships"),
		forge.WithRequestSchema(ListMembershipsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Membership list", []*membership.Membership{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/memberships/:membershipId/bindings", a.createBinding,
		forge.WithSummary("Create scope binding"),
		forge.WithDescription("Anchors template permissions to one concrete resource."),
		forge.WithOperationID("createBinding"),
		forge.WithRequestSchema(CreateBindingRequest{}),
		forge.WithCreatedResponse(&membership.ScopeBinding{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/memberships/:membershipId/bindings", a.listBindings,
		forge.WithSummary("List scope bindings"),
		forge.WithOperationID("listBindings"),
		forge.WithResponseSchema(http.StatusOK, "Binding list", []*membership.ScopeBinding{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/memberships/:membershipId/bindings/:bindingId", a.deleteBinding,
		forge.WithSummary("Delete scope binding"),
		forge.WithOperationID("deleteBinding"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

// tenantMembership loads a membership and enforces tenant visibility.
func (a *API) tenantMembership(ctx forge.Context, tenantID string) (*membership.Membership, error) {
	mbrID, err := id.ParseMembershipID(ctx.Param("membershipId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid membership ID: %v", err))
	}
	m, err := a.eng.Store().GetMembership(ctx.Context(), mbrID)
	if err != nil {
		return nil, mapError(err)
	}
	if m.TenantID != tenantID {
		return nil, forge.NotFound("membership not found")
	}
	return m, nil
}

func (a *API) createMembership(ctx forge.Context, req *CreateMembershipRequest) (*membership.Membership, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	if req.PrincipalID == "" && req.InviteEmail == "" {
		return nil, forge.BadRequest("principal_id or invite_email is required")
	}

	m := &membership.Membership{
		ID:          id.NewMembershipID(),
		TenantID:    tenantID,
		PrincipalID: req.PrincipalID,
		InviteEmail: req.InviteEmail,
	}
	if req.TemplateID != "" {
		tmplID, err := id.ParseTemplateID(req.TemplateID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid template ID: %v", err))
		}
		t, err := a.eng.Store().GetTemplate(ctx.Context(), tmplID)
		if err != nil {
			return nil, mapError(err)
		}
		if t.TenantID != tenantID {
			return nil, forge.NotFound("template not found")
		}
		m.TemplateID = &tmplID
	}

	if err := a.eng.Store().CreateMembership(ctx.Context(), m); err != nil {
		return nil, mapError(err)
	}

	if m.PrincipalID != "" {
		a.eng.PublishInvalidation(ctx.Context(), event.MutationMembershipChanged, tenantID, m.PrincipalID)
	}

	return m, ctx.JSON(http.StatusCreated, m)
}

func (a *API) getMembership(ctx forge.Context, _ *GetMembershipRequest) (*membership.Membership, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return m, ctx.JSON(http.StatusOK, m)
}

func (a *API) acceptInvite(ctx forge.Context, req *AcceptInviteRequest) (*membership.Membership, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	if req.PrincipalID == "" {
		return nil, forge.BadRequest("principal_id is required")
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !m.Pending() {
		return nil, forge.BadRequest("membership is already linked to a principal")
	}

	m.PrincipalID = req.PrincipalID
	if err := a.eng.Store().UpdateMembership(ctx.Context(), m); err != nil {
		return nil, mapError(err)
	}

	a.eng.PublishInvalidation(ctx.Context(), event.MutationMembershipChanged, tenantID, m.PrincipalID)

	return m, ctx.JSON(http.StatusOK, m)
}

func (a *API) deleteMembership(ctx forge.Context, _ *GetMembershipRequest) (*struct{}, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().DeleteAssignmentsByMembership(ctx.Context(), m.ID); err != nil {
		return nil, mapError(err)
	}
	if err := a.eng.Store().DeleteMembership(ctx.Context(), m.ID); err != nil {
		return nil, mapError(err)
	}

	if m.PrincipalID != "" {
		a.eng.PublishInvalidation(ctx.Context(), event.MutationMembershipChanged, tenantID, m.PrincipalID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listMemberships(ctx forge.Context, req *ListMembershipsRequest) ([]*membership.Membership, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	filter := &membership.ListFilter{
		TenantID:    tenantID,
		PrincipalID: req.PrincipalID,
		Limit:       defaultLimit(req.Limit),
		Offset:      req.Offset,
	}
	switch req.Pending {
	case "true":
		t := true
		filter.Pending = &t
	case "false":
		f := false
		filter.Pending = &f
	}

	memberships, err := a.eng.Store().ListMemberships(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return memberships, ctx.JSON(http.StatusOK, memberships)
}

func (a *API) createBinding(ctx forge.Context, req *CreateBindingRequest) (*membership.ScopeBinding, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	st := steward.ScopeType(req.ScopeType)
	if st != steward.ScopeProperty && st != steward.ScopeUnit {
		return nil, forge.BadRequest("scope_type must be PROPERTY or UNIT")
	}
	if req.ScopeID == "" {
		return nil, forge.BadRequest("scope_id is required")
	}

	b, created, err := a.eng.EnsureBinding(ctx.Context(), &membership.ScopeBinding{
		ID:           id.NewBindingID(),
		MembershipID: m.ID,
		ScopeType:    req.ScopeType,
		ScopeID:      req.ScopeID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	if !created {
		// Already bound; nothing changed, nothing to invalidate.
		return b, ctx.JSON(http.StatusOK, b)
	}

	if err := a.eng.InvalidateMembership(ctx.Context(), m.ID, event.MutationBindingChanged); err != nil {
		return nil, mapError(err)
	}

	return b, ctx.JSON(http.StatusCreated, b)
}

func (a *API) listBindings(ctx forge.Context, _ *GetMembershipRequest) ([]*membership.ScopeBinding, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	bindings, err := a.eng.Store().ListBindings(ctx.Context(), m.ID)
	if err != nil {
		return nil, mapError(err)
	}

	return bindings, ctx.JSON(http.StatusOK, bindings)
}

func (a *API) deleteBinding(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	m, err := a.tenantMembership(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	bindID, err := id.ParseBindingID(ctx.Param("bindingId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid binding ID: %v", err))
	}

	if err := a.eng.Store().DeleteBinding(ctx.Context(), bindID); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.InvalidateMembership(ctx.Context(), m.ID, event.MutationBindingChanged); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
