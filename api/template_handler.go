package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/template"
)

func (a *API) registerTemplateRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("templates"))

	if err := g.POST("/templates", a.createTemplate,
		forge.WithSummary("Create template"),
		forge.WithDescription("Creates a role template with optional initial declarations."),
		forge.WithOperationID("createTemplate"),
		forge.WithRequestSchema(CreateTemplateRequest{}),
		forge.WithCreatedResponse(&TemplateResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/templates/:templateId", a.getTemplate,
		forge.WithSummary("Get template"),
		forge.WithOperationID("getTemplate"),
		forge.WithResponseSchema(http.StatusOK, "Template details", &TemplateResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/templates/:templateId", a.updateTemplate,
		forge.WithSummary("Update template"),
		forge.WithOperationID("updateTemplate"),
		forge.WithRequestSchema(UpdateTemplateRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated template", &template.Template{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/templates/:templateId/items", a.setTemplateItems,
		forge.WithSummary("Replace template items"),
		forge.WithDescription("Wholesale replaces the template's per-scope-level declarations."),
		forge.WithOperationID("setTemplateItems"),
		forge.WithRequestSchema(SetTemplateItemsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Replacement items", []*template.Item{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/templates/:templateId", a.deleteTemplate,
		forge.WithSummary("Delete template"),
		forge.WithOperationID("deleteTemplate"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/templates", a.listTemplates,
		forge.WithSummary("List templates"),
		forge.WithOperationID("listTemplates"),
		forge.WithRequestSchema(ListTemplatesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Template list", []*template.Template{}),
		forge.WithErrorResponses(),
	)
}

// tenantTemplate loads a template and enforces tenant visibility.
func (a *API) tenantTemplate(ctx forge.Context, tenantID string) (*template.Template, error) {
	tmplID, err := id.ParseTemplateID(ctx.Param("templateId"))
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
	return t, nil
}

// parseItems validates declaration input. ORG, PROPERTY, and UNIT level
// items are allowed; ASSET level declarations only come from assignments.
func parseItems(tmplID id.TemplateID, inputs []TemplateItemInput) ([]*template.Item, error) {
	items := make([]*template.Item, 0, len(inputs))
	for i, in := range inputs {
		st := steward.ScopeType(in.ScopeType)
		if st != steward.ScopeOrg && st != steward.ScopeProperty && st != steward.ScopeUnit {
			return nil, forge.BadRequest(fmt.Sprintf("items[%d]: scope_type must be ORG, PROPERTY, or UNIT", i))
		}
		perms, err := steward.ParsePermissions(in.Permissions)
		if err != nil {
			return nil, mapError(err)
		}
		if len(perms) == 0 {
			return nil, forge.BadRequest(fmt.Sprintf("items[%d]: permissions cannot be empty", i))
		}
		items = append(items, &template.Item{
			ID:          id.NewTemplateItemID(),
			TemplateID:  tmplID,
			ScopeType:   in.ScopeType,
			Permissions: perms.Encode(),
		})
	}
	return items, nil
}

func (a *API) createTemplate(ctx forge.Context, req *CreateTemplateRequest) (*TemplateResponse, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	t := &template.Template{
		ID:          id.NewTemplateID(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
	}
	items, err := parseItems(t.ID, req.Items)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().CreateTemplate(ctx.Context(), t); err != nil {
		return nil, mapError(err)
	}
	if len(items) > 0 {
		if err := a.eng.Store().SetItems(ctx.Context(), t.ID, items); err != nil {
			return nil, mapError(err)
		}
	}

	resp := &TemplateResponse{Template: t, Items: items}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) getTemplate(ctx forge.Context, _ *GetTemplateRequest) (*TemplateResponse, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenantTemplate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items, err := a.eng.Store().ListItems(ctx.Context(), t.ID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &TemplateResponse{Template: t, Items: items}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) updateTemplate(ctx forge.Context, req *UpdateTemplateRequest) (*template.Template, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenantTemplate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Description != "" {
		t.Description = req.Description
	}

	if err := a.eng.Store().UpdateTemplate(ctx.Context(), t); err != nil {
		return nil, mapError(err)
	}

	// Name and description do not affect grants; no invalidation.
	return t, ctx.JSON(http.StatusOK, t)
}

func (a *API) setTemplateItems(ctx forge.Context, req *SetTemplateItemsRequest) ([]*template.Item, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenantTemplate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(t.ID, req.Items)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().SetItems(ctx.Context(), t.ID, items); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.InvalidateTemplate(ctx.Context(), t.ID); err != nil {
		return nil, mapError(err)
	}

	return items, ctx.JSON(http.StatusOK, items)
}

func (a *API) deleteTemplate(ctx forge.Context, _ *GetTemplateRequest) (*struct{}, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenantTemplate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Memberships referencing the template lose those grants. Collect the
	// affected principals while the reference rows still exist; publish
	// only after the delete commits.
	principals, err := a.eng.TemplatePrincipals(ctx.Context(), t.ID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().DeleteTemplate(ctx.Context(), t.ID); err != nil {
		return nil, mapError(err)
	}
	a.eng.PublishInvalidation(ctx.Context(), event.MutationTemplateUpdated, tenantID, principals...)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listTemplates(ctx forge.Context, req *ListTemplatesRequest) ([]*template.Template, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	filter := &template.ListFilter{
		TenantID: tenantID,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	templates, err := a.eng.Store().ListTemplates(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return templates, ctx.JSON(http.StatusOK, templates)
}
