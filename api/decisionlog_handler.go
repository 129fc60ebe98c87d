package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/steward/decisionlog"
)

func (a *API) registerDecisionLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("decision-logs"))

	return g.GET("/decision-logs", a.listDecisionLogs,
		forge.WithSummary("Query decision logs"),
		forge.WithDescription("Returns authorization decision audit records with optional filters."),
		forge.WithOperationID("listDecisionLogs"),
		forge.WithRequestSchema(ListDecisionLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision log list", []*decisionlog.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listDecisionLogs(ctx forge.Context, req *ListDecisionLogsRequest) ([]*decisionlog.Entry, error) {
	tenantID, err := requestTenant(ctx)
	if err != nil {
		return nil, err
	}
	filter := &decisionlog.QueryFilter{
		TenantID:    tenantID,
		PrincipalID: req.PrincipalID,
		Domain:      req.Domain,
		ScopeType:   req.ScopeType,
		ResourceID:  req.ResourceID,
		Limit:       defaultLimit(req.Limit),
		Offset:      req.Offset,
	}

	switch req.Allowed {
	case "true":
		v := true
		filter.Allowed = &v
	case "false":
		v := false
		filter.Allowed = &v
	}
	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.eng.Store().ListEntries(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return logs, ctx.JSON(http.StatusOK, logs)
}
