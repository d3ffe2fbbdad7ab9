package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/azguard/checklog"
)

func (a *API) registerCheckLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("check-logs"))

	return g.GET("/check-logs", a.listCheckLogs,
		forge.WithSummary("Query check logs"),
		forge.WithDescription("Returns access check audit records, newest first."),
		forge.WithOperationID("listCheckLogs"),
		forge.WithRequestSchema(ListCheckLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check log list", []*checklog.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listCheckLogs(ctx forge.Context, req *ListCheckLogsRequest) ([]*checklog.Entry, error) {
	h, err := a.eng.OpenHandle(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	defer h.Close()

	filter := &checklog.QueryFilter{
		AppID:    h.Application().ID,
		UserName: req.User,
		AuditID:  req.AuditID,
		Allowed:  req.Allowed,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
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

	logs, err := h.Store().ListCheckLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	if logs == nil {
		logs = []*checklog.Entry{}
	}

	return logs, ctx.JSON(http.StatusOK, logs)
}
