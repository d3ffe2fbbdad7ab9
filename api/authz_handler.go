package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerAuthzRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Authorize context"),
		forge.WithDescription("Checks whether the user holds every operation of an authorization context. O:<operation> checks one operation, anything else names a task."),
		forge.WithOperationID("authzAuthorize"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Authorization result", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce context"),
		forge.WithDescription("Returns 200 if the context is granted, 403 otherwise."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) authorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	resp, err := a.runAuthorize(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	resp, err := a.runAuthorize(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) runAuthorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if req.User == "" || req.Context == "" {
		return nil, forge.BadRequest("user and context are required")
	}
	c := checkContext(ctx.Context(), optionalScope(req.Scope), req.ClientParams)
	allowed, err := a.eng.Authorize(c, req.User, req.Context)
	if err != nil {
		return nil, mapError(err)
	}
	return &AuthorizeResponse{User: req.User, Context: req.Context, Allowed: allowed}, nil
}
