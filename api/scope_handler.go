package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/azguard/application"
)

func (a *API) registerScopeRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("scopes"))

	if err := g.GET("/scopes", a.listScopes,
		forge.WithSummary("List scopes"),
		forge.WithDescription("Lists the scopes of the application ordered by name."),
		forge.WithOperationID("listScopes"),
		forge.WithResponseSchema(http.StatusOK, "Scope list", []*application.Scope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/scopes", a.createScope,
		forge.WithSummary("Create scope"),
		forge.WithDescription("Adds a named scope to the application."),
		forge.WithOperationID("createScope"),
		forge.WithRequestSchema(CreateScopeRequest{}),
		forge.WithCreatedResponse(&application.Scope{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/scopes/:scope", a.deleteScope,
		forge.WithSummary("Delete scope"),
		forge.WithDescription("Removes a scope with the tasks, roles and memberships defined in it."),
		forge.WithOperationID("deleteScope"),
		forge.WithRequestSchema(ScopeRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) listScopes(ctx forge.Context, _ *struct{}) ([]*application.Scope, error) {
	scopes, err := a.eng.Scopes(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	if scopes == nil {
		scopes = []*application.Scope{}
	}
	return scopes, ctx.JSON(http.StatusOK, scopes)
}

func (a *API) createScope(ctx forge.Context, req *CreateScopeRequest) (*application.Scope, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	sc, err := a.eng.CreateScope(ctx.Context(), req.Name, req.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return sc, ctx.JSON(http.StatusCreated, sc)
}

func (a *API) deleteScope(ctx forge.Context, _ *ScopeRequest) (*struct{}, error) {
	name := ctx.Param("scope")
	deleted, err := a.eng.DeleteScope(ctx.Context(), name)
	if err != nil {
		return nil, mapError(err)
	}
	if !deleted {
		return nil, forge.NotFound(fmt.Sprintf("scope %q does not exist", name))
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}
