package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1/users", forge.WithGroupTags("users"))

	if err := g.GET("/:user/roles", a.userRoles,
		forge.WithSummary("List user roles"),
		forge.WithDescription("Returns the roles the user holds directly or through group membership."),
		forge.WithOperationID("listUserRoles"),
		forge.WithRequestSchema(UserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role names", NamesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:user/operations", a.userOperations,
		forge.WithSummary("List user operations"),
		forge.WithDescription("Evaluates every operation of the application for the user in one access check."),
		forge.WithOperationID("listUserOperations"),
		forge.WithRequestSchema(UserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Operation names", NamesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:user/tasks", a.userTasks,
		forge.WithSummary("List user tasks"),
		forge.WithDescription("Returns the tasks whose operations are all granted to the user."),
		forge.WithOperationID("listUserTasks"),
		forge.WithRequestSchema(UserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Task names", NamesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:user/principal", a.userPrincipal,
		forge.WithSummary("Get principal"),
		forge.WithDescription("Returns the user's roles, operations and tasks from one policy snapshot."),
		forge.WithOperationID("getPrincipal"),
		forge.WithRequestSchema(UserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Principal", PrincipalResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:user/operations/:operation", a.canAccessOperation,
		forge.WithSummary("Check operation"),
		forge.WithDescription("Reports whether the user may perform the operation."),
		forge.WithOperationID("canAccessOperation"),
		forge.WithRequestSchema(UserOperationRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", AllowedResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/:user/tasks/:task", a.canAccessTask,
		forge.WithSummary("Check task"),
		forge.WithDescription("Reports whether the user may perform every operation of the task."),
		forge.WithOperationID("canAccessTask"),
		forge.WithRequestSchema(UserTaskRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", AllowedResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) userRoles(ctx forge.Context, req *UserRequest) (*NamesResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), req.ClientParams)
	roles, err := a.eng.RolesForUser(c, ctx.Param("user"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &NamesResponse{Names: nonNil(roles)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) userOperations(ctx forge.Context, req *UserRequest) (*NamesResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), req.ClientParams)
	ops, err := a.eng.OperationsForUser(c, ctx.Param("user"), nil)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &NamesResponse{Names: nonNil(ops)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) userTasks(ctx forge.Context, req *UserRequest) (*NamesResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), req.ClientParams)
	tasks, err := a.eng.TasksForUser(c, ctx.Param("user"), nil)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &NamesResponse{Names: nonNil(tasks)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) userPrincipal(ctx forge.Context, req *UserRequest) (*PrincipalResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), req.ClientParams)
	p, err := a.eng.Principal(c, ctx.Param("user"), nil)
	if err != nil {
		return nil, mapError(err)
	}
	resp := toPrincipalResponse(p)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) canAccessOperation(ctx forge.Context, req *UserOperationRequest) (*AllowedResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	ok, err := a.eng.CanUserAccessOperation(c, ctx.Param("user"), ctx.Param("operation"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &AllowedResponse{Allowed: ok}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) canAccessTask(ctx forge.Context, req *UserTaskRequest) (*AllowedResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	ok, err := a.eng.CanUserAccessTask(c, ctx.Param("user"), ctx.Param("task"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &AllowedResponse{Allowed: ok}
	return resp, ctx.JSON(http.StatusOK, resp)
}
