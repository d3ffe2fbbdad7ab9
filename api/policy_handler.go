package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

func (a *API) registerPolicyRoutes(router forge.Router) error {
	g := router.Group("/v1/policy", forge.WithGroupTags("policy"))

	if err := g.GET("/application", a.getApplication,
		forge.WithSummary("Get application"),
		forge.WithDescription("Returns the configured application."),
		forge.WithOperationID("getApplication"),
		forge.WithResponseSchema(http.StatusOK, "Application", &application.Application{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/operations", a.listOperations,
		forge.WithSummary("List operations"),
		forge.WithDescription("Lists operations ordered by operation id."),
		forge.WithOperationID("listOperations"),
		forge.WithRequestSchema(ListOperationsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Operation list", ListResponse[*operation.Operation]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/operations", a.createOperation,
		forge.WithSummary("Define operation"),
		forge.WithDescription("Adds an operation with a unique name and operation id."),
		forge.WithOperationID("createOperation"),
		forge.WithRequestSchema(CreateOperationRequest{}),
		forge.WithCreatedResponse(&operation.Operation{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/operations/:operation", a.deleteOperation,
		forge.WithSummary("Delete operation"),
		forge.WithDescription("Removes an operation."),
		forge.WithOperationID("deleteOperation"),
		forge.WithRequestSchema(OperationRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/tasks", a.listTasks,
		forge.WithSummary("List tasks"),
		forge.WithDescription("Lists tasks with optional filters."),
		forge.WithOperationID("listTasks"),
		forge.WithRequestSchema(ListTasksRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Task list", ListResponse[*task.Task]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/tasks", a.createTask,
		forge.WithSummary("Define task"),
		forge.WithDescription("Adds a task bundling operations and nested tasks, optionally guarded by a business rule."),
		forge.WithOperationID("createTask"),
		forge.WithRequestSchema(CreateTaskRequest{}),
		forge.WithCreatedResponse(&task.Task{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/tasks/:task", a.deleteTask,
		forge.WithSummary("Delete task"),
		forge.WithDescription("Removes a task. Role definitions are removed with their role."),
		forge.WithOperationID("deleteTask"),
		forge.WithRequestSchema(TaskRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/tasks/:task/operations", a.taskOperations,
		forge.WithSummary("Expand task"),
		forge.WithDescription("Returns the operation ids of a task including nested tasks."),
		forge.WithOperationID("taskOperations"),
		forge.WithRequestSchema(TaskRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Operation ids", TaskOperationsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/roles", a.listRoles,
		forge.WithSummary("List stored roles"),
		forge.WithDescription("Lists role records with their grants."),
		forge.WithOperationID("listRoles"),
		forge.WithRequestSchema(ListRolesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role list", ListResponse[*role.Role]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getApplication(ctx forge.Context, _ *struct{}) (*application.Application, error) {
	app, err := a.eng.Application(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	return app, ctx.JSON(http.StatusOK, app)
}

func (a *API) listOperations(ctx forge.Context, req *ListOperationsRequest) (*ListResponse[*operation.Operation], error) {
	h, err := a.eng.OpenHandle(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	defer h.Close()

	filter := &operation.ListFilter{
		AppID:  h.Application().ID,
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}
	ops, err := h.Store().ListOperations(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := h.Store().CountOperations(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*operation.Operation]{Items: ops, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) createOperation(ctx forge.Context, req *CreateOperationRequest) (*operation.Operation, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	o, err := a.eng.DefineOperation(ctx.Context(), azguard.OperationDefinition{
		Name:        req.Name,
		Description: req.Description,
		OperationID: req.OperationID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return o, ctx.JSON(http.StatusCreated, o)
}

func (a *API) deleteOperation(ctx forge.Context, _ *OperationRequest) (*struct{}, error) {
	name := ctx.Param("operation")
	deleted, err := a.eng.DeleteOperation(ctx.Context(), name)
	if err != nil {
		return nil, mapError(err)
	}
	if !deleted {
		return nil, forge.NotFound(fmt.Sprintf("operation %q does not exist", name))
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listTasks(ctx forge.Context, req *ListTasksRequest) (*ListResponse[*task.Task], error) {
	h, err := a.eng.OpenHandle(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	defer h.Close()

	filter := &task.ListFilter{
		AppID:            h.Application().ID,
		Scope:            optionalScope(req.Scope),
		IsRoleDefinition: req.RoleDefinitions,
		Search:           req.Search,
		Limit:            defaultLimit(req.Limit),
		Offset:           req.Offset,
	}
	tasks, err := h.Store().ListTasks(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := h.Store().CountTasks(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*task.Task]{Items: tasks, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) createTask(ctx forge.Context, req *CreateTaskRequest) (*task.Task, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	t, err := a.eng.DefineTask(c, azguard.TaskDefinition{
		Name:        req.Name,
		Description: req.Description,
		BizRule:     req.BizRule,
		Operations:  req.Operations,
		Tasks:       req.Tasks,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return t, ctx.JSON(http.StatusCreated, t)
}

func (a *API) deleteTask(ctx forge.Context, req *TaskRequest) (*struct{}, error) {
	name := ctx.Param("task")
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	deleted, err := a.eng.DeleteTask(c, name)
	if err != nil {
		return nil, mapError(err)
	}
	if !deleted {
		return nil, forge.NotFound(fmt.Sprintf("task %q does not exist", name))
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) taskOperations(ctx forge.Context, req *TaskRequest) (*TaskOperationsResponse, error) {
	name := ctx.Param("task")
	h, err := a.eng.OpenHandle(checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{}))
	if err != nil {
		return nil, mapError(err)
	}
	defer h.Close()

	ids, err := h.OperationsForTask(name, h.Scope())
	if err != nil {
		return nil, mapError(err)
	}
	if ids == nil {
		ids = []int{}
	}
	resp := &TaskOperationsResponse{Task: name, OperationIDs: ids}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listRoles(ctx forge.Context, req *ListRolesRequest) (*ListResponse[*role.Role], error) {
	h, err := a.eng.OpenHandle(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	defer h.Close()

	filter := &role.ListFilter{
		AppID:  h.Application().ID,
		Scope:  optionalScope(req.Scope),
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}
	roles, err := h.Store().ListRoles(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := h.Store().CountRoles(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*role.Role]{Items: roles, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}
