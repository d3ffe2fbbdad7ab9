package azguard

import (
	"context"
	"strings"
)

// Audit id prefixes for aggregate queries.
const (
	auditOperationsForUser = "GetOperationsForUser:"
	auditTasksForUser      = "GetTasksForUser:"
)

// RolesForUser returns the names of the roles userName holds in the check
// scope. An empty user name yields an empty result.
func (e *Engine) RolesForUser(ctx context.Context, userName string) ([]string, error) {
	if trimUser(userName) == "" {
		return []string{}, nil
	}
	h, cc, err := e.session(ctx, userName)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return cc.Roles(), nil
}

// OperationsForUser returns the names of the operations userName may
// perform, in operation id order. When params is nil the parameters
// attached with WithParams are used, if any.
func (e *Engine) OperationsForUser(ctx context.Context, userName string, params *Params) ([]string, error) {
	if trimUser(userName) == "" {
		return []string{}, nil
	}
	params = paramsOrContext(ctx, params)
	h, cc, err := e.session(ctx, userName)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	if err := refreshForParams(ctx, h, params); err != nil {
		return nil, err
	}
	return operationsForUser(ctx, h, cc, params)
}

// TasksForUser returns the names of the tasks whose operations userName
// may all perform. Tasks without operations are never returned.
func (e *Engine) TasksForUser(ctx context.Context, userName string, params *Params) ([]string, error) {
	if trimUser(userName) == "" {
		return []string{}, nil
	}
	params = paramsOrContext(ctx, params)
	h, cc, err := e.session(ctx, userName)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	if err := refreshForParams(ctx, h, params); err != nil {
		return nil, err
	}
	return tasksForUser(ctx, h, cc, params)
}

func operationsForUser(ctx context.Context, h *Handle, cc *ClientContext, params *Params) ([]string, error) {
	ops := h.Operations()
	granted := []string{}
	if len(ops) == 0 {
		return granted, nil
	}
	ids := make([]int, len(ops))
	for i, o := range ops {
		ids[i] = o.OperationID
	}
	names, values := paramArgs(params)
	results, err := cc.AccessCheck(ctx, auditOperationsForUser+cc.identity.Name, []string{cc.scope}, ids, names, values)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		if r == DecisionAllow {
			granted = append(granted, ops[i].Name)
		}
	}
	return granted, nil
}

func tasksForUser(ctx context.Context, h *Handle, cc *ClientContext, params *Params) ([]string, error) {
	names, values := paramArgs(params)
	auditID := auditTasksForUser + cc.identity.Name
	granted := []string{}
	for _, t := range h.Tasks(cc.scope) {
		ids, err := h.OperationsForTask(t.Name, cc.scope)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			continue
		}
		results, err := cc.AccessCheck(ctx, auditID, []string{cc.scope}, ids, names, values)
		if err != nil {
			return nil, err
		}
		if allAllowed(results) {
			granted = append(granted, t.Name)
		}
	}
	return granted, nil
}

// CanUserAccessOperation reports whether userName may perform the named
// operation. An empty user name is never granted.
func (e *Engine) CanUserAccessOperation(ctx context.Context, userName, operationName string) (bool, error) {
	if trimUser(userName) == "" {
		return false, nil
	}
	name, err := checkParameter(operationName, true, false, maxNameLength, "operationName")
	if err != nil {
		return false, err
	}
	ops, err := e.OperationsForUser(ctx, userName, nil)
	if err != nil {
		return false, err
	}
	return containsName(e.config.foldNames(), ops, name), nil
}

// CanUserAccessTask reports whether userName may perform every operation
// of the named task.
func (e *Engine) CanUserAccessTask(ctx context.Context, userName, taskName string) (bool, error) {
	if trimUser(userName) == "" {
		return false, nil
	}
	name, err := checkParameter(taskName, true, false, maxNameLength, "taskName")
	if err != nil {
		return false, err
	}
	tasks, err := e.TasksForUser(ctx, userName, nil)
	if err != nil {
		return false, err
	}
	return containsName(e.config.foldNames(), tasks, name), nil
}

// Authorize checks a single authorization context for userName. A context
// of the form "O:<operation>" checks one operation; anything else names a
// task whose operations must all be granted. A task without operations is
// denied.
func (e *Engine) Authorize(ctx context.Context, userName, authContext string) (bool, error) {
	if trimUser(userName) == "" {
		return false, nil
	}
	authContext, err := checkParameter(authContext, true, false, 0, "context")
	if err != nil {
		return false, err
	}
	h, cc, err := e.session(ctx, userName)
	if err != nil {
		return false, err
	}
	defer h.Close()

	var ids []int
	if opName, ok := strings.CutPrefix(authContext, "O:"); ok {
		op, err := h.Operation(opName)
		if err != nil {
			return false, err
		}
		ids = []int{op.OperationID}
	} else {
		ids, err = h.OperationsForTask(authContext, cc.scope)
		if err != nil {
			return false, err
		}
		if len(ids) == 0 {
			return false, nil
		}
	}

	params := paramsOrContext(ctx, nil)
	if err := refreshForParams(ctx, h, params); err != nil {
		return false, err
	}
	names, values := paramArgs(params)
	auditID := e.config.AuditIdentifierPrefix + trimUser(userName) + ":" + authContext
	results, err := cc.AccessCheck(ctx, auditID, []string{cc.scope}, ids, names, values)
	if err != nil {
		return false, err
	}
	return allAllowed(results), nil
}

// refreshForParams reloads the handle before a parameterised check so
// business rules see current policy.
func refreshForParams(ctx context.Context, h *Handle, params *Params) error {
	if params == nil {
		return nil
	}
	return h.UpdateCache(ctx)
}

func paramsOrContext(ctx context.Context, params *Params) *Params {
	if params != nil {
		return params
	}
	if p, ok := ParamsFromContext(ctx); ok {
		return p
	}
	return nil
}

func paramArgs(p *Params) ([]string, []any) {
	if p == nil {
		return nil, nil
	}
	return p.Names(), p.Values()
}
