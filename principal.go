package azguard

import (
	"context"
	"slices"
)

// Principal is an immutable snapshot of a user's roles, operations and
// tasks. Build one with Engine.Principal or NewPrincipal.
type Principal struct {
	name          string
	authenticated bool
	roles         []string
	operations    []string
	tasks         []string
	fold          bool
}

// NewPrincipal creates a principal from already evaluated grants. fold
// selects Unicode case-folded name comparison.
func NewPrincipal(name string, authenticated bool, roles, operations, tasks []string, fold bool) *Principal {
	return &Principal{
		name:          name,
		authenticated: authenticated,
		roles:         slices.Clone(roles),
		operations:    slices.Clone(operations),
		tasks:         slices.Clone(tasks),
		fold:          fold,
	}
}

// Principal evaluates userName's roles, operations and tasks against one
// policy snapshot. When params is nil the parameters attached with
// WithParams are used, if any.
func (e *Engine) Principal(ctx context.Context, userName string, params *Params) (*Principal, error) {
	fold := e.config.foldNames()
	name := trimUser(userName)
	if name == "" {
		return NewPrincipal("", false, nil, nil, nil, fold), nil
	}
	params = paramsOrContext(ctx, params)
	h, cc, err := e.session(ctx, name)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if err := refreshForParams(ctx, h, params); err != nil {
		return nil, err
	}
	ops, err := operationsForUser(ctx, h, cc, params)
	if err != nil {
		return nil, err
	}
	tasks, err := tasksForUser(ctx, h, cc, params)
	if err != nil {
		return nil, err
	}
	return &Principal{
		name:          cc.identity.Name,
		authenticated: true,
		roles:         cc.Roles(),
		operations:    ops,
		tasks:         tasks,
		fold:          fold,
	}, nil
}

// Name returns the user name.
func (p *Principal) Name() string { return p.name }

// IsAuthenticated reports whether the principal was resolved from a user.
func (p *Principal) IsAuthenticated() bool { return p.authenticated }

// Roles returns a copy of the held role names.
func (p *Principal) Roles() []string { return slices.Clone(p.roles) }

// Operations returns a copy of the granted operation names.
func (p *Principal) Operations() []string { return slices.Clone(p.operations) }

// Tasks returns a copy of the granted task names.
func (p *Principal) Tasks() []string { return slices.Clone(p.tasks) }

// IsInRole reports whether the principal holds role.
func (p *Principal) IsInRole(role string) bool {
	return containsName(p.fold, p.roles, role)
}

// Can reports whether name is a granted operation or task.
func (p *Principal) Can(name string) bool {
	return p.HasRequiredOperation(name) || p.HasRequiredTask(name)
}

// HasRequiredOperation reports whether the operation is granted.
func (p *Principal) HasRequiredOperation(operation string) bool {
	return containsName(p.fold, p.operations, operation)
}

// HasRequiredTask reports whether the task is granted.
func (p *Principal) HasRequiredTask(task string) bool {
	return containsName(p.fold, p.tasks, task)
}

// HasRequiredOperations reports whether every listed operation is granted.
// An empty requirement is always met.
func (p *Principal) HasRequiredOperations(operations ...string) bool {
	return containsAll(p.fold, p.operations, operations)
}

// HasRequiredTasks reports whether every listed task is granted.
func (p *Principal) HasRequiredTasks(tasks ...string) bool {
	return containsAll(p.fold, p.tasks, tasks)
}

func containsAll(fold bool, granted, required []string) bool {
	for _, r := range required {
		if !containsName(fold, granted, r) {
			return false
		}
	}
	return true
}
