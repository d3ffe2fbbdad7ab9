package azguard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

// AccessCheck evaluates operationIDs for the bound identity and returns a
// decision vector of the same length and order. DecisionAllow means the
// operation is granted.
//
// scopes selects the scope to check in; only the first entry is used and
// an empty slice means the context scope. A scope the application does not
// define fails with ErrScopeNotFound. paramNames must be sorted and
// aligned with paramValues. An unknown operation id fails the whole check.
func (c *ClientContext) AccessCheck(ctx context.Context, auditID string, scopes []string, operationIDs []int, paramNames []string, paramValues []any) ([]int, error) {
	if c.h.closed {
		return nil, ErrHandleClosed
	}
	if err := checkParamVectors(paramNames, paramValues); err != nil {
		return nil, err
	}
	scope := c.scope
	if len(scopes) > 0 {
		scope = scopes[0]
		if err := c.h.checkScope(scope); err != nil {
			return nil, err
		}
	}
	for _, opID := range operationIDs {
		if _, ok := c.h.opsByID[opID]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrOperationNotFound, opID)
		}
	}

	req := &AccessCheckRequest{
		AuditID:      auditID,
		UserName:     c.identity.Name,
		UserSID:      c.identity.SID,
		Scope:        scope,
		OperationIDs: slices.Clone(operationIDs),
		ParamNames:   paramNames,
		ParamValues:  paramValues,
	}
	eng := c.h.eng
	if eng.plugins != nil {
		eng.plugins.EmitBeforeCheck(ctx, req)
	}

	start := time.Now()
	env := make(map[string]any, len(paramNames))
	for i, name := range paramNames {
		env[name] = paramValues[i]
	}
	g := &grantWalker{
		h:           c.h,
		env:         env,
		fingerprint: paramFingerprint(paramNames, paramValues),
	}

	held := c.heldRoles(scope)

	results := make([]int, len(operationIDs))
	for i, opID := range operationIDs {
		op := c.h.opsByID[opID]
		results[i] = DecisionAccessDenied
		for _, r := range held {
			ok, err := g.roleGrants(ctx, r, op.Name)
			if err != nil {
				eng.logger.Warn("azguard: access check failed",
					slog.String("audit_id", auditID),
					slog.String("user", c.identity.Name),
					slog.String("error", err.Error()),
				)
				return nil, err
			}
			if ok {
				results[i] = DecisionAllow
				break
			}
		}
	}

	result := &AccessCheckResult{
		Results:    results,
		EvalTimeNs: time.Since(start).Nanoseconds(),
	}
	c.record(ctx, req, result, env)
	if eng.plugins != nil {
		eng.plugins.EmitAfterCheck(ctx, req, result)
	}
	return results, nil
}

// paramFingerprint keys cached rule results. Values are written with their
// dynamic type so that "true" and true never share a result.
func paramFingerprint(names []string, values []any) string {
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "%s=%T:%#v\x00", name, values[i], values[i])
	}
	return b.String()
}

func checkParamVectors(names []string, values []any) error {
	if len(names) != len(values) {
		return fmt.Errorf("%w: %d parameter names for %d values", ErrInvalidParameter, len(names), len(values))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			return fmt.Errorf("%w: parameter names must be sorted and unique (%q, %q)", ErrInvalidParameter, names[i-1], names[i])
		}
	}
	return nil
}

// record stores a check log entry. Failures are logged and do not change
// the decision.
func (c *ClientContext) record(ctx context.Context, req *AccessCheckRequest, result *AccessCheckResult, env map[string]any) {
	eng := c.h.eng
	if eng.config.DisableCheckLog {
		return
	}
	entry := &checklog.Entry{
		ID:           id.NewCheckLogID(),
		AppID:        c.h.app.ID,
		AuditID:      req.AuditID,
		UserName:     req.UserName,
		UserSID:      req.UserSID,
		Scope:        req.Scope,
		OperationIDs: req.OperationIDs,
		Results:      slices.Clone(result.Results),
		Allowed:      result.Allowed(),
		EvalTimeNs:   result.EvalTimeNs,
		CreatedAt:    time.Now().UTC(),
	}
	if len(env) > 0 {
		entry.Params = env
	}
	if err := c.h.store.CreateCheckLog(ctx, entry); err != nil {
		eng.logger.Warn("azguard: failed to write check log",
			slog.String("audit_id", req.AuditID),
			slog.String("error", err.Error()),
		)
	}
}

// ──────────────────────────────────────────────────
// Grant walk
// ──────────────────────────────────────────────────

type grantWalker struct {
	h           *Handle
	env         map[string]any
	fingerprint string
}

// roleGrants reports whether r grants the named operation directly or
// through its tasks.
func (g *grantWalker) roleGrants(ctx context.Context, r *role.Role, opName string) (bool, error) {
	fold := g.h.fold()
	if containsName(fold, r.Operations, opName) {
		return true, nil
	}
	visited := make(map[*task.Task]struct{})
	for _, name := range r.Tasks {
		t := g.h.findTask(name, r.Scope)
		if t == nil {
			continue
		}
		ok, err := g.taskGrants(ctx, t, opName, visited)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (g *grantWalker) taskGrants(ctx context.Context, t *task.Task, opName string, visited map[*task.Task]struct{}) (bool, error) {
	if _, seen := visited[t]; seen {
		return false, nil
	}
	visited[t] = struct{}{}

	pass, err := g.rulePasses(ctx, t)
	if err != nil || !pass {
		return false, err
	}
	if containsName(g.h.fold(), t.Operations, opName) {
		return true, nil
	}
	for _, name := range t.Tasks {
		sub := g.h.findTask(name, t.Scope)
		if sub == nil {
			continue
		}
		ok, err := g.taskGrants(ctx, sub, opName, visited)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (g *grantWalker) rulePasses(ctx context.Context, t *task.Task) (bool, error) {
	if t.BizRule == "" {
		return true, nil
	}
	key := g.fingerprint + "\x00" + t.ID.String()
	if v, ok := g.h.ruleResults[key]; ok {
		return v, nil
	}
	ok, err := g.h.eng.rules.Evaluate(ctx, t.BizRule, g.env)
	if err != nil {
		return false, fmt.Errorf("task %q: %w", t.Name, err)
	}
	g.h.ruleResults[key] = ok
	return ok, nil
}
