package azguard

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/store/memory"
	"github.com/xraph/azguard/task"
)

type definitionPlugin struct {
	opsCreated   []string
	opsDeleted   int
	tasksCreated []string
	tasksDeleted []id.TaskID
}

func (p *definitionPlugin) Name() string { return "definitions" }

func (p *definitionPlugin) OnOperationCreated(_ context.Context, o *operation.Operation) error {
	p.opsCreated = append(p.opsCreated, o.Name)
	return nil
}

func (p *definitionPlugin) OnOperationDeleted(_ context.Context, _ id.OperationID) error {
	p.opsDeleted++
	return nil
}

func (p *definitionPlugin) OnTaskCreated(_ context.Context, t *task.Task) error {
	p.tasksCreated = append(p.tasksCreated, t.Name)
	return nil
}

func (p *definitionPlugin) OnTaskDeleted(_ context.Context, taskID id.TaskID) error {
	p.tasksDeleted = append(p.tasksDeleted, taskID)
	return nil
}

func TestEnsureApplication(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	eng, err := NewEngine(WithStore(s), WithDirectory(newFixture(t).dir), WithConfig(Config{ApplicationName: "Payroll"}))
	must(t, err)

	first, err := eng.EnsureApplication(ctx, "salaries")
	must(t, err)
	second, err := eng.EnsureApplication(ctx, "ignored")
	must(t, err)
	if first.ID != second.ID {
		t.Fatal("expected the existing application to be returned")
	}
	if second.Description != "salaries" {
		t.Fatalf("description overwritten: %q", second.Description)
	}
	if _, err := eng.OpenHandle(ctx); err != nil {
		t.Fatalf("open after ensure: %v", err)
	}
}

func TestDefineOperation(t *testing.T) {
	f := newFixture(t)
	rec := &definitionPlugin{}
	eng := f.engine(t, WithPlugin(rec))
	ctx := context.Background()

	o, err := eng.DefineOperation(ctx, OperationDefinition{Name: " RefundInvoice ", OperationID: 4})
	must(t, err)
	if o.Name != "RefundInvoice" {
		t.Fatalf("name not trimmed: %q", o.Name)
	}

	if _, err := eng.DefineOperation(ctx, OperationDefinition{Name: "RefundInvoice", OperationID: 9}); !errors.Is(err, ErrOperationExists) {
		t.Fatalf("expected ErrOperationExists for name, got %v", err)
	}
	if _, err := eng.DefineOperation(ctx, OperationDefinition{Name: "Other", OperationID: 1}); !errors.Is(err, ErrOperationExists) {
		t.Fatalf("expected ErrOperationExists for number, got %v", err)
	}
	if _, err := eng.DefineOperation(ctx, OperationDefinition{Name: "Other", OperationID: 0}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := eng.DefineOperation(ctx, OperationDefinition{Name: "a,b", OperationID: 10}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for comma, got %v", err)
	}

	removed, err := eng.DeleteOperation(ctx, "RefundInvoice")
	must(t, err)
	if !removed {
		t.Fatal("expected removal")
	}
	removed, err = eng.DeleteOperation(ctx, "RefundInvoice")
	must(t, err)
	if removed {
		t.Fatal("second removal should report false")
	}

	equalNames(t, "operations created", rec.opsCreated, []string{"RefundInvoice"})
	if rec.opsDeleted != 1 {
		t.Fatalf("expected 1 delete event, got %d", rec.opsDeleted)
	}
}

func TestDefineTask(t *testing.T) {
	f := newFixture(t)
	rec := &definitionPlugin{}
	eng := f.engine(t, WithPlugin(rec))
	ctx := context.Background()

	tk, err := eng.DefineTask(ctx, TaskDefinition{
		Name:       "Review",
		Operations: []string{"ViewInvoice"},
		Tasks:      []string{"Audit"},
		BizRule:    "IsSecureConnection == true",
	})
	must(t, err)
	if tk.Scope != "" {
		t.Fatalf("expected application-level task, got scope %q", tk.Scope)
	}

	if _, err := eng.DefineTask(ctx, TaskDefinition{Name: "Review"}); !errors.Is(err, ErrTaskExists) {
		t.Fatalf("expected ErrTaskExists, got %v", err)
	}
	if _, err := eng.DefineTask(ctx, TaskDefinition{Name: "Bad", Operations: []string{"Nope"}}); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := eng.DefineTask(ctx, TaskDefinition{Name: "Bad", Tasks: []string{"Nope"}}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := eng.DefineTask(ctx, TaskDefinition{Name: "Bad", BizRule: "IsSecureConnection ==="}); !errors.Is(err, ErrInvalidBizRule) {
		t.Fatalf("expected ErrInvalidBizRule, got %v", err)
	}

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	ids, err := h.OperationsForTask("Review", "")
	must(t, err)
	must(t, h.Close())
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("unexpected expansion: %v", ids)
	}

	removed, err := eng.DeleteTask(ctx, "Review")
	must(t, err)
	if !removed {
		t.Fatal("expected removal")
	}
	equalNames(t, "tasks created", rec.tasksCreated, []string{"Review"})
	if len(rec.tasksDeleted) != 1 || rec.tasksDeleted[0] != tk.ID {
		t.Fatalf("unexpected delete events: %v", rec.tasksDeleted)
	}
}

func TestDeleteTask_RefusesRoleDefinition(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	_, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)
	if _, err := eng.DeleteTask(ctx, "Reviewer"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestGrantToRole(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	// Role created through the provider: grants go to its definition task.
	_, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)
	must(t, eng.AddUsersToRoles(ctx, []string{"bob"}, []string{"Reviewer"}))
	must(t, eng.GrantToRole(ctx, "Reviewer", nil, []string{"ViewInvoice", "DeleteInvoice"}))

	ops, err := eng.OperationsForUser(ctx, "bob", nil)
	must(t, err)
	equalNames(t, "bob operations", ops, []string{"ViewInvoice", "DeleteInvoice"})

	must(t, eng.RevokeFromRole(ctx, "Reviewer", nil, []string{"DeleteInvoice"}))
	ops, err = eng.OperationsForUser(ctx, "bob", nil)
	must(t, err)
	equalNames(t, "bob operations after revoke", ops, []string{"ViewInvoice"})

	// Plain role: grants are stored on the role.
	must(t, eng.GrantToRole(ctx, "Auditor", []string{"Approve"}, nil))
	r, err := f.store.GetRole(ctx, f.roles["Auditor"].ID)
	must(t, err)
	equalNames(t, "auditor tasks", r.Tasks, []string{"Audit", "Approve"})

	if err := eng.GrantToRole(ctx, "Missing", nil, []string{"ViewInvoice"}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := eng.GrantToRole(ctx, "Auditor", nil, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestScopeAdministration(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	_, err := eng.CreateScope(ctx, "APAC", "asia pacific")
	must(t, err)
	if _, err := eng.CreateScope(ctx, "APAC", ""); !errors.Is(err, ErrScopeExists) {
		t.Fatalf("expected ErrScopeExists, got %v", err)
	}
	scopes, err := eng.Scopes(ctx)
	must(t, err)
	if len(scopes) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(scopes))
	}

	removed, err := eng.DeleteScope(ctx, "EMEA")
	must(t, err)
	if !removed {
		t.Fatal("expected EMEA removal")
	}
	if _, err := f.store.GetRole(ctx, f.roles["Regional"].ID); err == nil {
		t.Fatal("scope role should be deleted with its scope")
	}
	removed, err = eng.DeleteScope(ctx, "EMEA")
	must(t, err)
	if removed {
		t.Fatal("second removal should report false")
	}
}
