package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func newApp(t *testing.T, s *Store, name string) *application.Application {
	t.Helper()
	a := &application.Application{ID: id.NewApplicationID(), Name: name, CreatedAt: time.Now()}
	if err := s.CreateApplication(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestApplicationCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := newApp(t, s, "Billing")

	got, err := s.GetApplicationByName(ctx, "Billing")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != a.ID {
		t.Fatal("name lookup mismatch")
	}

	dup := &application.Application{ID: id.NewApplicationID(), Name: "Billing"}
	if err := s.CreateApplication(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	a.Description = "invoices"
	if err := s.UpdateApplication(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetApplication(ctx, a.ID)
	if got.Description != "invoices" {
		t.Fatal("update failed")
	}

	sc := &application.Scope{ID: id.NewScopeID(), AppID: a.ID, Name: "EMEA"}
	if err := s.CreateScope(ctx, sc); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetScopeByName(ctx, a.ID, "EMEA"); err != nil {
		t.Fatal(err)
	}
	scopes, _ := s.ListScopes(ctx, a.ID)
	if len(scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(scopes))
	}

	if err := s.DeleteApplication(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetApplication(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOperationsOrderedByOperationID(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newApp(t, s, "Billing")

	for _, o := range []struct {
		name string
		num  int
	}{{"ViewInvoice", 2}, {"ApproveInvoice", 1}, {"DeleteInvoice", 3}} {
		if err := s.CreateOperation(ctx, &operation.Operation{
			ID: id.NewOperationID(), AppID: a.ID, Name: o.name, OperationID: o.num,
		}); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListOperations(ctx, &operation.ListFilter{AppID: a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Name != "ApproveInvoice" || list[2].Name != "DeleteInvoice" {
		t.Fatalf("unexpected order: %v", list)
	}

	err = s.CreateOperation(ctx, &operation.Operation{ID: id.NewOperationID(), AppID: a.ID, Name: "Other", OperationID: 2})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate operation id error, got %v", err)
	}

	count, _ := s.CountOperations(ctx, &operation.ListFilter{AppID: a.ID, Limit: 1})
	if count != 3 {
		t.Fatalf("expected count 3 ignoring limit, got %d", count)
	}

	paged, _ := s.ListOperations(ctx, &operation.ListFilter{AppID: a.ID, Limit: 1, Offset: 1})
	if len(paged) != 1 || paged[0].Name != "ViewInvoice" {
		t.Fatalf("unexpected page: %v", paged)
	}
}

func TestTaskScopeFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newApp(t, s, "Billing")
	now := time.Now()

	appLevel := &task.Task{ID: id.NewTaskID(), AppID: a.ID, Name: "Approve", Operations: []string{"ApproveInvoice"}, CreatedAt: now}
	scoped := &task.Task{ID: id.NewTaskID(), AppID: a.ID, Scope: "EMEA", Name: "Approve", CreatedAt: now.Add(time.Second)}
	roleDef := &task.Task{ID: id.NewTaskID(), AppID: a.ID, Name: "Approver", IsRoleDefinition: true, CreatedAt: now.Add(2 * time.Second)}
	for _, tk := range []*task.Task{appLevel, scoped, roleDef} {
		if err := s.CreateTask(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}

	empty := ""
	list, _ := s.ListTasks(ctx, &task.ListFilter{AppID: a.ID, Scope: &empty})
	if len(list) != 2 {
		t.Fatalf("expected 2 application-level tasks, got %d", len(list))
	}

	isDef := true
	defs, _ := s.ListTasks(ctx, &task.ListFilter{AppID: a.ID, IsRoleDefinition: &isDef})
	if len(defs) != 1 || defs[0].Name != "Approver" {
		t.Fatalf("unexpected role definitions: %v", defs)
	}

	got, err := s.GetTaskByName(ctx, a.ID, "EMEA", "Approve")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != scoped.ID {
		t.Fatal("expected scoped task")
	}

	// Returned values are copies.
	got, _ = s.GetTask(ctx, appLevel.ID)
	got.Operations[0] = "mutated"
	again, _ := s.GetTask(ctx, appLevel.ID)
	if again.Operations[0] != "ApproveInvoice" {
		t.Fatal("store returned shared slice")
	}
}

func TestRoleMembership(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newApp(t, s, "Billing")

	r := &role.Role{ID: id.NewRoleID(), AppID: a.ID, Name: "Approver", Tasks: []string{"Approve"}}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	for _, sid := range []string{"S-1-5-21-1", "S-1-5-21-2", "S-1-5-21-1"} {
		if err := s.CreateAssignment(ctx, &assignment.Assignment{
			ID: id.NewAssignmentID(), AppID: a.ID, RoleID: r.ID, SID: sid,
		}); err != nil {
			t.Fatal(err)
		}
	}

	members, _ := s.ListRoleMembers(ctx, r.ID)
	if len(members) != 2 {
		t.Fatalf("expected 2 members after duplicate add, got %d", len(members))
	}

	roles, _ := s.ListRolesForSIDs(ctx, a.ID, []string{"S-1-5-21-2", "S-1-5-32-544"})
	if len(roles) != 1 || roles[0] != r.ID {
		t.Fatalf("unexpected roles: %v", roles)
	}

	removed, _ := s.DeleteMember(ctx, r.ID, "S-1-5-21-2")
	if !removed {
		t.Fatal("expected member removal")
	}
	removed, _ = s.DeleteMember(ctx, r.ID, "S-1-5-21-2")
	if removed {
		t.Fatal("second removal should report false")
	}

	if err := s.DeleteAssignmentsByRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	count, _ := s.CountAssignments(ctx, &assignment.ListFilter{AppID: a.ID})
	if count != 0 {
		t.Fatalf("expected no assignments, got %d", count)
	}

	if err := s.DeleteRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRoleByName(ctx, a.ID, "", "Approver"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckLogQueryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := New()
	appID := id.NewApplicationID()
	old := time.Now().Add(-48 * time.Hour)

	entries := []*checklog.Entry{
		{ID: id.NewCheckLogID(), AppID: appID, AuditID: "GetTasksForUser:alice", UserName: "alice", Allowed: true, CreatedAt: old},
		{ID: id.NewCheckLogID(), AppID: appID, AuditID: "GetTasksForUser:alice", UserName: "alice", CreatedAt: time.Now()},
		{ID: id.NewCheckLogID(), AppID: appID, AuditID: "GetOperationsForUser:bob", UserName: "bob", Allowed: true, CreatedAt: time.Now()},
	}
	for _, e := range entries {
		if err := s.CreateCheckLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	alice, _ := s.ListCheckLogs(ctx, &checklog.QueryFilter{UserName: "alice"})
	if len(alice) != 2 {
		t.Fatalf("expected 2 entries for alice, got %d", len(alice))
	}
	if alice[0].CreatedAt.Before(alice[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	allowed := true
	n, _ := s.CountCheckLogs(ctx, &checklog.QueryFilter{Allowed: &allowed})
	if n != 2 {
		t.Fatalf("expected 2 allowed entries, got %d", n)
	}

	purged, _ := s.PurgeCheckLogs(ctx, time.Now().Add(-24*time.Hour))
	if purged != 1 {
		t.Fatalf("expected 1 purged entry, got %d", purged)
	}
}
