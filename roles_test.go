package azguard

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/azguard/assignment"
)

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	r, err := eng.CreateRole(ctx, "  Reviewer ")
	must(t, err)
	if r.Name != "Reviewer" || len(r.Tasks) != 1 || r.Tasks[0] != "Reviewer" {
		t.Fatalf("unexpected role %+v", r)
	}
	def, err := f.store.GetTaskByName(ctx, f.app.ID, "", "Reviewer")
	must(t, err)
	if !def.IsRoleDefinition {
		t.Fatal("expected role-definition task")
	}

	if _, err := eng.CreateRole(ctx, "Reviewer"); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
	if _, err := eng.CreateRole(ctx, "Approve"); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists for a task name clash, got %v", err)
	}
	if _, err := eng.CreateRole(ctx, "a,b"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	ok, err := eng.RoleExists(ctx, "Reviewer")
	must(t, err)
	if !ok {
		t.Fatal("expected role to exist")
	}
	all, err := eng.AllRoles(ctx)
	must(t, err)
	equalNames(t, "all roles", all, []string{"Approver", "Auditor", "Admins", "Reviewer"})
}

func TestCreateRole_InScope(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t, WithConfig(Config{ApplicationName: "Billing", ScopeName: "EMEA"}))
	ctx := context.Background()

	r, err := eng.CreateRole(ctx, "Clerk")
	must(t, err)
	if r.Scope != "EMEA" {
		t.Fatalf("expected EMEA scope, got %q", r.Scope)
	}
	if _, err := f.store.GetTaskByName(ctx, f.app.ID, "EMEA", "Clerk"); err != nil {
		t.Fatal(err)
	}

	appLevel := f.engine(t)
	ok, err := appLevel.RoleExists(ctx, "Clerk")
	must(t, err)
	if ok {
		t.Fatal("scope role must not be visible at application level")
	}
}

func TestDeleteRole(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	r, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)
	must(t, eng.AddUsersToRoles(ctx, []string{"bob"}, []string{"Reviewer"}))

	if _, err := eng.DeleteRole(ctx, "Reviewer", true); !errors.Is(err, ErrRolePopulated) {
		t.Fatalf("expected ErrRolePopulated, got %v", err)
	}
	ok, err := eng.RoleExists(ctx, "Reviewer")
	must(t, err)
	if !ok {
		t.Fatal("populated role must survive a refused delete")
	}

	deleted, err := eng.DeleteRole(ctx, "Reviewer", false)
	must(t, err)
	if !deleted {
		t.Fatal("expected role deleted")
	}
	if _, err := f.store.GetTaskByName(ctx, f.app.ID, "", "Reviewer"); err == nil {
		t.Fatal("role-definition task should be deleted")
	}
	n, err := f.store.CountAssignments(ctx, &assignment.ListFilter{AppID: f.app.ID, RoleID: &r.ID})
	must(t, err)
	if n != 0 {
		t.Fatalf("expected memberships removed, got %d", n)
	}

	deleted, err = eng.DeleteRole(ctx, "Reviewer", true)
	must(t, err)
	if deleted {
		t.Fatal("deleting a missing role must report false")
	}
}

func TestDeleteRole_KeepsSharedTask(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	deleted, err := eng.DeleteRole(ctx, "Approver", false)
	must(t, err)
	if !deleted {
		t.Fatal("expected role deleted")
	}
	// Approver grants the ordinary task Approve; only role definitions go.
	if _, err := f.store.GetTaskByName(ctx, f.app.ID, "", "Approve"); err != nil {
		t.Fatalf("ordinary task removed: %v", err)
	}
}

func TestMembership(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	_, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)

	must(t, eng.AddUsersToRoles(ctx, []string{"bob", "carol"}, []string{"Reviewer", "Auditor"}))
	must(t, eng.AddUsersToRoles(ctx, []string{"bob"}, []string{"Reviewer"}))

	users, err := eng.UsersInRole(ctx, "Reviewer")
	must(t, err)
	equalNames(t, "reviewers", users, []string{"bob", "carol"})

	in, err := eng.IsUserInRole(ctx, "bob", "Reviewer")
	must(t, err)
	if !in {
		t.Fatal("bob should be a reviewer")
	}
	if _, err := eng.IsUserInRole(ctx, "bob", "Nobody"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if _, err := eng.UsersInRole(ctx, "Nobody"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	must(t, eng.RemoveUsersFromRoles(ctx, []string{"bob", "alice"}, []string{"Reviewer"}))
	users, err = eng.UsersInRole(ctx, "Reviewer")
	must(t, err)
	equalNames(t, "reviewers after removal", users, []string{"carol"})

	// alice holds Approver through her group; removing her SID changes nothing.
	must(t, eng.RemoveUsersFromRoles(ctx, []string{"alice"}, []string{"Approver"}))
	in, err = eng.IsUserInRole(ctx, "alice", "Approver")
	must(t, err)
	if !in {
		t.Fatal("group membership must survive removal of the user SID")
	}
}

func TestMembership_ValidatesBeforeMutation(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	before, err := f.store.CountAssignments(ctx, &assignment.ListFilter{AppID: f.app.ID})
	must(t, err)

	cases := []struct {
		name  string
		users []string
		roles []string
		err   error
	}{
		{"duplicate users", []string{"bob", "bob"}, []string{"Approver"}, ErrInvalidParameter},
		{"empty users", nil, []string{"Approver"}, ErrInvalidParameter},
		{"blank role", []string{"bob"}, []string{" "}, ErrInvalidParameter},
		{"comma in user", []string{"bob,carol"}, []string{"Approver"}, ErrInvalidParameter},
		{"missing role", []string{"bob"}, []string{"Approver", "Nobody"}, ErrRoleNotFound},
		{"unknown user", []string{"bob", "mallory"}, []string{"Approver"}, ErrPrincipalNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := eng.AddUsersToRoles(ctx, tc.users, tc.roles); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}

	after, err := f.store.CountAssignments(ctx, &assignment.ListFilter{AppID: f.app.ID})
	must(t, err)
	if after != before {
		t.Fatalf("store mutated by rejected calls: %d -> %d", before, after)
	}
}

func TestUsersInRole_ResolvesUnnamedMembers(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	users, err := eng.UsersInRole(context.Background(), "Approver")
	must(t, err)
	// The finance group has no directory entry, so it is reported by SID.
	equalNames(t, "approvers", users, []string{sidFinance})

	users, err = eng.UsersInRole(context.Background(), "Admins")
	must(t, err)
	equalNames(t, "admins", users, []string{"carol"})
}

func TestCreateRole_GrantsThroughDefinition(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	_, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)
	must(t, eng.AddUsersToRoles(ctx, []string{"bob"}, []string{"Reviewer"}))

	def, err := f.store.GetTaskByName(ctx, f.app.ID, "", "Reviewer")
	must(t, err)
	def.Operations = []string{"ViewInvoice"}
	must(t, f.store.UpdateTask(ctx, def))

	ops, err := eng.OperationsForUser(ctx, "bob", nil)
	must(t, err)
	equalNames(t, "bob operations", ops, []string{"ViewInvoice"})

	tasks, err := eng.TasksForUser(ctx, "bob", nil)
	must(t, err)
	// Audit only needs ViewInvoice; Approve also needs ApproveInvoice.
	equalNames(t, "bob tasks", tasks, []string{"Audit", "Reviewer"})
}

func TestMembership_SameSIDAddedOnce(t *testing.T) {
	f := newFixture(t)
	rec := &recordingPlugin{}
	eng := f.engine(t, WithPlugin(rec))
	ctx := context.Background()

	_, err := eng.CreateRole(ctx, "Reviewer")
	must(t, err)

	// The directory folds case, so both names resolve to bob's SID.
	must(t, eng.AddUsersToRoles(ctx, []string{"bob", "Bob"}, []string{"Reviewer"}))
	if rec.added != 1 {
		t.Fatalf("expected one membership event, got %d", rec.added)
	}
	users, err := eng.UsersInRole(ctx, "Reviewer")
	must(t, err)
	equalNames(t, "reviewers", users, []string{"bob"})

	must(t, eng.RemoveUsersFromRoles(ctx, []string{"Bob", "bob"}, []string{"Reviewer"}))
	if rec.removed != 1 {
		t.Fatalf("expected one removal event, got %d", rec.removed)
	}
}
