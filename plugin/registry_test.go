package plugin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/role"
)

// testPlugin implements Plugin + RoleCreated + AfterCheck + MembersAdded.
type testPlugin struct {
	roleCreatedCalled bool
	afterCheckCalled  bool
	added             int
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	t.roleCreatedCalled = true
	return nil
}

func (t *testPlugin) OnAfterCheck(_ context.Context, _, _ any) error {
	t.afterCheckCalled = true
	return nil
}

func (t *testPlugin) OnMembersAdded(_ context.Context, _ *role.Role, added []*assignment.Assignment) error {
	t.added += len(added)
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns an error from OnShutdown.
type failingPlugin struct{}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnShutdown(context.Context) error { return errors.New("boom") }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	r := &role.Role{ID: id.NewRoleID(), Name: "Approver"}
	reg.EmitRoleCreated(ctx, r)
	if !tp.roleCreatedCalled {
		t.Fatal("OnRoleCreated was not called")
	}

	reg.EmitAfterCheck(ctx, nil, nil)
	if !tp.afterCheckCalled {
		t.Fatal("OnAfterCheck was not called")
	}

	reg.EmitMembersAdded(ctx, r, []*assignment.Assignment{{SID: "S-1-5-21-1"}, {SID: "S-1-5-21-2"}})
	if tp.added != 2 {
		t.Fatalf("expected 2 added members, got %d", tp.added)
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeCheck(ctx, nil)
	reg.EmitRoleDeleted(ctx, r)
	reg.EmitMembersRemoved(ctx, r, []string{"S-1-5-21-1"})
	reg.EmitOperationDeleted(ctx, id.NewOperationID())
	reg.EmitShutdown(ctx)
}

func TestRegistryLogsHookErrors(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	reg.Register(&failingPlugin{})

	reg.EmitShutdown(context.Background())

	out := buf.String()
	if !strings.Contains(out, "plugin hook error") || !strings.Contains(out, "plugin=failing") {
		t.Fatalf("expected hook error log, got %q", out)
	}
}
