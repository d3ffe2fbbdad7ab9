package azguard

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/store/memory"
	"github.com/xraph/azguard/task"
)

const (
	sidAlice   = "S-1-5-21-1000-1"
	sidBob     = "S-1-5-21-1000-2"
	sidCarol   = "S-1-5-21-1000-3"
	sidDave    = "S-1-5-21-1000-4"
	sidFinance = "S-1-5-21-1000-100"
)

// fixture seeds the Billing application:
//
//	operations  ApproveInvoice(1) ViewInvoice(2) DeleteInvoice(3)
//	tasks       Approve{ApproveInvoice, ViewInvoice}
//	            Audit{ViewInvoice} if IsPrivateIp
//	            Empty{}
//	            Admin{DeleteInvoice, Approve}
//	roles       Approver{Approve}  <- finance group (alice)
//	            Auditor{Audit}     <- dave
//	            Admins{Admin}      <- carol
//	            EMEA/Regional{Approve} <- bob
type fixture struct {
	store *memory.Store
	dir   *directory.Memory
	app   *application.Application
	roles map[string]*role.Role
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store: memory.New(),
		roles: make(map[string]*role.Role),
		clock: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.app = &application.Application{ID: id.NewApplicationID(), Name: "Billing", CreatedAt: f.clock}
	must(t, f.store.CreateApplication(ctx, f.app))
	must(t, f.store.CreateScope(ctx, &application.Scope{ID: id.NewScopeID(), AppID: f.app.ID, Name: "EMEA"}))

	for i, name := range []string{"ApproveInvoice", "ViewInvoice", "DeleteInvoice"} {
		must(t, f.store.CreateOperation(ctx, &operation.Operation{
			ID: id.NewOperationID(), AppID: f.app.ID, Name: name, OperationID: i + 1,
		}))
	}

	f.task(t, &task.Task{Name: "Approve", Operations: []string{"ApproveInvoice", "ViewInvoice"}})
	f.task(t, &task.Task{Name: "Audit", Operations: []string{"ViewInvoice"}, BizRule: "IsPrivateIp == true"})
	f.task(t, &task.Task{Name: "Empty"})
	f.task(t, &task.Task{Name: "Admin", Operations: []string{"DeleteInvoice"}, Tasks: []string{"Approve"}})

	f.role(t, &role.Role{Name: "Approver", Tasks: []string{"Approve"}}, sidFinance)
	f.role(t, &role.Role{Name: "Auditor", Tasks: []string{"Audit"}}, sidDave)
	f.role(t, &role.Role{Name: "Admins", Tasks: []string{"Admin"}}, sidCarol)
	f.role(t, &role.Role{Name: "Regional", Scope: "EMEA", Tasks: []string{"Approve"}}, sidBob)

	f.dir = directory.NewMemory(
		&directory.Entry{Name: "alice", SID: sidAlice, GroupSIDs: []string{sidFinance}},
		&directory.Entry{Name: "bob", SID: sidBob},
		&directory.Entry{Name: "carol", SID: sidCarol},
		&directory.Entry{Name: "dave", SID: sidDave},
	)
	return f
}

func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) task(t *testing.T, tk *task.Task) {
	t.Helper()
	tk.ID = id.NewTaskID()
	tk.AppID = f.app.ID
	tk.CreatedAt = f.tick()
	must(t, f.store.CreateTask(context.Background(), tk))
}

func (f *fixture) role(t *testing.T, r *role.Role, sids ...string) {
	t.Helper()
	ctx := context.Background()
	r.ID = id.NewRoleID()
	r.AppID = f.app.ID
	r.CreatedAt = f.tick()
	must(t, f.store.CreateRole(ctx, r))
	for _, sid := range sids {
		must(t, f.store.CreateAssignment(ctx, &assignment.Assignment{
			ID: id.NewAssignmentID(), AppID: f.app.ID, RoleID: r.ID, SID: sid,
		}))
	}
	f.roles[r.Name] = r
}

func (f *fixture) engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithStore(f.store),
		WithDirectory(f.dir),
		WithConfig(Config{ApplicationName: "Billing"}),
	}
	eng, err := NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func equalNames(t *testing.T, what string, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("%s: got %v, want %v", what, got, want)
	}
}

func TestNewEngine_Requirements(t *testing.T) {
	dir := directory.NewMemory()
	if _, err := NewEngine(WithDirectory(dir), WithConfig(Config{ApplicationName: "a"})); err == nil {
		t.Fatal("expected error when store is nil")
	}
	if _, err := NewEngine(WithStore(memory.New()), WithConfig(Config{ApplicationName: "a"})); err == nil {
		t.Fatal("expected error when directory is nil")
	}
	if _, err := NewEngine(WithStore(memory.New()), WithDirectory(dir)); err == nil {
		t.Fatal("expected error when application name is empty")
	}
	if _, err := NewEngine(WithStore(memory.New()), WithDirectory(dir),
		WithConfig(Config{ApplicationName: "a", NameComparison: "upper"})); err == nil {
		t.Fatal("expected error for unknown name comparison")
	}
}

func TestRolesForUser_GroupMembership(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	roles, err := eng.RolesForUser(ctx, "alice")
	must(t, err)
	equalNames(t, "alice roles", roles, []string{"Approver"})

	roles, err = eng.RolesForUser(ctx, "bob")
	must(t, err)
	equalNames(t, "bob roles", roles, []string{})
}

func TestOperationsForUser(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	ops, err := eng.OperationsForUser(ctx, "alice", nil)
	must(t, err)
	equalNames(t, "alice operations", ops, []string{"ApproveInvoice", "ViewInvoice"})

	ops, err = eng.OperationsForUser(ctx, "carol", nil)
	must(t, err)
	equalNames(t, "carol operations", ops, []string{"ApproveInvoice", "ViewInvoice", "DeleteInvoice"})

	ops, err = eng.OperationsForUser(ctx, "bob", nil)
	must(t, err)
	equalNames(t, "bob operations", ops, []string{})
}

func TestTasksForUser_SkipsEmptyTasks(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	tasks, err := eng.TasksForUser(ctx, "alice", nil)
	must(t, err)
	// Audit only needs ViewInvoice, which alice holds through Approve.
	equalNames(t, "alice tasks", tasks, []string{"Approve", "Audit"})

	tasks, err = eng.TasksForUser(ctx, "carol", nil)
	must(t, err)
	equalNames(t, "carol tasks", tasks, []string{"Approve", "Audit", "Admin"})
	if slices.Contains(tasks, "Empty") {
		t.Fatal("task without operations must never be listed")
	}
}

func TestEmptyUserName(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		ops, err := eng.OperationsForUser(ctx, name, nil)
		must(t, err)
		if len(ops) != 0 {
			t.Fatalf("expected no operations for %q", name)
		}
		ok, err := eng.Authorize(ctx, name, "Approve")
		must(t, err)
		if ok {
			t.Fatal("empty user must not be authorized")
		}
		ok, err = eng.IsUserInRole(ctx, name, "Approver")
		must(t, err)
		if ok {
			t.Fatal("empty user must not be in a role")
		}
	}
}

func TestUnknownUser(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	_, err := eng.OperationsForUser(ctx, "mallory", nil)
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}
	if _, err := eng.Authorize(ctx, "mallory", "Approve"); !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	tests := []struct {
		user    string
		context string
		want    bool
		err     error
	}{
		{"alice", "Approve", true, nil},
		{"alice", "O:ApproveInvoice", true, nil},
		{"alice", "O:DeleteInvoice", false, nil},
		{"alice", "Admin", false, nil},
		{"alice", "Empty", false, nil},
		{"carol", "Admin", true, nil},
		{"alice", "Missing", false, ErrTaskNotFound},
		{"alice", "O:Missing", false, ErrOperationNotFound},
		{"alice", "  ", false, ErrInvalidParameter},
	}
	for _, tt := range tests {
		got, err := eng.Authorize(ctx, tt.user, tt.context)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Fatalf("Authorize(%q, %q): expected %v, got %v", tt.user, tt.context, tt.err, err)
			}
			continue
		}
		must(t, err)
		if got != tt.want {
			t.Fatalf("Authorize(%q, %q) = %v, want %v", tt.user, tt.context, got, tt.want)
		}
	}
}

func TestCanUserAccess(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	ok, err := eng.CanUserAccessOperation(ctx, "alice", "ViewInvoice")
	must(t, err)
	if !ok {
		t.Fatal("alice should view invoices")
	}
	ok, err = eng.CanUserAccessOperation(ctx, "alice", "approveinvoice")
	must(t, err)
	if ok {
		t.Fatal("exact comparison must be case sensitive")
	}
	ok, err = eng.CanUserAccessTask(ctx, "carol", "Admin")
	must(t, err)
	if !ok {
		t.Fatal("carol should hold Admin")
	}

	long := strings.Repeat("x", maxNameLength+1)
	if _, err := eng.CanUserAccessOperation(ctx, "alice", long); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for long name, got %v", err)
	}
	if _, err := eng.CanUserAccessTask(ctx, "alice", ""); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for empty name, got %v", err)
	}
}

func TestNameCompareFold(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t, WithConfig(Config{ApplicationName: "Billing", NameComparison: NameCompareFold}))
	ctx := context.Background()

	ok, err := eng.CanUserAccessOperation(ctx, "alice", "APPROVEINVOICE")
	must(t, err)
	if !ok {
		t.Fatal("folded comparison should match")
	}
	ok, err = eng.Authorize(ctx, "alice", "O:approveInvoice")
	must(t, err)
	if !ok {
		t.Fatal("folded operation lookup should match")
	}
}

func TestBusinessRuleParams(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	ops, err := eng.OperationsForUser(ctx, "dave", nil)
	must(t, err)
	equalNames(t, "dave without params", ops, []string{})

	ops, err = eng.OperationsForUser(ctx, "dave", &Params{IP: "10.0.0.7", IsPrivateIP: true})
	must(t, err)
	equalNames(t, "dave on private network", ops, []string{"ViewInvoice"})

	ctx = WithParams(ctx, Params{IP: "203.0.113.9"})
	tasks, err := eng.TasksForUser(ctx, "dave", nil)
	must(t, err)
	equalNames(t, "dave on public network", tasks, []string{})

	ok, err := eng.Authorize(WithParams(context.Background(), Params{IsPrivateIP: true}), "dave", "Audit")
	must(t, err)
	if !ok {
		t.Fatal("rule should pass with private address")
	}
}

func TestBusinessRuleError(t *testing.T) {
	f := newFixture(t)
	f.task(t, &task.Task{Name: "Broken", Operations: []string{"DeleteInvoice"}, BizRule: "Ip +"})
	f.role(t, &role.Role{Name: "Breakers", Tasks: []string{"Broken"}}, sidBob)
	eng := f.engine(t)

	_, err := eng.OperationsForUser(context.Background(), "bob", nil)
	if !errors.Is(err, ErrInvalidBizRule) {
		t.Fatalf("expected ErrInvalidBizRule, got %v", err)
	}
}

func TestNestedTaskCycle(t *testing.T) {
	f := newFixture(t)
	f.task(t, &task.Task{Name: "Ping", Tasks: []string{"Pong"}})
	f.task(t, &task.Task{Name: "Pong", Operations: []string{"ViewInvoice"}, Tasks: []string{"Ping"}})
	f.role(t, &role.Role{Name: "Players", Tasks: []string{"Ping"}}, sidBob)
	eng := f.engine(t)
	ctx := context.Background()

	ops, err := eng.OperationsForUser(ctx, "bob", nil)
	must(t, err)
	equalNames(t, "bob operations", ops, []string{"ViewInvoice"})

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	defer h.Close()
	ids, err := h.OperationsForTask("Ping", "")
	must(t, err)
	if !slices.Equal(ids, []int{2}) {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestScopes(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	ok, err := eng.Authorize(context.Background(), "bob", "Approve")
	must(t, err)
	if ok {
		t.Fatal("scope role must not grant at application level")
	}

	emea := WithScope(context.Background(), "EMEA")
	ok, err = eng.Authorize(emea, "bob", "Approve")
	must(t, err)
	if !ok {
		t.Fatal("scope role should grant inside its scope")
	}
	roles, err := eng.RolesForUser(emea, "alice")
	must(t, err)
	equalNames(t, "alice roles in EMEA", roles, []string{"Approver"})

	_, err = eng.RolesForUser(WithScope(context.Background(), "APAC"), "alice")
	if !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestOpenHandle_UnknownApplication(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t, WithConfig(Config{ApplicationName: "Payroll"}))

	_, err := eng.OpenHandle(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

type closingStore struct {
	store.Store
	closed int
}

func (s *closingStore) Close() error {
	s.closed++
	return nil
}

func TestStoreOpener(t *testing.T) {
	f := newFixture(t)
	var (
		locations []string
		opened    []*closingStore
	)
	opener := func(_ context.Context, location string, creds *Credentials) (store.Store, error) {
		if creds == nil || creds.Username != "svc" {
			return nil, errors.New("missing credentials")
		}
		locations = append(locations, location)
		s := &closingStore{Store: f.store}
		opened = append(opened, s)
		return s, nil
	}
	eng, err := NewEngine(
		WithStoreOpener(opener),
		WithDirectory(f.dir),
		WithConfig(Config{
			ApplicationName: "Billing",
			StoreLocation:   "sqlite://{currentPath}/policy.db",
			Credentials:     &Credentials{Username: "svc", Password: "secret"},
		}),
	)
	must(t, err)

	ok, err := eng.Authorize(context.Background(), "alice", "Approve")
	must(t, err)
	if !ok {
		t.Fatal("expected alice to be authorized")
	}

	wd, err := os.Getwd()
	must(t, err)
	want := "sqlite://" + strings.ReplaceAll(wd, `\`, "/") + "/policy.db"
	if len(locations) != 1 || locations[0] != want {
		t.Fatalf("unexpected locations %v, want %q", locations, want)
	}
	if opened[0].closed != 1 {
		t.Fatalf("expected handle store closed once, got %d", opened[0].closed)
	}

	failing, err := NewEngine(
		WithStoreOpener(func(context.Context, string, *Credentials) (store.Store, error) {
			return nil, &store.Error{Code: "28P01", Message: "password authentication failed"}
		}),
		WithDirectory(f.dir),
		WithConfig(Config{ApplicationName: "Billing"}),
	)
	must(t, err)
	_, err = failing.OperationsForUser(context.Background(), "alice", nil)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Code != "28P01" {
		t.Fatalf("expected backend code 28P01, got %v", err)
	}
}

func TestHandleClose(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	cc, err := h.NewClientContext(&Identity{Name: "alice", SID: sidAlice}, "")
	must(t, err)
	must(t, h.Close())
	must(t, h.Close())

	if err := h.UpdateCache(ctx); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("expected ErrHandleClosed, got %v", err)
	}
	if _, err := cc.AccessCheck(ctx, "x", nil, []int{1}, nil, nil); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("expected ErrHandleClosed, got %v", err)
	}
	if _, err := h.NewClientContext(&Identity{Name: "alice", SID: sidAlice}, ""); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("expected ErrHandleClosed, got %v", err)
	}
}

func TestAccessCheck(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	defer h.Close()
	cc, err := h.NewClientContext(&Identity{Name: "alice", SID: sidAlice, GroupSIDs: []string{sidFinance}}, "")
	must(t, err)

	results, err := cc.AccessCheck(ctx, "audit", nil, []int{3, 1, 2}, nil, nil)
	must(t, err)
	if !slices.Equal(results, []int{DecisionAccessDenied, DecisionAllow, DecisionAllow}) {
		t.Fatalf("unexpected results %v", results)
	}

	if _, err := cc.AccessCheck(ctx, "audit", nil, []int{1, 99}, nil, nil); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	_, err = cc.AccessCheck(ctx, "audit", nil, []int{1}, []string{"b", "a"}, []any{1, 2})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for unsorted names, got %v", err)
	}
	_, err = cc.AccessCheck(ctx, "audit", nil, []int{1}, []string{"a"}, nil)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for misaligned values, got %v", err)
	}

	empty, err := cc.AccessCheck(ctx, "audit", nil, nil, nil, nil)
	must(t, err)
	if len(empty) != 0 {
		t.Fatalf("expected empty vector, got %v", empty)
	}
}

func TestAccessCheck_NarrowsToScope(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	defer h.Close()
	bob := &Identity{Name: "bob", SID: sidBob}

	cc, err := h.NewClientContext(bob, "")
	must(t, err)
	results, err := cc.AccessCheck(ctx, "audit", nil, []int{1}, nil, nil)
	must(t, err)
	if !slices.Equal(results, []int{DecisionAccessDenied}) {
		t.Fatalf("application level: unexpected results %v", results)
	}
	results, err = cc.AccessCheck(ctx, "audit", []string{"EMEA"}, []int{1, 3}, nil, nil)
	must(t, err)
	if !slices.Equal(results, []int{DecisionAllow, DecisionAccessDenied}) {
		t.Fatalf("EMEA argument: unexpected results %v", results)
	}
	if _, err := cc.AccessCheck(ctx, "audit", []string{"NoSuchScope"}, []int{1}, nil, nil); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}

	emea, err := h.NewClientContext(bob, "EMEA")
	must(t, err)
	results, err = emea.AccessCheck(ctx, "audit", nil, []int{1}, nil, nil)
	must(t, err)
	if !slices.Equal(results, []int{DecisionAllow}) {
		t.Fatalf("EMEA context: unexpected results %v", results)
	}
	equalNames(t, "bob roles in EMEA", emea.Roles(), []string{"Regional"})

	if _, err := h.NewClientContext(bob, "APAC"); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestAccessCheck_RuleResultsKeyedByType(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()
	names := []string{ParamIsPrivateIP}

	h, err := eng.OpenHandle(ctx)
	must(t, err)
	defer h.Close()
	cc, err := h.NewClientContext(&Identity{Name: "dave", SID: sidDave}, "")
	must(t, err)

	for _, tc := range []struct {
		value any
		want  int
	}{
		{"true", DecisionAccessDenied},
		{true, DecisionAllow},
		{"true", DecisionAccessDenied},
		{nil, DecisionAccessDenied},
		{"<nil>", DecisionAccessDenied},
		{true, DecisionAllow},
	} {
		results, err := cc.AccessCheck(ctx, "audit", nil, []int{2}, names, []any{tc.value})
		must(t, err)
		if !slices.Equal(results, []int{tc.want}) {
			t.Fatalf("IsPrivateIp=%#v: got %v, want [%d]", tc.value, results, tc.want)
		}

		fresh, err := eng.OpenHandle(ctx)
		must(t, err)
		fcc, err := fresh.NewClientContext(&Identity{Name: "dave", SID: sidDave}, "")
		must(t, err)
		again, err := fcc.AccessCheck(ctx, "audit", nil, []int{2}, names, []any{tc.value})
		must(t, err)
		fresh.Close()
		if !slices.Equal(again, results) {
			t.Fatalf("IsPrivateIp=%#v: fresh handle gave %v, cached handle %v", tc.value, again, results)
		}
	}
}

func TestParamFingerprint(t *testing.T) {
	names := []string{"a"}
	pairs := [][2]any{
		{"true", true},
		{nil, "<nil>"},
		{1, int64(1)},
		{"1", 1},
	}
	for _, p := range pairs {
		if paramFingerprint(names, []any{p[0]}) == paramFingerprint(names, []any{p[1]}) {
			t.Fatalf("%#v and %#v share a fingerprint", p[0], p[1])
		}
	}
}

func TestDeterministic(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)
	ctx := context.Background()

	first, err := eng.Principal(ctx, "carol", nil)
	must(t, err)
	for range 5 {
		next, err := eng.Principal(ctx, "carol", nil)
		must(t, err)
		equalNames(t, "operations", next.Operations(), first.Operations())
		equalNames(t, "tasks", next.Tasks(), first.Tasks())
		equalNames(t, "roles", next.Roles(), first.Roles())
	}
}

func TestCheckLog(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t, WithConfig(Config{ApplicationName: "Billing", AuditIdentifierPrefix: "web:"}))
	ctx := context.Background()

	_, err := eng.OperationsForUser(ctx, "alice", nil)
	must(t, err)
	_, err = eng.Authorize(ctx, "alice", "Approve")
	must(t, err)

	entries, err := f.store.ListCheckLogs(ctx, &checklog.QueryFilter{AppID: f.app.ID})
	must(t, err)
	var audits []string
	for _, e := range entries {
		audits = append(audits, e.AuditID)
	}
	slices.Sort(audits)
	equalNames(t, "audit ids", audits, []string{"GetOperationsForUser:alice", "web:alice:Approve"})

	quiet := f.engine(t, WithConfig(Config{ApplicationName: "Billing", DisableCheckLog: true}))
	_, err = quiet.OperationsForUser(ctx, "alice", nil)
	must(t, err)
	n, err := f.store.CountCheckLogs(ctx, &checklog.QueryFilter{AppID: f.app.ID})
	must(t, err)
	if n != 2 {
		t.Fatalf("expected no new entries with check log disabled, got %d", n)
	}
}

type recordingPlugin struct {
	audits  []string
	created []string
	added   int
	removed int
	deleted []string
}

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) OnAfterCheck(_ context.Context, req, _ any) error {
	p.audits = append(p.audits, req.(*AccessCheckRequest).AuditID)
	return nil
}

func (p *recordingPlugin) OnRoleCreated(_ context.Context, r *role.Role) error {
	p.created = append(p.created, r.Name)
	return nil
}

func (p *recordingPlugin) OnRoleDeleted(_ context.Context, r *role.Role) error {
	p.deleted = append(p.deleted, r.Name)
	return nil
}

func (p *recordingPlugin) OnMembersAdded(_ context.Context, _ *role.Role, added []*assignment.Assignment) error {
	p.added += len(added)
	return nil
}

func (p *recordingPlugin) OnMembersRemoved(_ context.Context, _ *role.Role, sids []string) error {
	p.removed += len(sids)
	return nil
}

func TestPluginHooks(t *testing.T) {
	f := newFixture(t)
	rec := &recordingPlugin{}
	eng := f.engine(t, WithPlugin(rec))
	ctx := context.Background()

	_, err := eng.Authorize(ctx, "alice", "O:ViewInvoice")
	must(t, err)
	equalNames(t, "audits", rec.audits, []string{"alice:O:ViewInvoice"})

	_, err = eng.CreateRole(ctx, "Reviewer")
	must(t, err)
	must(t, eng.AddUsersToRoles(ctx, []string{"bob", "carol"}, []string{"Reviewer"}))
	must(t, eng.RemoveUsersFromRoles(ctx, []string{"bob"}, []string{"Reviewer"}))
	_, err = eng.DeleteRole(ctx, "Reviewer", false)
	must(t, err)

	equalNames(t, "created", rec.created, []string{"Reviewer"})
	equalNames(t, "deleted", rec.deleted, []string{"Reviewer"})
	if rec.added != 2 || rec.removed != 1 {
		t.Fatalf("unexpected membership events: added=%d removed=%d", rec.added, rec.removed)
	}
}
