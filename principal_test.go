package azguard

import (
	"context"
	"testing"
)

func TestPrincipal_FromEngine(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	p, err := eng.Principal(context.Background(), "alice", nil)
	must(t, err)
	if p.Name() != "alice" || !p.IsAuthenticated() {
		t.Fatalf("unexpected principal %q authenticated=%v", p.Name(), p.IsAuthenticated())
	}
	if !p.IsInRole("Approver") || p.IsInRole("Admins") {
		t.Fatalf("unexpected roles %v", p.Roles())
	}
	if !p.Can("ApproveInvoice") || !p.Can("Approve") || p.Can("DeleteInvoice") {
		t.Fatal("unexpected Can results")
	}

	anon, err := eng.Principal(context.Background(), " ", nil)
	must(t, err)
	if anon.IsAuthenticated() || len(anon.Operations()) != 0 {
		t.Fatal("empty user should yield an unauthenticated principal without grants")
	}
}

func TestPrincipal_WithParams(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	p, err := eng.Principal(context.Background(), "dave", &Params{IsPrivateIP: true})
	must(t, err)
	if !p.HasRequiredOperation("ViewInvoice") || !p.HasRequiredTask("Audit") {
		t.Fatalf("rule should pass: ops=%v tasks=%v", p.Operations(), p.Tasks())
	}
}

func TestPrincipal_SetSemantics(t *testing.T) {
	p := NewPrincipal("alice", true,
		[]string{"Approver"},
		[]string{"ApproveInvoice", "ViewInvoice"},
		[]string{"Approve"},
		false,
	)

	if !p.HasRequiredOperations() || !p.HasRequiredTasks() {
		t.Fatal("empty requirement must be met")
	}
	if !p.HasRequiredOperations("ApproveInvoice", "ViewInvoice") {
		t.Fatal("all operations are granted")
	}
	if p.HasRequiredOperations("ApproveInvoice", "DeleteInvoice") {
		t.Fatal("DeleteInvoice is not granted")
	}
	if p.HasRequiredTasks("Approve", "Audit") {
		t.Fatal("Audit is not granted")
	}
	if p.IsInRole("approver") {
		t.Fatal("exact comparison must be case sensitive")
	}

	none := NewPrincipal("bob", true, nil, nil, nil, false)
	if none.HasRequiredOperations("ViewInvoice") || none.HasRequiredTasks("Approve") {
		t.Fatal("a non-empty requirement against no grants must fail")
	}
	if !none.HasRequiredOperations() {
		t.Fatal("empty requirement must be met without grants")
	}
}

func TestPrincipal_Fold(t *testing.T) {
	p := NewPrincipal("alice", true, []string{"Straße"}, []string{"ViewInvoice"}, nil, true)
	if !p.IsInRole("STRASSE") {
		t.Fatal("full case folding should match ß and SS")
	}
	if !p.Can("viewinvoice") {
		t.Fatal("folded Can should match")
	}
}

func TestPrincipal_ReturnsCopies(t *testing.T) {
	roles := []string{"Approver"}
	p := NewPrincipal("alice", true, roles, []string{"ViewInvoice"}, nil, false)
	roles[0] = "Admins"
	got := p.Roles()
	got[0] = "Mutated"
	if !p.IsInRole("Approver") || p.IsInRole("Mutated") || p.IsInRole("Admins") {
		t.Fatalf("principal state leaked: %v", p.Roles())
	}
}
