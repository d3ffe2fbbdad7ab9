package azguard

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckParameter(t *testing.T) {
	got, err := checkParameter("  Approver ", true, true, 0, "roleName")
	if err != nil || got != "Approver" {
		t.Fatalf("got %q, %v", got, err)
	}

	bad := []struct {
		value  string
		empty  bool
		commas bool
		max    int
	}{
		{"", true, false, 0},
		{"   ", true, false, 0},
		{"a,b", false, true, 0},
		{strings.Repeat("é", 5), false, false, 4},
	}
	for _, b := range bad {
		if _, err := checkParameter(b.value, b.empty, b.commas, b.max, "x"); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("checkParameter(%q): expected ErrInvalidParameter, got %v", b.value, err)
		}
	}

	// Length counts characters, not bytes.
	if _, err := checkParameter(strings.Repeat("é", 4), false, false, 4, "x"); err != nil {
		t.Fatal(err)
	}
	if got, err := checkParameter("", false, false, 0, "x"); err != nil || got != "" {
		t.Fatalf("empty value allowed when not checked: %q, %v", got, err)
	}
}

func TestCheckArrayParameter(t *testing.T) {
	got, err := checkArrayParameter([]string{" bob", "carol "}, true, true, 0, "userNames")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != "bob" || got[1] != "carol" {
		t.Fatalf("unexpected trimmed values %v", got)
	}

	for _, values := range [][]string{
		nil,
		{},
		{"bob", ""},
		{"bob", " bob"},
		{"bob,carol"},
	} {
		if _, err := checkArrayParameter(values, true, true, 0, "userNames"); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("checkArrayParameter(%q): expected ErrInvalidParameter, got %v", values, err)
		}
	}
}

func TestCheckParamVectors(t *testing.T) {
	if err := checkParamVectors(nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := checkParamVectors([]string{"a", "b"}, []any{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := checkParamVectors([]string{"a", "a"}, []any{1, 2}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("duplicate names: got %v", err)
	}
	if err := checkParamVectors([]string{"b", "a"}, []any{1, 2}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unsorted names: got %v", err)
	}
}
