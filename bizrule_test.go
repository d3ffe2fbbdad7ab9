package azguard

import (
	"context"
	"errors"
	"testing"
)

func TestExprEvaluator(t *testing.T) {
	ev := DefaultRuleEvaluator(nil)
	ctx := context.Background()

	tests := []struct {
		rule   string
		params map[string]any
		want   bool
	}{
		{"IsPrivateIp", map[string]any{"IsPrivateIp": true}, true},
		{"IsPrivateIp && IsSecureConnection", map[string]any{"IsPrivateIp": true, "IsSecureConnection": false}, false},
		{`Ip startsWith "10."`, map[string]any{"Ip": "10.2.3.4"}, true},
		{"IsLocalIp == true", nil, false},
		{`"yes"`, nil, false},
		{"1 + 1", nil, false},
	}
	for _, tt := range tests {
		got, err := ev.Evaluate(ctx, tt.rule, tt.params)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tt.rule, err)
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.rule, got, tt.want)
		}
	}
}

func TestCompileRule(t *testing.T) {
	if err := CompileRule("IsPrivateIp || IsLocalIp"); err != nil {
		t.Fatal(err)
	}
	if err := CompileRule("IsPrivateIp ||"); !errors.Is(err, ErrInvalidBizRule) {
		t.Fatalf("expected ErrInvalidBizRule, got %v", err)
	}
}
