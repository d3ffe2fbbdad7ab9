package cache

import (
	"context"
	"testing"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/xraph/azguard"
)

func compile(t *testing.T, rule string) *vm.Program {
	t.Helper()
	p, err := expr.Compile(rule)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMemoryCacheHitMiss(t *testing.T) {
	c := NewMemory(WithTTL(time.Minute))

	if _, ok := c.Get("IsPrivateIp"); ok {
		t.Fatal("expected cache miss")
	}

	p := compile(t, "IsPrivateIp")
	c.Set("IsPrivateIp", p)
	got, ok := c.Get("IsPrivateIp")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != p {
		t.Fatal("expected the cached program")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.Set("IsSecureConnection", compile(t, "IsSecureConnection"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("IsSecureConnection"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	c := NewMemory(WithMaxSize(2))

	c.Set("a", compile(t, "true"))
	c.Set("b", compile(t, "false"))
	c.Set("c", compile(t, "1 == 1"))

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("newest entry should be kept")
	}
}

func TestMemoryCachePurge(t *testing.T) {
	c := NewMemory()
	c.Set("a", compile(t, "true"))
	c.Purge()
	if c.Len() != 0 {
		t.Fatal("expected empty cache after purge")
	}
}

func TestEvaluatorUsesCache(t *testing.T) {
	c := NewMemory()
	ev := azguard.DefaultRuleEvaluator(c)

	ok, err := ev.Evaluate(context.Background(), "IsPrivateIp && !IsLocalIp", map[string]any{
		"IsPrivateIp": true,
		"IsLocalIp":   false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected rule to pass")
	}
	if _, hit := c.Get("IsPrivateIp && !IsLocalIp"); !hit {
		t.Fatal("expected compiled program to be cached")
	}
}
