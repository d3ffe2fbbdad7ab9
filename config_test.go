package azguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveStoreLocation(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	slash := func(s string) string { return strings.ReplaceAll(s, `\`, "/") }

	tests := []struct {
		in   string
		want string
	}{
		{"postgres://db/policy", "postgres://db/policy"},
		{"{currentPath}/policy.db", slash(wd) + "/policy.db"},
		{"{baseDirectory}/policy.db", slash(filepath.Dir(exe)) + "/policy.db"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := ResolveStoreLocation(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("ResolveStoreLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NameComparison != NameCompareExact {
		t.Fatalf("expected exact comparison, got %q", cfg.NameComparison)
	}
	if cfg.RuleCacheSize <= 0 || cfg.RuleCacheTTL <= 0 {
		t.Fatal("expected rule cache defaults")
	}
	if err := cfg.validate(); err == nil {
		t.Fatal("default config has no application name")
	}
	cfg.ApplicationName = "Billing"
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
}
