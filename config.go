package azguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store location substitution tokens.
const (
	StoreLocationCurrentPath   = "{currentPath}"
	StoreLocationBaseDirectory = "{baseDirectory}"
)

// NameComparison selects how role, task and operation names are compared.
type NameComparison string

const (
	// NameCompareExact compares names byte for byte.
	NameCompareExact NameComparison = "exact"

	// NameCompareFold compares names with Unicode case folding.
	NameCompareFold NameComparison = "fold"
)

// Credentials are passed to a StoreOpener when the policy store requires
// its own login. Failure to use them is reported by the opener.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// Config holds configuration for the azguard engine.
type Config struct {
	// ApplicationName names the policy application every check runs against.
	// Required.
	ApplicationName string `json:"application_name"`

	// StoreLocation is handed to the StoreOpener after token substitution.
	// It may contain {currentPath} and {baseDirectory}.
	StoreLocation string `json:"store_location,omitempty"`

	// Credentials are handed to the StoreOpener.
	Credentials *Credentials `json:"credentials,omitempty"`

	// ScopeName narrows checks to a named scope. Empty means the
	// application level.
	ScopeName string `json:"scope_name,omitempty"`

	// ScopeFromOrg uses the forge organization ID as the scope name when a
	// forge scope is present on the context.
	ScopeFromOrg bool `json:"scope_from_org,omitempty"`

	// AuditIdentifierPrefix is prepended to the audit identifier of
	// Authorize checks.
	AuditIdentifierPrefix string `json:"audit_identifier_prefix,omitempty"`

	// NameComparison defaults to NameCompareExact.
	NameComparison NameComparison `json:"name_comparison,omitempty"`

	// DisableCheckLog turns off persisting check log entries. Check log
	// writes are best effort: a failed write is logged and never changes a
	// decision.
	DisableCheckLog bool `json:"disable_check_log,omitempty"`

	// RuleCacheTTL and RuleCacheSize size the compiled business rule cache.
	RuleCacheTTL  time.Duration `json:"rule_cache_ttl,omitempty"`
	RuleCacheSize int           `json:"rule_cache_size,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults. ApplicationName
// must still be set.
func DefaultConfig() Config {
	return Config{
		NameComparison: NameCompareExact,
		RuleCacheTTL:   5 * time.Minute,
		RuleCacheSize:  1000,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ApplicationName) == "" {
		return errors.New("azguard: application name is required")
	}
	switch c.NameComparison {
	case "", NameCompareExact, NameCompareFold:
	default:
		return fmt.Errorf("azguard: unknown name comparison %q", c.NameComparison)
	}
	return nil
}

func (c Config) foldNames() bool { return c.NameComparison == NameCompareFold }

// ResolveStoreLocation replaces {currentPath} with the working directory
// and {baseDirectory} with the directory of the running executable.
// Substituted directories use forward slashes.
func ResolveStoreLocation(location string) (string, error) {
	if strings.Contains(location, StoreLocationCurrentPath) {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("azguard: resolve %s: %w", StoreLocationCurrentPath, err)
		}
		location = strings.ReplaceAll(location, StoreLocationCurrentPath, slashPath(dir))
	}
	if strings.Contains(location, StoreLocationBaseDirectory) {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("azguard: resolve %s: %w", StoreLocationBaseDirectory, err)
		}
		location = strings.ReplaceAll(location, StoreLocationBaseDirectory, slashPath(filepath.Dir(exe)))
	}
	return location, nil
}

func slashPath(dir string) string {
	return strings.ReplaceAll(dir, `\`, "/")
}
