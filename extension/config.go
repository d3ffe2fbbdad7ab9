package extension

import (
	"time"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/directory/ldap"
)

// Store drivers understood by Config.StoreDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds the azguard extension configuration.
// Fields can be set programmatically via Option functions or decoded from
// the application's configuration under an "azguard" key.
type Config struct {
	// ApplicationName names the policy application. Required.
	ApplicationName string `json:"application_name" mapstructure:"application_name" yaml:"application_name"`

	// ScopeName narrows checks to a named scope.
	ScopeName string `json:"scope_name" mapstructure:"scope_name" yaml:"scope_name"`

	// ScopeFromOrg uses the forge organization as the check scope.
	ScopeFromOrg bool `json:"scope_from_org" mapstructure:"scope_from_org" yaml:"scope_from_org"`

	// AuditIdentifierPrefix is prepended to Authorize audit identifiers.
	AuditIdentifierPrefix string `json:"audit_identifier_prefix" mapstructure:"audit_identifier_prefix" yaml:"audit_identifier_prefix"`

	// NameComparison is "exact" (default) or "fold".
	NameComparison string `json:"name_comparison" mapstructure:"name_comparison" yaml:"name_comparison"`

	// DisableCheckLog stops persisting check log entries.
	DisableCheckLog bool `json:"disable_check_log" mapstructure:"disable_check_log" yaml:"disable_check_log"`

	RuleCacheTTL  time.Duration `json:"rule_cache_ttl" mapstructure:"rule_cache_ttl" yaml:"rule_cache_ttl"`
	RuleCacheSize int           `json:"rule_cache_size" mapstructure:"rule_cache_size" yaml:"rule_cache_size"`

	// StoreDriver selects the store built over a grove.DB resolved from
	// the DI container: sqlite, postgres or mongo. When empty a
	// store.Store is resolved from the container instead.
	StoreDriver string `json:"store_driver" mapstructure:"store_driver" yaml:"store_driver"`

	// AutoRegister creates the application on start when it is missing.
	AutoRegister bool `json:"auto_register" mapstructure:"auto_register" yaml:"auto_register"`

	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableMetrics skips the OpenTelemetry metrics plugin.
	DisableMetrics bool `json:"disable_metrics" mapstructure:"disable_metrics" yaml:"disable_metrics"`

	// LDAP, when set, resolves users against a directory server.
	LDAP *ldap.Config `json:"ldap,omitempty" mapstructure:"ldap" yaml:"ldap"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	d := azguard.DefaultConfig()
	return Config{
		NameComparison: string(d.NameComparison),
		RuleCacheTTL:   d.RuleCacheTTL,
		RuleCacheSize:  d.RuleCacheSize,
	}
}

// engineConfig maps the extension settings onto the engine's Config.
func (c Config) engineConfig() azguard.Config {
	d := azguard.DefaultConfig()
	cfg := azguard.Config{
		ApplicationName:       c.ApplicationName,
		ScopeName:             c.ScopeName,
		ScopeFromOrg:          c.ScopeFromOrg,
		AuditIdentifierPrefix: c.AuditIdentifierPrefix,
		NameComparison:        azguard.NameComparison(c.NameComparison),
		DisableCheckLog:       c.DisableCheckLog,
		RuleCacheTTL:          c.RuleCacheTTL,
		RuleCacheSize:         c.RuleCacheSize,
	}
	if cfg.NameComparison == "" {
		cfg.NameComparison = d.NameComparison
	}
	if cfg.RuleCacheTTL == 0 {
		cfg.RuleCacheTTL = d.RuleCacheTTL
	}
	if cfg.RuleCacheSize == 0 {
		cfg.RuleCacheSize = d.RuleCacheSize
	}
	return cfg
}
