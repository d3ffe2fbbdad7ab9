package extension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/azguard"
)

func TestEngineConfigDefaults(t *testing.T) {
	cfg := Config{ApplicationName: "Billing"}.engineConfig()

	assert.Equal(t, "Billing", cfg.ApplicationName)
	assert.Equal(t, azguard.NameCompareExact, cfg.NameComparison)
	assert.Equal(t, azguard.DefaultConfig().RuleCacheTTL, cfg.RuleCacheTTL)
	assert.Equal(t, azguard.DefaultConfig().RuleCacheSize, cfg.RuleCacheSize)
}

func TestEngineConfigCarriesSettings(t *testing.T) {
	cfg := Config{
		ApplicationName:       "Billing",
		ScopeName:             "EMEA",
		ScopeFromOrg:          true,
		AuditIdentifierPrefix: "web:",
		NameComparison:        "fold",
		DisableCheckLog:       true,
		RuleCacheTTL:          time.Minute,
		RuleCacheSize:         10,
	}.engineConfig()

	assert.Equal(t, "EMEA", cfg.ScopeName)
	assert.True(t, cfg.ScopeFromOrg)
	assert.Equal(t, "web:", cfg.AuditIdentifierPrefix)
	assert.Equal(t, azguard.NameCompareFold, cfg.NameComparison)
	assert.True(t, cfg.DisableCheckLog)
	assert.Equal(t, time.Minute, cfg.RuleCacheTTL)
	assert.Equal(t, 10, cfg.RuleCacheSize)
}

func TestNewAppliesOptions(t *testing.T) {
	ext := New(
		WithConfig(Config{ApplicationName: "Billing"}),
		WithDisableRoutes(),
		WithDisableMigrate(),
	)
	assert.Equal(t, ExtensionName, ext.Name())
	assert.True(t, ext.config.DisableRoutes)
	assert.True(t, ext.config.DisableMigrate)
	assert.Nil(t, ext.Engine())
}

func TestStoreForUnknownDriver(t *testing.T) {
	_, err := storeForDriver("cassandra", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
