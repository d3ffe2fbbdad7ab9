// Package extension provides a Forge extension entry point for azguard.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/api"
	"github.com/xraph/azguard/cache"
	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/directory/ldap"
	"github.com/xraph/azguard/plugin"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/store/mongo"
	"github.com/xraph/azguard/store/postgres"
	"github.com/xraph/azguard/store/sqlite"
	"github.com/xraph/azguard/telemetry"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "azguard"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Role-based authorization with operations, tasks, roles and scopes"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts azguard as a Forge extension.
type Extension struct {
	config          Config
	eng             *azguard.Engine
	apiHandler      *api.API
	logger          *slog.Logger
	engineOpts      []azguard.Option
	plugins         []plugin.Plugin
	metricsShutdown telemetry.ShutdownFunc
}

// New creates an azguard Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying azguard engine.
func (e *Extension) Engine() *azguard.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*azguard.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("azguard: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := e.config.engineConfig()
	opts := make([]azguard.Option, 0, len(e.engineOpts)+len(e.plugins)+6)
	opts = append(opts,
		azguard.WithLogger(logger),
		azguard.WithConfig(cfg),
		azguard.WithRuleCache(cache.NewMemory(
			cache.WithTTL(cfg.RuleCacheTTL),
			cache.WithMaxSize(cfg.RuleCacheSize),
		)),
	)

	s, err := e.resolveStore(fapp)
	if err != nil {
		return err
	}
	if s != nil {
		opts = append(opts, azguard.WithStore(s))
	}

	switch {
	case e.config.LDAP != nil:
		opts = append(opts, azguard.WithDirectory(ldap.New(*e.config.LDAP, ldap.WithLogger(logger))))
	default:
		if d, err := forge.Inject[directory.Finder](fapp.Container()); err == nil {
			opts = append(opts, azguard.WithDirectory(d))
		}
	}

	// User-provided options may override the store and directory.
	opts = append(opts, e.engineOpts...)

	if !e.config.DisableMetrics {
		m, err := e.setupMetrics()
		if err != nil {
			return err
		}
		opts = append(opts, azguard.WithPlugin(m))
	}
	for _, x := range e.plugins {
		opts = append(opts, azguard.WithPlugin(x))
	}

	eng, err := azguard.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("azguard: create engine: %w", err)
	}
	e.eng = eng

	e.apiHandler = api.New(eng, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("azguard: register routes: %w", err)
		}
	}

	return nil
}

// resolveStore builds the store over the container's grove.DB when a
// driver is configured, and otherwise looks for a registered store.Store.
// A nil store leaves the choice to the engine options.
func (e *Extension) resolveStore(fapp forge.App) (store.Store, error) {
	if e.config.StoreDriver == "" {
		if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
			return s, nil
		}
		return nil, nil
	}
	db, err := forge.Inject[*grove.DB](fapp.Container())
	if err != nil {
		return nil, fmt.Errorf("azguard: resolve grove database: %w", err)
	}
	return storeForDriver(e.config.StoreDriver, db)
}

func storeForDriver(driver string, db *grove.DB) (store.Store, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.New(db), nil
	case DriverPostgres:
		return postgres.New(db), nil
	case DriverMongo:
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("azguard: unknown store driver %q", driver)
	}
}

func (e *Extension) setupMetrics() (*telemetry.Metrics, error) {
	shutdown, err := telemetry.Setup(context.Background())
	if err != nil {
		return nil, fmt.Errorf("azguard: setup metrics: %w", err)
	}
	e.metricsShutdown = shutdown
	m, err := telemetry.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("azguard: create metrics: %w", err)
	}
	return m, nil
}

// Start runs migrations if enabled, registers the application when
// AutoRegister is set, and starts the engine.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("azguard: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if s := e.eng.Store(); s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("azguard: migration failed: %w", err)
			}
		}
	}

	if e.config.AutoRegister {
		if _, err := e.eng.EnsureApplication(ctx, ""); err != nil {
			return fmt.Errorf("azguard: register application: %w", err)
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the engine and the metrics provider.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	err := e.eng.Stop(ctx)
	if e.metricsShutdown != nil {
		err = errors.Join(err, e.metricsShutdown(ctx))
	}
	return err
}

// Health implements [forge.Extension]. It opens the application, which
// pings the store.
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("azguard: extension not initialized")
	}
	_, err := e.eng.Application(ctx)
	return err
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// MetricsHandler serves the Prometheus metrics of the engine.
func (e *Extension) MetricsHandler() http.Handler {
	return telemetry.MetricsHandler()
}

// RegisterRoutes registers all azguard API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
