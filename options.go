package azguard

import (
	"context"
	"log/slog"

	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/plugin"
	"github.com/xraph/azguard/store"
)

// StoreOpener opens a policy store for one Handle. location has its tokens
// resolved. The returned store is closed when the Handle is closed.
type StoreOpener func(ctx context.Context, location string, creds *Credentials) (store.Store, error)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets a shared composite store. Handles use it without closing it.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithStoreOpener makes every Handle open its own store from the configured
// store location. It takes precedence over WithStore for checks.
func WithStoreOpener(fn StoreOpener) Option { return func(e *Engine) { e.opener = fn } }

// WithDirectory sets the identity directory used to resolve user names.
func WithDirectory(d directory.Finder) Option { return func(e *Engine) { e.directory = d } }

// WithRuleEvaluator replaces the business rule evaluator.
func WithRuleEvaluator(ev RuleEvaluator) Option { return func(e *Engine) { e.rules = ev } }

// WithRuleCache sets the compiled business rule cache used by the default
// evaluator.
func WithRuleCache(c RuleCache) Option { return func(e *Engine) { e.ruleCache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}
