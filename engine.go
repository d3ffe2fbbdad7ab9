package azguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/plugin"
	"github.com/xraph/azguard/store"
)

// Engine answers role, task and operation questions for directory users.
// It resolves users through the directory, opens a policy store Handle per
// call and runs access checks against it.
type Engine struct {
	store     store.Store
	opener    StoreOpener
	directory directory.Finder
	rules     RuleEvaluator
	ruleCache RuleCache
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config
}

// NewEngine creates a new engine with the given options. A store (or store
// opener), a directory and an application name are required.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil && e.opener == nil {
		return nil, errors.New("azguard: store is required")
	}
	if e.directory == nil {
		return nil, errors.New("azguard: directory is required")
	}
	if err := e.config.validate(); err != nil {
		return nil, err
	}
	if e.config.NameComparison == "" {
		e.config.NameComparison = NameCompareExact
	}
	if e.rules == nil {
		e.rules = DefaultRuleEvaluator(e.ruleCache)
	}
	return e, nil
}

// Store returns the shared composite store. It is nil when the engine only
// has a store opener.
func (e *Engine) Store() store.Store { return e.store }

// Directory returns the identity directory.
func (e *Engine) Directory() directory.Finder { return e.directory }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop notifies plugins of shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Application returns the configured application record.
func (e *Engine) Application(ctx context.Context) (*application.Application, error) {
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.Application(), nil
}

// Resolve looks userName up in the directory. It fails with
// ErrPrincipalNotFound when the directory has no matching entry.
func (e *Engine) Resolve(ctx context.Context, userName string) (*Identity, error) {
	name, err := checkParameter(userName, true, false, 0, "userName")
	if err != nil {
		return nil, err
	}
	entry, err := e.directory.FindPrincipalByIdentity(ctx, directory.IdentityName, name)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q: %w", ErrPrincipalNotFound, name, err)
		}
		return nil, fmt.Errorf("azguard: resolve %q: %w", name, err)
	}
	if entry.SID == "" {
		return nil, fmt.Errorf("%w: %q has no SID", ErrPrincipalNotFound, name)
	}
	ident := &Identity{
		Name:      entry.Name,
		SID:       entry.SID,
		GroupSIDs: entry.GroupSIDs,
	}
	if ident.Name == "" {
		ident.Name = name
	}
	return ident, nil
}

// session resolves userName and opens a handle with a client context in
// the handle scope. The caller closes the handle.
func (e *Engine) session(ctx context.Context, userName string) (*Handle, *ClientContext, error) {
	ident, err := e.Resolve(ctx, userName)
	if err != nil {
		return nil, nil, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, nil, err
	}
	cc, err := h.NewClientContext(ident, h.Scope())
	if err != nil {
		h.Close()
		return nil, nil, err
	}
	return h, cc, nil
}

func trimUser(userName string) string { return strings.TrimSpace(userName) }
