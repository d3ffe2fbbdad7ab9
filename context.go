package azguard

import "context"

type contextKey int

const (
	ctxKeyScope contextKey = iota
	ctxKeyParams
)

// WithScope returns a context that narrows checks to the named scope,
// overriding the configured scope. Use "" for the application level.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, ctxKeyScope, scope)
}

// WithParams attaches contextual parameters to ctx. Aggregate queries
// called with nil params fall back to these.
func WithParams(ctx context.Context, p Params) context.Context {
	return context.WithValue(ctx, ctxKeyParams, p)
}

func scopeOverride(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyScope).(string)
	return v, ok
}

// ParamsFromContext returns parameters attached with WithParams.
func ParamsFromContext(ctx context.Context) (*Params, bool) {
	v, ok := ctx.Value(ctxKeyParams).(Params)
	if !ok {
		return nil, false
	}
	return &v, true
}
