package azguard

import (
	"context"

	"github.com/xraph/forge"
)

// scopeFromContext picks the check scope: an explicit WithScope value, then
// the forge organization when ScopeFromOrg is set, then Config.ScopeName.
func (e *Engine) scopeFromContext(ctx context.Context) string {
	if s, ok := scopeOverride(ctx); ok {
		return s
	}
	if e.config.ScopeFromOrg {
		if s, ok := forge.ScopeFrom(ctx); ok && s.OrgID() != "" {
			return s.OrgID()
		}
	}
	return e.config.ScopeName
}
