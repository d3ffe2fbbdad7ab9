package azguard

import "github.com/xraph/azguard/role"

// ClientContext binds a resolved identity to an open Handle. It is the
// subject of access checks and is only valid while the Handle is open.
type ClientContext struct {
	h        *Handle
	identity *Identity
	scope    string
	sids     map[string]struct{}
}

// NewClientContext binds the identity's user SID and group SIDs. Scope ""
// checks at the application level; any other scope must be defined by the
// application, otherwise ErrScopeNotFound is returned.
func (h *Handle) NewClientContext(identity *Identity, scope string) (*ClientContext, error) {
	if h.closed {
		return nil, ErrHandleClosed
	}
	if err := h.checkScope(scope); err != nil {
		return nil, err
	}
	sids := make(map[string]struct{}, len(identity.GroupSIDs)+1)
	for _, sid := range identity.SIDs() {
		if sid != "" {
			sids[sid] = struct{}{}
		}
	}
	return &ClientContext{
		h:        h,
		identity: identity,
		scope:    scope,
		sids:     sids,
	}, nil
}

// Identity returns the bound identity.
func (c *ClientContext) Identity() *Identity { return c.identity }

// Scope returns the scope checks run in.
func (c *ClientContext) Scope() string { return c.scope }

// Roles returns the names of the roles visible in the context scope that
// have a bound SID as member, in store order.
func (c *ClientContext) Roles() []string {
	held := c.heldRoles(c.scope)
	names := make([]string, 0, len(held))
	for _, r := range held {
		names = append(names, r.Name)
	}
	return names
}

func (c *ClientContext) heldRoles(scope string) []*role.Role {
	var held []*role.Role
	for _, r := range c.h.Roles(scope) {
		if c.holds(r) {
			held = append(held, r)
		}
	}
	return held
}

func (c *ClientContext) holds(r *role.Role) bool {
	for _, a := range c.h.members[r.ID.String()] {
		if _, ok := c.sids[a.SID]; ok {
			return true
		}
	}
	return false
}
