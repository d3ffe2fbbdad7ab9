package azguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// CreateRole creates a role in the check scope. The role holds a
// role-definition task of the same name, which is where its grants live.
func (e *Engine) CreateRole(ctx context.Context, roleName string) (*role.Role, error) {
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return nil, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if _, err := h.Role(name, h.Scope()); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoleExists, name)
	}

	now := time.Now().UTC()
	def := h.scopeTask(name, h.Scope())
	switch {
	case def == nil:
		def = &task.Task{
			ID:               id.NewTaskID(),
			AppID:            h.app.ID,
			Scope:            h.Scope(),
			Name:             name,
			IsRoleDefinition: true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := h.store.CreateTask(ctx, def); err != nil {
			return nil, backendError("create role definition", err)
		}
		if e.plugins != nil {
			e.plugins.EmitTaskCreated(ctx, def)
		}
	case !def.IsRoleDefinition:
		return nil, fmt.Errorf("%w: a task named %q already exists", ErrRoleExists, name)
	}

	r := &role.Role{
		ID:        id.NewRoleID(),
		AppID:     h.app.ID,
		Scope:     h.Scope(),
		Name:      name,
		Tasks:     []string{name},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateRole(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrRoleExists, name)
		}
		return nil, backendError("create role", err)
	}
	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, r)
	}
	return r, nil
}

// DeleteRole removes a role, its memberships and its role-definition task.
// It returns false when the role does not exist. With throwOnPopulated a
// role that still has members is left alone and ErrRolePopulated returned.
func (e *Engine) DeleteRole(ctx context.Context, roleName string, throwOnPopulated bool) (bool, error) {
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return false, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return false, err
	}
	defer h.Close()

	r, err := h.Role(name, h.Scope())
	if err != nil {
		return false, nil
	}
	if throwOnPopulated && len(h.members[r.ID.String()]) > 0 {
		return false, fmt.Errorf("%w: %q", ErrRolePopulated, name)
	}

	if def := h.scopeTask(r.Name, r.Scope); def != nil && def.IsRoleDefinition {
		if err := h.store.DeleteTask(ctx, def.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, backendError("delete role definition", err)
		}
		if e.plugins != nil {
			e.plugins.EmitTaskDeleted(ctx, def.ID)
		}
	}
	if err := h.store.DeleteAssignmentsByRole(ctx, r.ID); err != nil {
		return false, backendError("delete role members", err)
	}
	if err := h.store.DeleteRole(ctx, r.ID); err != nil {
		return false, backendError("delete role", err)
	}
	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, r)
	}
	return true, nil
}

// AllRoles returns the names of the roles visible in the check scope.
func (e *Engine) AllRoles(ctx context.Context) ([]string, error) {
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	roles := h.Roles(h.Scope())
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names, nil
}

// RoleExists reports whether a role is visible in the check scope.
func (e *Engine) RoleExists(ctx context.Context, roleName string) (bool, error) {
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return false, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return false, err
	}
	defer h.Close()
	_, err = h.Role(name, h.Scope())
	return err == nil, nil
}

// UsersInRole returns the member names of a role. Members stored without a
// name are looked up in the directory by SID; unresolvable members are
// reported by SID.
func (e *Engine) UsersInRole(ctx context.Context, roleName string) ([]string, error) {
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return nil, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	r, err := h.Role(name, h.Scope())
	if err != nil {
		return nil, err
	}
	members := h.Members(r)
	users := make([]string, 0, len(members))
	for _, a := range members {
		users = append(users, e.memberName(ctx, a))
	}
	return users, nil
}

func (e *Engine) memberName(ctx context.Context, a *assignment.Assignment) string {
	if a.MemberName != "" {
		return a.MemberName
	}
	entry, err := e.directory.FindPrincipalByIdentity(ctx, directory.IdentitySID, a.SID)
	if err != nil || entry.Name == "" {
		return a.SID
	}
	return entry.Name
}

// IsUserInRole reports whether userName holds roleName. The role must
// exist; an empty user name is never a member.
func (e *Engine) IsUserInRole(ctx context.Context, userName, roleName string) (bool, error) {
	if trimUser(userName) == "" {
		return false, nil
	}
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return false, err
	}
	h, cc, err := e.session(ctx, userName)
	if err != nil {
		return false, err
	}
	defer h.Close()

	r, err := h.Role(name, h.Scope())
	if err != nil {
		return false, err
	}
	return cc.holds(r), nil
}

// AddUsersToRoles makes every user a member of every role. All names are
// validated, every role looked up and every user resolved before the store
// is touched. Existing memberships are left as they are.
func (e *Engine) AddUsersToRoles(ctx context.Context, userNames, roleNames []string) error {
	h, roles, idents, err := e.prepareMembership(ctx, userNames, roleNames)
	if err != nil {
		return err
	}
	defer h.Close()

	now := time.Now().UTC()
	for _, r := range roles {
		var added []*assignment.Assignment
		for _, ident := range idents {
			if h.isMember(r, ident.SID) {
				continue
			}
			a := &assignment.Assignment{
				ID:         id.NewAssignmentID(),
				AppID:      h.app.ID,
				RoleID:     r.ID,
				SID:        ident.SID,
				MemberName: ident.Name,
				CreatedAt:  now,
			}
			if err := h.store.CreateAssignment(ctx, a); err != nil {
				return backendError("add role member", err)
			}
			added = append(added, a)
		}
		if len(added) > 0 && e.plugins != nil {
			e.plugins.EmitMembersAdded(ctx, r, added)
		}
	}
	return nil
}

// RemoveUsersFromRoles removes every user from every role. Users that are
// not members of a role are skipped.
func (e *Engine) RemoveUsersFromRoles(ctx context.Context, userNames, roleNames []string) error {
	h, roles, idents, err := e.prepareMembership(ctx, userNames, roleNames)
	if err != nil {
		return err
	}
	defer h.Close()

	for _, r := range roles {
		var removed []string
		for _, ident := range idents {
			if !h.isMember(r, ident.SID) {
				continue
			}
			ok, err := h.store.DeleteMember(ctx, r.ID, ident.SID)
			if err != nil {
				return backendError("remove role member", err)
			}
			if ok {
				removed = append(removed, ident.SID)
			}
		}
		if len(removed) > 0 && e.plugins != nil {
			e.plugins.EmitMembersRemoved(ctx, r, removed)
		}
	}
	return nil
}

func (e *Engine) prepareMembership(ctx context.Context, userNames, roleNames []string) (*Handle, []*role.Role, []*Identity, error) {
	roleNames, err := checkArrayParameter(roleNames, true, true, 0, "roleNames")
	if err != nil {
		return nil, nil, nil, err
	}
	userNames, err = checkArrayParameter(userNames, true, true, 0, "userNames")
	if err != nil {
		return nil, nil, nil, err
	}

	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	// Distinct names may still denote one role or one SID (folded names,
	// directory aliases); each is kept once.
	roles := make([]*role.Role, 0, len(roleNames))
	seenRoles := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		r, err := h.Role(name, h.Scope())
		if err != nil {
			h.Close()
			return nil, nil, nil, err
		}
		if _, dup := seenRoles[r.ID.String()]; dup {
			continue
		}
		seenRoles[r.ID.String()] = struct{}{}
		roles = append(roles, r)
	}
	idents := make([]*Identity, 0, len(userNames))
	seenSIDs := make(map[string]struct{}, len(userNames))
	for _, name := range userNames {
		ident, err := e.Resolve(ctx, name)
		if err != nil {
			h.Close()
			return nil, nil, nil, err
		}
		if _, dup := seenSIDs[ident.SID]; dup {
			continue
		}
		seenSIDs[ident.SID] = struct{}{}
		idents = append(idents, ident)
	}
	return h, roles, idents, nil
}
