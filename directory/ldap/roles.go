package ldap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/xraph/azguard/directory"
)

// ErrRoleNotFound is returned when no group carries the requested name.
var ErrRoleNotFound = errors.New("ldap: role not found")

// RoleSource treats directory groups as roles. A role is a group entry
// named by the group name attribute; its members are the user DNs listed
// in the member attribute.
type RoleSource struct {
	d *Directory
}

// Roles returns the group role source of the directory.
func (d *Directory) Roles() *RoleSource { return &RoleSource{d: d} }

// AllRoles returns every group name under the base DN.
func (s *RoleSource) AllRoles(ctx context.Context) ([]string, error) {
	groups, err := s.groups(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.GetEqualFoldAttributeValue(s.d.cfg.GroupNameAttribute))
	}
	return names, nil
}

// RoleExists reports whether a group with the given name exists.
func (s *RoleSource) RoleExists(ctx context.Context, roleName string) (bool, error) {
	_, err := s.group(ctx, roleName)
	if errors.Is(err, ErrRoleNotFound) {
		return false, nil
	}
	return err == nil, err
}

// RolesForUser returns the names of the groups listing the user's DN as a
// member. An unknown user holds no roles.
func (s *RoleSource) RolesForUser(ctx context.Context, userName string) ([]string, error) {
	dn, err := s.userDN(ctx, userName)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	clause := fmt.Sprintf("(%s=%s)", s.d.cfg.MemberAttribute, goldap.EscapeFilter(dn))
	groups, err := s.groups(ctx, clause)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.GetEqualFoldAttributeValue(s.d.cfg.GroupNameAttribute))
	}
	return names, nil
}

// UsersInRole returns the member DNs of a group.
func (s *RoleSource) UsersInRole(ctx context.Context, roleName string) ([]string, error) {
	return s.FindUsersInRole(ctx, roleName, "")
}

// FindUsersInRole returns the member DNs of a group that contain match.
func (s *RoleSource) FindUsersInRole(ctx context.Context, roleName, match string) ([]string, error) {
	g, err := s.group(ctx, roleName)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range g.GetEqualFoldAttributeValues(s.d.cfg.MemberAttribute) {
		if strings.Contains(m, match) {
			out = append(out, m)
		}
	}
	return out, nil
}

// IsUserInRole reports whether the user's DN is a member of the group.
func (s *RoleSource) IsUserInRole(ctx context.Context, userName, roleName string) (bool, error) {
	g, err := s.group(ctx, roleName)
	if err != nil {
		return false, err
	}
	dn, err := s.userDN(ctx, userName)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return slices.Contains(g.GetEqualFoldAttributeValues(s.d.cfg.MemberAttribute), dn), nil
}

func (s *RoleSource) userDN(ctx context.Context, userName string) (string, error) {
	conn, err := s.d.connect(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	req := s.d.userSearch(fmt.Sprintf("(%s=%s)", s.d.cfg.UserNameAttribute, goldap.EscapeFilter(userName)))
	req.Attributes = []string{"dn"}
	res, err := conn.Search(req)
	if err != nil {
		return "", fmt.Errorf("ldap: search user %q: %w", userName, err)
	}
	if len(res.Entries) == 0 {
		return "", fmt.Errorf("user %q: %w", userName, directory.ErrNotFound)
	}
	return res.Entries[0].DN, nil
}

func (s *RoleSource) group(ctx context.Context, roleName string) (*goldap.Entry, error) {
	clause := fmt.Sprintf("(%s=%s)", s.d.cfg.GroupNameAttribute, goldap.EscapeFilter(roleName))
	groups, err := s.groups(ctx, clause)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
	}
	return groups[0], nil
}

func (s *RoleSource) groups(ctx context.Context, clause string) ([]*goldap.Entry, error) {
	conn, err := s.d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	filter := fmt.Sprintf("(&(objectClass=%s)%s)", s.d.cfg.GroupObjectClass, clause)
	req := goldap.NewSearchRequest(s.d.cfg.BaseDN, goldap.ScopeWholeSubtree, goldap.NeverDerefAliases, 0, 0, false,
		filter, []string{s.d.cfg.GroupNameAttribute, s.d.cfg.MemberAttribute}, nil)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap: search groups: %w", err)
	}
	return res.Entries, nil
}
