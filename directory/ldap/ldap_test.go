package ldap

import (
	"context"
	"errors"
	"testing"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/azguard/directory"
)

const (
	aliceDN  = "cn=alice,ou=users,dc=example,dc=com"
	aliceSID = "S-1-5-21-1000-1"
	groupSID = "S-1-5-21-1000-100"
)

// fakeConn answers subtree searches by filter and base-object searches by DN.
// Binds as a DN listed in passwords must use that password.
type fakeConn struct {
	byFilter  map[string][]*goldap.Entry
	byDN      map[string]*goldap.Entry
	passwords map[string]string
	binds     []string
	filters   []string
	closed    int
}

func (c *fakeConn) Bind(username, password string) error {
	c.binds = append(c.binds, username)
	if want, ok := c.passwords[username]; ok && want != password {
		return goldap.NewError(goldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
	}
	return nil
}

func (c *fakeConn) Search(req *goldap.SearchRequest) (*goldap.SearchResult, error) {
	c.filters = append(c.filters, req.Filter)
	if req.Scope == goldap.ScopeBaseObject {
		e, ok := c.byDN[req.BaseDN]
		if !ok {
			return nil, goldap.NewError(goldap.LDAPResultNoSuchObject, errors.New("no such object"))
		}
		return &goldap.SearchResult{Entries: []*goldap.Entry{e}}, nil
	}
	return &goldap.SearchResult{Entries: c.byFilter[req.Filter]}, nil
}

func (c *fakeConn) Close() error {
	c.closed++
	return nil
}

func mustSID(t *testing.T, sid string) string {
	t.Helper()
	raw, err := directory.EncodeBinarySID(sid)
	require.NoError(t, err)
	return string(raw)
}

func newTestDirectory(t *testing.T) (*Directory, *fakeConn) {
	t.Helper()
	alice := goldap.NewEntry(aliceDN, map[string][]string{
		"sAMAccountName": {"alice"},
		"objectSid":      {mustSID(t, aliceSID)},
		"mail":           {"alice@example.com"},
	})
	aliceTokens := goldap.NewEntry(aliceDN, map[string][]string{
		"tokenGroups": {mustSID(t, groupSID), "\x01"},
	})
	rawSID, err := directory.EncodeBinarySID(aliceSID)
	require.NoError(t, err)

	finance := goldap.NewEntry("cn=Finance,ou=groups,dc=example,dc=com", map[string][]string{
		"cn":     {"Finance"},
		"member": {aliceDN, "cn=bob,ou=users,dc=example,dc=com"},
	})
	ops := goldap.NewEntry("cn=Ops,ou=groups,dc=example,dc=com", map[string][]string{
		"cn":     {"Ops"},
		"member": {"cn=carol,ou=users,dc=example,dc=com"},
	})

	conn := &fakeConn{
		byFilter: map[string][]*goldap.Entry{
			"(&(objectClass=user)(sAMAccountName=alice))":                   {alice},
			"(&(objectClass=user)(objectSid=" + escapeBytes(rawSID) + "))": {alice},
			"(&(objectClass=groupOfNames))":                                 {finance, ops},
			"(&(objectClass=groupOfNames)(cn=Finance))":                     {finance},
			"(&(objectClass=groupOfNames)(member=" + aliceDN + "))":         {finance},
		},
		byDN: map[string]*goldap.Entry{aliceDN: aliceTokens},
	}
	d := New(Config{
		URL:          "ldap://dc.example.com",
		BindDN:       "cn=svc,dc=example,dc=com",
		BindPassword: "secret",
		BaseDN:       "dc=example,dc=com",
	}, WithDialer(func(context.Context, Config) (Conn, error) { return conn, nil }))
	return d, conn
}

func TestFindByName(t *testing.T) {
	d, conn := newTestDirectory(t)

	e, err := d.FindPrincipalByIdentity(context.Background(), directory.IdentityName, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", e.Name)
	assert.Equal(t, aliceSID, e.SID)
	assert.Equal(t, aliceDN, e.DistinguishedName)
	// The malformed token group value is skipped.
	assert.Equal(t, []string{groupSID}, e.GroupSIDs)
	assert.Equal(t, []string{"alice@example.com"}, e.Attributes["mail"])
	assert.NotContains(t, e.Attributes, "objectSid")

	assert.Equal(t, []string{"cn=svc,dc=example,dc=com"}, conn.binds)
	assert.Equal(t, 1, conn.closed)
}

func TestFindBySID(t *testing.T) {
	d, _ := newTestDirectory(t)

	e, err := d.FindPrincipalByIdentity(context.Background(), directory.IdentitySID, aliceSID)
	require.NoError(t, err)
	assert.Equal(t, "alice", e.Name)

	_, err = d.FindPrincipalByIdentity(context.Background(), directory.IdentitySID, "not-a-sid")
	assert.Error(t, err)
}

func TestFindNotFound(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.FindPrincipalByIdentity(ctx, directory.IdentityName, "mallory")
	assert.ErrorIs(t, err, directory.ErrNotFound)

	_, err = d.FindPrincipalByIdentity(ctx, directory.IdentityDistinguishedName, "cn=nobody,dc=example,dc=com")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestFindEscapesFilter(t *testing.T) {
	d, conn := newTestDirectory(t)

	_, err := d.FindPrincipalByIdentity(context.Background(), directory.IdentityName, "a*)(uid=*")
	assert.ErrorIs(t, err, directory.ErrNotFound)
	require.NotEmpty(t, conn.filters)
	assert.Equal(t, `(&(objectClass=user)(sAMAccountName=a\2a\29\28uid=\2a))`, conn.filters[0])
}

func TestFindCanceledContext(t *testing.T) {
	d, conn := newTestDirectory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.FindPrincipalByIdentity(ctx, directory.IdentityName, "alice")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.binds)
}

func TestRoleSource(t *testing.T) {
	d, _ := newTestDirectory(t)
	roles := d.Roles()
	ctx := context.Background()

	all, err := roles.AllRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "Ops"}, all)

	ok, err := roles.RoleExists(ctx, "Finance")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = roles.RoleExists(ctx, "Nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := roles.RolesForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance"}, held)

	held, err = roles.RolesForUser(ctx, "mallory")
	require.NoError(t, err)
	assert.Empty(t, held)

	members, err := roles.UsersInRole(ctx, "Finance")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	bobs, err := roles.FindUsersInRole(ctx, "Finance", "cn=bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"cn=bob,ou=users,dc=example,dc=com"}, bobs)

	in, err := roles.IsUserInRole(ctx, "alice", "Finance")
	require.NoError(t, err)
	assert.True(t, in)

	_, err = roles.IsUserInRole(ctx, "alice", "Nobody")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
