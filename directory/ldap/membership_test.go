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

// newMembershipDirectory serves alice and a nameless entry, and counts the
// connections it hands out.
func newMembershipDirectory(t *testing.T) (*Directory, *fakeConn, *int) {
	t.Helper()
	alice := goldap.NewEntry(aliceDN, map[string][]string{
		"sAMAccountName": {"alice"},
		"mail":           {"alice@example.com"},
	})
	bob := goldap.NewEntry("cn=bob,ou=users,dc=example,dc=com", map[string][]string{
		"sAMAccountName": {"bob"},
	})
	orphan := goldap.NewEntry("cn=orphan,ou=users,dc=example,dc=com", map[string][]string{
		"mail": {"orphan@example.com"},
	})
	conn := &fakeConn{
		byFilter: map[string][]*goldap.Entry{
			"(&(objectClass=user)(sAMAccountName=alice))":  {alice},
			"(&(objectClass=user)(mail=alice@example.com))": {alice},
			"(&(objectClass=user)(sAMAccountName=twin))":   {alice, bob},
			"(objectClass=user)":                            {alice, orphan, bob},
		},
		passwords: map[string]string{aliceDN: "hunter2"},
	}
	dials := 0
	d := New(Config{
		URL:          "ldap://dc.example.com",
		BindDN:       "cn=svc,dc=example,dc=com",
		BindPassword: "secret",
		BaseDN:       "dc=example,dc=com",
	}, WithDialer(func(context.Context, Config) (Conn, error) {
		dials++
		return conn, nil
	}))
	return d, conn, &dials
}

func TestValidateUser(t *testing.T) {
	d, conn, dials := newMembershipDirectory(t)
	ctx := context.Background()

	ok, err := d.ValidateUser(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
	// The lookup and the user bind use separate connections.
	assert.Equal(t, 2, *dials)
	assert.Equal(t, []string{"cn=svc,dc=example,dc=com", aliceDN}, conn.binds)
	assert.Equal(t, 2, conn.closed)

	ok, err = d.ValidateUser(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.ValidateUser(ctx, "mallory", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok)

	before := *dials
	ok, err = d.ValidateUser(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, *dials, "empty password must not reach the server")
}

func TestValidateUser_DialFailure(t *testing.T) {
	d, _, _ := newMembershipDirectory(t)
	calls := 0
	base := d.dial
	d.dial = func(ctx context.Context, cfg Config) (Conn, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("connection refused")
		}
		return base(ctx, cfg)
	}

	ok, err := d.ValidateUser(context.Background(), "alice", "hunter2")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")
}

func TestGetUser(t *testing.T) {
	d, _, _ := newMembershipDirectory(t)
	ctx := context.Background()

	u, err := d.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &User{Name: "alice", Email: "alice@example.com", DistinguishedName: aliceDN}, u)

	_, err = d.GetUser(ctx, "mallory")
	assert.ErrorIs(t, err, directory.ErrNotFound)

	_, err = d.GetUser(ctx, "twin")
	assert.ErrorContains(t, err, "matches 2 entries")
}

func TestUserNameByEmail(t *testing.T) {
	d, conn, _ := newMembershipDirectory(t)
	ctx := context.Background()

	name, err := d.UserNameByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = d.UserNameByEmail(ctx, "*)(mail=*")
	assert.ErrorIs(t, err, directory.ErrNotFound)
	assert.Equal(t, `(&(objectClass=user)(mail=\2a\29\28mail=\2a))`, conn.filters[len(conn.filters)-1])
}

func TestAllUsers(t *testing.T) {
	d, _, _ := newMembershipDirectory(t)

	users, err := d.AllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Name)
	assert.Equal(t, "bob", users[1].Name)
	assert.Empty(t, users[1].Email)
}
