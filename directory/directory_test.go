package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/azguard/directory"
)

func TestMemoryLookups(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory(&directory.Entry{
		Name:              "alice",
		SID:               "S-1-5-21-100-200-300-1001",
		GroupSIDs:         []string{"S-1-5-21-100-200-300-2001"},
		DistinguishedName: "CN=Alice,OU=Finance,DC=corp,DC=local",
	})

	byName, err := dir.FindPrincipalByIdentity(ctx, directory.IdentityName, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-100-200-300-1001", byName.SID)

	bySID, err := dir.FindPrincipalByIdentity(ctx, directory.IdentitySID, "S-1-5-21-100-200-300-1001")
	require.NoError(t, err)
	assert.Equal(t, "alice", bySID.Name)

	byDN, err := dir.FindPrincipalByIdentity(ctx, directory.IdentityDistinguishedName, "cn=alice,ou=finance,dc=corp,dc=local")
	require.NoError(t, err)
	assert.Equal(t, []string{"S-1-5-21-100-200-300-2001"}, byDN.GroupSIDs)

	_, err = dir.FindPrincipalByIdentity(ctx, directory.IdentityName, "mallory")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory(&directory.Entry{Name: "bob", SID: "S-1-5-21-1", GroupSIDs: []string{"S-1-5-21-2"}})

	e, err := dir.FindPrincipalByIdentity(ctx, directory.IdentityName, "bob")
	require.NoError(t, err)
	e.GroupSIDs[0] = "changed"

	again, err := dir.FindPrincipalByIdentity(ctx, directory.IdentityName, "bob")
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-2", again.GroupSIDs[0])
}

func TestBinarySIDRoundTrip(t *testing.T) {
	tests := []string{
		"S-1-5-32-544",
		"S-1-5-21-3623811015-3361044348-30300820-1013",
		"S-1-1-0",
	}
	for _, sid := range tests {
		t.Run(sid, func(t *testing.T) {
			b, err := directory.EncodeBinarySID(sid)
			require.NoError(t, err)
			got, err := directory.ParseBinarySID(b)
			require.NoError(t, err)
			assert.Equal(t, sid, got)
		})
	}
}

func TestParseBinarySIDKnownBytes(t *testing.T) {
	// BUILTIN\Administrators.
	b := []byte{1, 2, 0, 0, 0, 0, 0, 5, 32, 0, 0, 0, 32, 2, 0, 0}
	sid, err := directory.ParseBinarySID(b)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-32-544", sid)
}

func TestParseBinarySIDInvalid(t *testing.T) {
	_, err := directory.ParseBinarySID([]byte{1, 2, 0})
	assert.Error(t, err)

	_, err = directory.ParseBinarySID([]byte{1, 3, 0, 0, 0, 0, 0, 5, 32, 0, 0, 0})
	assert.Error(t, err)

	_, err = directory.EncodeBinarySID("not-a-sid")
	assert.Error(t, err)
}
