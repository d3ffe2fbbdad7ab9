package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/azguard"
)

const billing = "../../policyfile/testdata/billing.yaml"

func TestRunAuthorize(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, run(ctx, []string{"authorize", "--policy", billing, "--user", "alice", "Approve"}))
	require.NoError(t, run(ctx, []string{"authorize", "--policy", billing, "--user", "alice", "O:ApproveInvoice"}))
	require.NoError(t, run(ctx, []string{"authorize", "-p", billing, "-u", "bob", "--scope", "EMEA", "O:ApproveInvoice"}))

	err := run(ctx, []string{"authorize", "--policy", billing, "--user", "bob", "Approve"})
	var coder interface{ ExitCode() int }
	require.True(t, errors.As(err, &coder))
	assert.Equal(t, exitDenied, coder.ExitCode())
}

func TestRunUserIsLookedUpByName(t *testing.T) {
	ctx := context.Background()

	// The policy directory resolves names; a SID is not a user name.
	err := run(ctx, []string{"roles", "--policy", billing, "--user", "S-1-5-21-1000-1"})
	assert.ErrorIs(t, err, azguard.ErrPrincipalNotFound)
}

func TestRunRequiresFlags(t *testing.T) {
	ctx := context.Background()

	assert.ErrorContains(t, run(ctx, []string{"roles", "--user", "alice"}), "--policy")
	assert.ErrorContains(t, run(ctx, []string{"roles", "--policy", billing}), "--user")
	assert.ErrorContains(t, run(ctx, []string{"members", "--policy", billing}), "role argument")
	assert.ErrorContains(t, run(ctx, []string{"frobnicate"}), "unknown command")
}

func TestRunListings(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, run(ctx, []string{"validate", "--policy", billing}))
	assert.NoError(t, run(ctx, []string{"principal", "--policy", billing, "--user", "dave", "--ip", "10.0.0.7", "--json"}))
	assert.NoError(t, run(ctx, []string{"members", "--policy", billing, "Admins"}))
	assert.NoError(t, run(ctx, []string{"task-operations", "--policy", billing, "Admin"}))
}
