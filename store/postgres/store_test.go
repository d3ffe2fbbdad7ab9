package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xraph/azguard/store"
)

func TestMapWriteErr(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "azguard_roles_app_id_scope_name_key"}
	err := mapWriteErr("create role", dup)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Contains(t, err.Error(), "azguard_roles_app_id_scope_name_key")

	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key"}
	err = mapWriteErr("create assignment", fk)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "23503", se.Code)
	assert.ErrorIs(t, err, fk)

	plain := errors.New("connection reset")
	err = mapWriteErr("create task", plain)
	assert.ErrorIs(t, err, plain)
	assert.False(t, errors.As(err, &se))
}

// TestServerErrorCodes runs against a real server so the SQLSTATEs that
// mapWriteErr relies on come from PostgreSQL itself.
func TestServerErrorCodes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("azguard"),
		tcpostgres.WithUsername("azguard"),
		tcpostgres.WithPassword("azguard"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx) //nolint:errcheck // test cleanup

	_, err = conn.Exec(ctx, `
CREATE TABLE azguard_roles (
    id     TEXT PRIMARY KEY,
    app_id TEXT NOT NULL,
    scope  TEXT NOT NULL DEFAULT '',
    name   TEXT NOT NULL,
    UNIQUE(app_id, scope, name)
)`)
	require.NoError(t, err)

	insert := `INSERT INTO azguard_roles (id, app_id, name) VALUES ($1, 'billing', 'Approver')`
	_, err = conn.Exec(ctx, insert, "r1")
	require.NoError(t, err)

	_, err = conn.Exec(ctx, insert, "r2")
	require.Error(t, err)
	assert.ErrorIs(t, mapWriteErr("create role", err), store.ErrDuplicate)

	_, err = conn.Exec(ctx, `INSERT INTO azguard_missing (id) VALUES ('x')`)
	require.Error(t, err)
	var se *store.Error
	require.ErrorAs(t, mapWriteErr("create role", err), &se)
	assert.Equal(t, "42P01", se.Code)
}
