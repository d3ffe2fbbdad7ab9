package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the azguard store (PostgreSQL).
var Migrations = migrate.NewGroup("azguard")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_applications",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_applications (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    version         TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(name)
);

CREATE TABLE IF NOT EXISTS azguard_scopes (
    id              TEXT PRIMARY KEY,
    app_id          TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(app_id, name)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS azguard_scopes;
DROP TABLE IF EXISTS azguard_applications CASCADE;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_operations",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_operations (
    id              TEXT PRIMARY KEY,
    app_id          TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    operation_id    INTEGER NOT NULL,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(app_id, name),
    UNIQUE(app_id, operation_id)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS azguard_operations`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tasks",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_tasks (
    id                  TEXT PRIMARY KEY,
    app_id              TEXT NOT NULL,
    scope               TEXT NOT NULL DEFAULT '',
    name                TEXT NOT NULL,
    description         TEXT NOT NULL DEFAULT '',
    biz_rule            TEXT NOT NULL DEFAULT '',
    is_role_definition  BOOLEAN NOT NULL DEFAULT FALSE,
    operations          JSONB NOT NULL DEFAULT '[]',
    tasks               JSONB NOT NULL DEFAULT '[]',
    metadata            JSONB NOT NULL DEFAULT '{}',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(app_id, scope, name)
);

CREATE INDEX IF NOT EXISTS idx_azguard_tasks_app ON azguard_tasks (app_id, scope);
CREATE INDEX IF NOT EXISTS idx_azguard_tasks_role_def ON azguard_tasks (app_id) WHERE is_role_definition;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS azguard_tasks`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_roles (
    id              TEXT PRIMARY KEY,
    app_id          TEXT NOT NULL,
    scope           TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    tasks           JSONB NOT NULL DEFAULT '[]',
    operations      JSONB NOT NULL DEFAULT '[]',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(app_id, scope, name)
);

CREATE INDEX IF NOT EXISTS idx_azguard_roles_app ON azguard_roles (app_id, scope);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS azguard_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20250101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_assignments (
    id              TEXT PRIMARY KEY,
    app_id          TEXT NOT NULL,
    role_id         TEXT NOT NULL,
    sid             TEXT NOT NULL,
    member_name     TEXT NOT NULL DEFAULT '',
    granted_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE(role_id, sid)
);

CREATE INDEX IF NOT EXISTS idx_azguard_assignments_sid ON azguard_assignments (app_id, sid);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS azguard_assignments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_check_logs",
			Version: "20250101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS azguard_check_logs (
    id              TEXT PRIMARY KEY,
    app_id          TEXT NOT NULL,
    audit_id        TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    user_sid        TEXT NOT NULL DEFAULT '',
    scope           TEXT NOT NULL DEFAULT '',
    operation_ids   JSONB NOT NULL DEFAULT '[]',
    results         JSONB NOT NULL DEFAULT '[]',
    allowed         BOOLEAN NOT NULL DEFAULT FALSE,
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    params          JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_azguard_check_logs_user ON azguard_check_logs (app_id, user_name);
CREATE INDEX IF NOT EXISTS idx_azguard_check_logs_created ON azguard_check_logs (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_azguard_check_logs_audit ON azguard_check_logs (audit_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS azguard_check_logs`)
				return err
			},
		},
	)
}
