package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Steward store (PostgreSQL).
var Migrations = migrate.NewGroup("steward")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_properties",
			Version: "20250301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_properties (
    id              TEXT PRIMARY KEY,
    org_id          TEXT NOT NULL,
    name            TEXT NOT NULL,
    address         TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_properties_org ON steward_properties (org_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_properties`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_units",
			Version: "20250301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_units (
    id              TEXT PRIMARY KEY,
    property_id     TEXT NOT NULL REFERENCES steward_properties(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_units_property ON steward_units (property_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_units`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_assets",
			Version: "20250301000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_assets (
    id              TEXT PRIMARY KEY,
    unit_id         TEXT REFERENCES steward_units(id) ON DELETE CASCADE,
    property_id     TEXT REFERENCES steward_properties(id) ON DELETE CASCADE,
    name            TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    CHECK ((unit_id IS NULL) <> (property_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_steward_assets_unit ON steward_assets (unit_id);
CREATE INDEX IF NOT EXISTS idx_steward_assets_property ON steward_assets (property_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_assets`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_memberships",
			Version: "20250301000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_memberships (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    principal_id    TEXT NOT NULL DEFAULT '',
    template_id     TEXT,
    invite_email    TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_mbr_tenant ON steward_memberships (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_mbr_principal ON steward_memberships (principal_id) WHERE principal_id <> '';
CREATE INDEX IF NOT EXISTS idx_steward_mbr_template ON steward_memberships (template_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_memberships`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_scope_bindings",
			Version: "20250301000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_scope_bindings (
    id              TEXT PRIMARY KEY,
    membership_id   TEXT NOT NULL REFERENCES steward_memberships(id) ON DELETE CASCADE,
    scope_type      TEXT NOT NULL,
    scope_id        TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(membership_id, scope_type, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_steward_bind_membership ON steward_scope_bindings (membership_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_scope_bindings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_policies",
			Version: "20250301000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_policies (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    permissions     JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, name)
);

CREATE INDEX IF NOT EXISTS idx_steward_policies_tenant ON steward_policies (tenant_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20250301000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_assignments (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    membership_id   TEXT NOT NULL REFERENCES steward_memberships(id) ON DELETE CASCADE,
    scope_type      TEXT NOT NULL,
    resource_id     TEXT NOT NULL,
    policy_id       TEXT REFERENCES steward_policies(id),
    overrides       JSONB,
    granted_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    CHECK (policy_id IS NOT NULL OR overrides IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_steward_asgn_tenant ON steward_assignments (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_asgn_membership ON steward_assignments (membership_id);
CREATE INDEX IF NOT EXISTS idx_steward_asgn_policy ON steward_assignments (policy_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_assignments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_templates",
			Version: "20250301000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_templates (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(tenant_id, name)
);

CREATE TABLE IF NOT EXISTS steward_template_items (
    id              TEXT PRIMARY KEY,
    template_id     TEXT NOT NULL REFERENCES steward_templates(id) ON DELETE CASCADE,
    scope_type      TEXT NOT NULL,
    permissions     JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_steward_tmpl_tenant ON steward_templates (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_titm_template ON steward_template_items (template_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS steward_template_items;
DROP TABLE IF EXISTS steward_templates;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20250301000009",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_decision_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    principal_id    TEXT NOT NULL,
    action          TEXT NOT NULL,
    domain          TEXT NOT NULL,
    scope_type      TEXT NOT NULL,
    resource_id     TEXT NOT NULL,
    allowed         BOOLEAN NOT NULL,
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_dlogs_tenant ON steward_decision_logs (tenant_id);
CREATE INDEX IF NOT EXISTS idx_steward_dlogs_principal ON steward_decision_logs (tenant_id, principal_id);
CREATE INDEX IF NOT EXISTS idx_steward_dlogs_created ON steward_decision_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_decision_logs`)
				return err
			},
		},
	)
}
