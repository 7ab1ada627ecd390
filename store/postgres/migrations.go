package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Storefront store.
var Migrations = migrate.NewGroup("storefront")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_storefront_items",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_items (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL DEFAULT 'available',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_items_status ON storefront_items (status);

CREATE TABLE IF NOT EXISTS storefront_garbage (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_items; DROP TABLE IF EXISTS storefront_garbage`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_price_tiers",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_price_tiers (
    step                INT PRIMARY KEY,
    unit_price_cents    BIGINT NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT 'usd',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_price_tiers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_sessions",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_sessions (
    id                    TEXT PRIMARY KEY,
    client_id             TEXT NOT NULL DEFAULT '',
    quantity              INT NOT NULL DEFAULT 0,
    quoted_total_cents    BIGINT NOT NULL DEFAULT 0,
    quoted_total_currency TEXT NOT NULL DEFAULT 'usd',
    payment_method        TEXT NOT NULL DEFAULT '',
    coin                  TEXT NOT NULL DEFAULT '',
    network               TEXT NOT NULL DEFAULT '',
    txid                  TEXT NOT NULL DEFAULT '',
    status                TEXT NOT NULL DEFAULT 'pending',
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_sessions_pending ON storefront_sessions (client_id) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_storefront_sessions_status ON storefront_sessions (status, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_sessions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_clients",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_clients (
    id                TEXT PRIMARY KEY,
    registered_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    level             INT NOT NULL DEFAULT 0,
    purchases         JSONB NOT NULL DEFAULT '[]',
    replacements      JSONB NOT NULL DEFAULT '[]',
    service_purchases JSONB NOT NULL DEFAULT '[]',
    legit_checks      INT NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_clients`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_finance",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_finance (
    id                  TEXT PRIMARY KEY,
    type                TEXT NOT NULL DEFAULT '',
    product             TEXT NOT NULL DEFAULT '',
    quantity            INT NOT NULL DEFAULT 0,
    unit_price_cents    BIGINT NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT 'usd',
    total_cents         BIGINT NOT NULL DEFAULT 0,
    total_currency      TEXT NOT NULL DEFAULT 'usd',
    payment_method      TEXT NOT NULL DEFAULT '',
    client_id           TEXT NOT NULL DEFAULT '',
    date                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_finance_date ON storefront_finance (date);
CREATE INDEX IF NOT EXISTS idx_storefront_finance_client ON storefront_finance (client_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_finance`)
				return err
			},
		},
	)
}
