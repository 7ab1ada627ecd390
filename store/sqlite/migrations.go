package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Storefront store (SQLite).
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
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_storefront_items_status ON storefront_items (status);

CREATE TABLE IF NOT EXISTS storefront_garbage (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
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
    step                INTEGER PRIMARY KEY,
    unit_price_cents    INTEGER NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT 'usd',
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
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
    quantity              INTEGER NOT NULL DEFAULT 0,
    quoted_total_cents    INTEGER NOT NULL DEFAULT 0,
    quoted_total_currency TEXT NOT NULL DEFAULT 'usd',
    payment_method        TEXT NOT NULL DEFAULT '',
    coin                  TEXT NOT NULL DEFAULT '',
    network               TEXT NOT NULL DEFAULT '',
    txid                  TEXT NOT NULL DEFAULT '',
    status                TEXT NOT NULL DEFAULT 'pending',
    created_at            TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
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
    registered_at     TEXT NOT NULL DEFAULT (datetime('now')),
    level             INTEGER NOT NULL DEFAULT 0,
    purchases         TEXT NOT NULL DEFAULT '[]',
    replacements      TEXT NOT NULL DEFAULT '[]',
    service_purchases TEXT NOT NULL DEFAULT '[]',
    legit_checks      INTEGER NOT NULL DEFAULT 0
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
    quantity            INTEGER NOT NULL DEFAULT 0,
    unit_price_cents    INTEGER NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT 'usd',
    total_cents         INTEGER NOT NULL DEFAULT 0,
    total_currency      TEXT NOT NULL DEFAULT 'usd',
    payment_method      TEXT NOT NULL DEFAULT '',
    client_id           TEXT NOT NULL DEFAULT '',
    date                TEXT NOT NULL DEFAULT (datetime('now')),
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
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
