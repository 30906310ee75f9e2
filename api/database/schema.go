package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at startup. The provider stays the system of
// record for subscription state; this table only maps a platform to its
// provider customer and most recent subscription.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS billing_account (
		platform_id            TEXT PRIMARY KEY,
		stripe_customer_id     TEXT NOT NULL DEFAULT '',
		stripe_subscription_id TEXT NOT NULL DEFAULT '',
		email                  TEXT NOT NULL DEFAULT '',
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS billing_account_customer_idx ON billing_account (stripe_customer_id)`,
}

// Migrate creates the tables this service owns.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
