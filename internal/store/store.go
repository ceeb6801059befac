// Package store persists the raw revenue matrix and computed report
// snapshots in PostgreSQL. Raw cell values are stored as text exactly as
// ingested; normalization stays the engine's job.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is created on startup; idempotent
const schema = `
CREATE SCHEMA IF NOT EXISTS revenue;

CREATE TABLE IF NOT EXISTS revenue.customers (
	name       TEXT PRIMARY KEY,
	start_date TEXT NOT NULL DEFAULT '',
	end_date   TEXT NOT NULL DEFAULT '',
	position   INT  NOT NULL
);

CREATE TABLE IF NOT EXISTS revenue.monthly_revenue (
	customer_name TEXT NOT NULL REFERENCES revenue.customers(name) ON DELETE CASCADE,
	month         TEXT NOT NULL,
	raw_value     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (customer_name, month)
);

CREATE TABLE IF NOT EXISTS revenue.report_snapshots (
	id           BIGSERIAL PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	report       JSONB NOT NULL
);
`

// Init creates the schema if it does not exist
func Init(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create revenue schema: %w", err)
	}
	return nil
}
