package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the dispatch DDL. The partial unique index on assignments is
// load-bearing: it enforces at most one non-cancelled assignment per order
// even if two dispatches race past the in-transaction guard.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		lat        DOUBLE PRECISION,
		lng        DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            TEXT PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		status        TEXT NOT NULL DEFAULT 'pending',
		delivery_lat  DOUBLE PRECISION,
		delivery_lng  DOUBLE PRECISION,
		total         DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS couriers (
		id               BIGSERIAL PRIMARY KEY,
		name             TEXT NOT NULL,
		phone            TEXT NOT NULL UNIQUE,
		active           BOOLEAN NOT NULL DEFAULT true,
		available        BOOLEAN NOT NULL DEFAULT false,
		status           TEXT NOT NULL DEFAULT 'offline',
		lat              DOUBLE PRECISION,
		lng              DOUBLE PRECISION,
		location_at      TIMESTAMPTZ,
		vehicle          TEXT NOT NULL DEFAULT 'on_foot',
		rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id            BIGSERIAL PRIMARY KEY,
		order_id      TEXT NOT NULL REFERENCES orders(id),
		courier_id    BIGINT NOT NULL REFERENCES couriers(id),
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		status        TEXT NOT NULL DEFAULT 'assigned',
		fee           DOUBLE PRECISION NOT NULL DEFAULT 0,
		distance_km   DOUBLE PRECISION NOT NULL DEFAULT 0,
		estimated_at  TIMESTAMPTZ,
		accepted_at   TIMESTAMPTZ,
		picked_up_at  TIMESTAMPTZ,
		delivered_at  TIMESTAMPTZ,
		cancelled_at  TIMESTAMPTZ,
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS assignments_active_order_uq
		ON assignments (order_id) WHERE status <> 'cancelled'`,
	`CREATE INDEX IF NOT EXISTS assignments_courier_idx
		ON assignments (courier_id, created_at DESC)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
