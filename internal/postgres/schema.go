package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_date <= end_date)
);

CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings(room_id, start_date);

CREATE TABLE IF NOT EXISTS booking_audit (
	event_id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	booking_id TEXT NOT NULL,
	producer TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_booking_audit_booking ON booking_audit(booking_id, occurred_at);
`

// Migrate creates the tables if they do not exist yet. Safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
