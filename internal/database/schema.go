package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements are applied in order on startup. Each statement is
// idempotent so repeated boots against the same database are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS bus_routes (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		departure_location TEXT NOT NULL,
		destination TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS buses (
		id UUID PRIMARY KEY,
		bus_number TEXT NOT NULL UNIQUE,
		route_id UUID NOT NULL REFERENCES bus_routes(id),
		driver_id UUID,
		bus_type TEXT NOT NULL DEFAULT '28-seat',
		total_seats INTEGER NOT NULL DEFAULT 28 CHECK (total_seats > 0),
		departure_time TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		bus_id UUID NOT NULL REFERENCES buses(id),
		seat_number TEXT NOT NULL,
		reservation_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed'
			CHECK (status IN ('confirmed', 'cancelled', 'completed')),
		cancelled_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Invariant guard: at most one confirmed reservation per seat per bus
	// per date. Cancelled history rows for the same key are allowed.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_confirmed_seat
		ON reservations (bus_id, reservation_date, seat_number)
		WHERE status = 'confirmed'`,

	// Lookup index behind the occupied-seat snapshot.
	`CREATE INDEX IF NOT EXISTS idx_reservations_bus_date_status
		ON reservations (bus_id, reservation_date, status)`,

	`CREATE INDEX IF NOT EXISTS idx_reservations_user
		ON reservations (user_id)`,

	`CREATE TABLE IF NOT EXISTS reservation_audit_logs (
		id UUID PRIMARY KEY,
		actor_id UUID,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id UUID,
		ip_address TEXT,
		user_agent TEXT,
		details JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// ConfirmedSeatConstraint is the name of the partial unique index that
// enforces single ownership of a confirmed seat. Insert failures against it
// are translated into seat conflicts by the reservation repository.
const ConfirmedSeatConstraint = "uq_reservations_confirmed_seat"

// EnsureSchema creates the tables and indexes the service depends on
func EnsureSchema(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
