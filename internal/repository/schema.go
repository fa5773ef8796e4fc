package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. The exclusion constraint on hotel_bookings is a
// storage-level backstop for the room lock: no two live bookings of one room
// may cover the same night.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS hotels (
		id    BIGSERIAL PRIMARY KEY,
		name  TEXT NOT NULL,
		city  TEXT NOT NULL,
		stars INT NOT NULL DEFAULT 3 CHECK (stars BETWEEN 1 AND 5)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id                    BIGSERIAL PRIMARY KEY,
		hotel_id              BIGINT NOT NULL REFERENCES hotels (id) ON DELETE CASCADE,
		room_number           TEXT NOT NULL,
		room_type             TEXT NOT NULL DEFAULT 'standard',
		price_per_night_cents BIGINT NOT NULL CHECK (price_per_night_cents > 0),
		capacity              INT NOT NULL CHECK (capacity >= 1),
		UNIQUE (hotel_id, room_number)
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id               BIGSERIAL PRIMARY KEY,
		flight_number    TEXT NOT NULL,
		airline          TEXT NOT NULL,
		departure_city   TEXT NOT NULL,
		arrival_city     TEXT NOT NULL,
		departure_time   TIMESTAMPTZ NOT NULL,
		duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
		total_seats      INT NOT NULL CHECK (total_seats > 0),
		price_cents      BIGINT NOT NULL CHECK (price_cents > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_departure ON flights (lower(departure_city), departure_time)`,
	`CREATE TABLE IF NOT EXISTS hotel_bookings (
		id                BIGSERIAL PRIMARY KEY,
		room_id           BIGINT NOT NULL REFERENCES rooms (id),
		user_id           BIGINT NOT NULL,
		check_in          DATE NOT NULL,
		check_out         DATE NOT NULL,
		guest_count       INT NOT NULL CHECK (guest_count >= 1),
		total_price_cents BIGINT NOT NULL CHECK (total_price_cents >= 0),
		status            TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (check_in < check_out),
		CONSTRAINT hotel_bookings_no_overlap EXCLUDE USING gist (
			room_id WITH =,
			daterange(check_in, check_out, '[)') WITH &&
		) WHERE (status <> 'cancelled')
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hotel_bookings_user ON hotel_bookings (user_id, id DESC)`,
	`CREATE TABLE IF NOT EXISTS flight_bookings (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT NOT NULL,
		passenger_count   INT NOT NULL CHECK (passenger_count >= 1),
		total_price_cents BIGINT NOT NULL CHECK (total_price_cents >= 0),
		status            TEXT NOT NULL,
		reference         TEXT UNIQUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS flight_booking_segments (
		booking_id BIGINT NOT NULL REFERENCES flight_bookings (id),
		position   INT NOT NULL,
		flight_id  BIGINT NOT NULL REFERENCES flights (id),
		PRIMARY KEY (booking_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flight_booking_segments_flight ON flight_booking_segments (flight_id)`,
}

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

// where accumulates positional SQL conditions.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders.
func (w *where) page(offset, limit int) string {
	s := ""
	if limit > 0 {
		w.args = append(w.args, limit)
		s += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	if offset > 0 {
		w.args = append(w.args, offset)
		s += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}
	return s
}
