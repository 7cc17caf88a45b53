package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createTicketsTable,
		createBookingsTable,
		createPaymentsTable,
		createBookingIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    email VARCHAR(255) PRIMARY KEY,
    name VARCHAR(255) NOT NULL DEFAULT '',
    photo_url TEXT,
    role VARCHAR(20) NOT NULL DEFAULT 'customer',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (role IN ('customer', 'vendor', 'admin', 'fraud'))
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    seller_email VARCHAR(255) NOT NULL REFERENCES users(email),
    title VARCHAR(500) NOT NULL,
    description TEXT,
    type VARCHAR(20) NOT NULL,
    origin VARCHAR(255) NOT NULL,
    destination VARCHAR(255) NOT NULL,
    image_url TEXT,
    price BIGINT NOT NULL,
    quantity INTEGER NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    advertised BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (price >= 0),
    CHECK (quantity >= 0),
    CHECK (type IN ('bus', 'train', 'plane')),
    CHECK (status IN ('pending', 'approved', 'rejected', 'hidden'))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    ticket_id UUID NOT NULL REFERENCES tickets(id),
    buyer_email VARCHAR(255) NOT NULL,
    seller_email VARCHAR(255) NOT NULL,
    ticket_title VARCHAR(500) NOT NULL,
    unit_price BIGINT NOT NULL,
    quantity INTEGER NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (quantity > 0),
    CHECK (status IN ('pending', 'accepted', 'rejected', 'paid', 'expired'))
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    transaction_id VARCHAR(255) NOT NULL UNIQUE,
    session_id VARCHAR(255) NOT NULL,
    booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id),
    buyer_email VARCHAR(255) NOT NULL,
    amount BIGINT NOT NULL,
    ticket_title VARCHAR(500) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createBookingIndexes = `
CREATE INDEX IF NOT EXISTS bookings_buyer_idx ON bookings (buyer_email, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_seller_status_idx ON bookings (seller_email, status, created_at DESC);
CREATE INDEX IF NOT EXISTS tickets_seller_idx ON tickets (seller_email);
CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets (status);
CREATE INDEX IF NOT EXISTS payments_buyer_idx ON payments (buyer_email, created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_buyer_ticket_idx
    ON bookings (buyer_email, ticket_id)
    WHERE status IN ('pending', 'accepted');`
