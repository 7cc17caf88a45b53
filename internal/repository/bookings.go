package repository

import (
	"context"
	"database/sql"
	"time"

	"tixbay/internal/database"
	"tixbay/internal/models"

	"github.com/google/uuid"
)

type PostgresBookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

const bookingColumns = `id, ticket_id, buyer_email, seller_email, ticket_title, unit_price,
       quantity, departure_time, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.TicketID,
		&booking.BuyerEmail,
		&booking.SellerEmail,
		&booking.TicketTitle,
		&booking.UnitPrice,
		&booking.Quantity,
		&booking.DepartureTime,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PostgresBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	query := `
		INSERT INTO bookings (id, ticket_id, buyer_email, seller_email, ticket_title,
		                      unit_price, quantity, departure_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		booking.ID,
		booking.TicketID,
		booking.BuyerEmail,
		booking.SellerEmail,
		booking.TicketTitle,
		booking.UnitPrice,
		booking.Quantity,
		booking.DepartureTime,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// GetActiveByBuyerAndTicket returns the buyer's pending or accepted
// booking for a ticket, if any. Backed by a partial unique index, so
// there can be at most one.
func (r *PostgresBookingRepository) GetActiveByBuyerAndTicket(ctx context.Context, buyerEmail, ticketID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE buyer_email = $1 AND ticket_id = $2 AND status IN ('pending', 'accepted')`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, buyerEmail, ticketID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *PostgresBookingRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE buyer_email = $1
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, buyerEmail)
}

// ListBySeller returns the seller's incoming bookings, optionally
// filtered to one status. An empty status means all.
func (r *PostgresBookingRepository) ListBySeller(ctx context.Context, sellerEmail string, status models.BookingStatus) ([]models.Booking, error) {
	if status == "" {
		query := `SELECT ` + bookingColumns + `
			FROM bookings
			WHERE seller_email = $1
			ORDER BY created_at DESC`
		return r.queryBookings(ctx, query, sellerEmail)
	}

	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE seller_email = $1 AND status = $2
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, sellerEmail, status)
}

// ListStalePending returns pending bookings created before the cutoff,
// used by the expiration job.
func (r *PostgresBookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC`

	return r.queryBookings(ctx, query, createdBefore)
}

func (r *PostgresBookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// UpdateStatus applies the transition only if the booking is currently
// in the expected state. The condition and the write are one statement,
// so a racing duplicate transition loses cleanly instead of
// double-applying.
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, expected, next)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
