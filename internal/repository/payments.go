package repository

import (
	"context"
	"database/sql"
	"errors"

	"tixbay/internal/database"
	"tixbay/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresPaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

const paymentColumns = `id, transaction_id, session_id, booking_id, buyer_email, amount,
       ticket_title, created_at`

// InsertUnique is the uniqueness-enforcing insert that makes payment
// recording exactly-once. ON CONFLICT on the transaction id swallows the
// common duplicate; a 23505 from the booking_id unique covers the rarer
// case of two different transaction ids confirming the same booking.
func (r *PostgresPaymentRepository) InsertUnique(ctx context.Context, payment *models.Payment) (bool, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	query := `
		INSERT INTO payments (id, transaction_id, session_id, booking_id, buyer_email, amount, ticket_title)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		payment.ID,
		payment.TransactionID,
		payment.SessionID,
		payment.BookingID,
		payment.BuyerEmail,
		payment.Amount,
		payment.TicketTitle,
	).Scan(&payment.CreatedAt)

	if err == sql.ErrNoRows {
		// Conflict on transaction_id: a concurrent confirmation won.
		return false, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Unique violation on booking_id.
		return false, nil
	}

	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.SessionID,
		&payment.BookingID,
		&payment.BuyerEmail,
		&payment.Amount,
		&payment.TicketTitle,
		&payment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PostgresPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.SessionID,
		&payment.BookingID,
		&payment.BuyerEmail,
		&payment.Amount,
		&payment.TicketTitle,
		&payment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PostgresPaymentRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE buyer_email = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, buyerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.TransactionID,
			&payment.SessionID,
			&payment.BookingID,
			&payment.BuyerEmail,
			&payment.Amount,
			&payment.TicketTitle,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
