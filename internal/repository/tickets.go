package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tixbay/internal/database"
	apperrors "tixbay/internal/errors"
	"tixbay/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresTicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *PostgresTicketRepository {
	return &PostgresTicketRepository{db: db}
}

const ticketColumns = `id, seller_email, title, description, type, origin, destination,
       image_url, price, quantity, departure_time, status, advertised, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.SellerEmail,
		&ticket.Title,
		&ticket.Description,
		&ticket.Type,
		&ticket.Origin,
		&ticket.Destination,
		&ticket.ImageURL,
		&ticket.Price,
		&ticket.Quantity,
		&ticket.DepartureTime,
		&ticket.Status,
		&ticket.Advertised,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}

	query := `
		INSERT INTO tickets (id, seller_email, title, description, type, origin, destination,
		                     image_url, price, quantity, departure_time, status, advertised)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		ticket.ID,
		ticket.SellerEmail,
		ticket.Title,
		ticket.Description,
		ticket.Type,
		ticket.Origin,
		ticket.Destination,
		ticket.ImageURL,
		ticket.Price,
		ticket.Quantity,
		ticket.DepartureTime,
		ticket.Status,
		ticket.Advertised,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

func (r *PostgresTicketRepository) GetApprovedByID(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 AND status = 'approved'`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

func (r *PostgresTicketRepository) ListApproved(ctx context.Context, page, pageSize int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'approved'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}

	return r.queryTickets(ctx, query, pageSize, offset)
}

func (r *PostgresTicketRepository) ListAdvertised(ctx context.Context, limit int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'approved' AND advertised = TRUE
		ORDER BY created_at DESC
		LIMIT $1`

	return r.queryTickets(ctx, query, limit)
}

// SearchApproved is the SQL fallback used when the search index is
// disabled. ILIKE over the text columns is good enough for small
// catalogs; the index handles relevance ranking when it is on.
func (r *PostgresTicketRepository) SearchApproved(ctx context.Context, query string, page, pageSize int) ([]models.Ticket, error) {
	sqlQuery := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'approved'
		  AND (title ILIKE $1 OR description ILIKE $1 OR origin ILIKE $1 OR destination ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}

	return r.queryTickets(ctx, sqlQuery, "%"+query+"%", pageSize, offset)
}

func (r *PostgresTicketRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE seller_email = $1
		ORDER BY created_at DESC`

	return r.queryTickets(ctx, query, sellerEmail)
}

func (r *PostgresTicketRepository) ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = $1
		ORDER BY created_at DESC`

	return r.queryTickets(ctx, query, status)
}

func (r *PostgresTicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

// Update touches only owner-editable fields. Quantity and status are
// deliberately excluded: quantity changes go through Reserve/Release,
// status through SetStatus.
func (r *PostgresTicketRepository) Update(ctx context.Context, id string, upd *models.UpdateTicketRequest) error {
	query := `
		UPDATE tickets
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    origin = COALESCE($4, origin),
		    destination = COALESCE($5, destination),
		    image_url = COALESCE($6, image_url),
		    price = COALESCE($7, price),
		    departure_time = COALESCE($8, departure_time),
		    updated_at = NOW()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		id, upd.Title, upd.Description, upd.Origin, upd.Destination,
		upd.ImageURL, upd.Price, upd.DepartureTime)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTicketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		// Foreign key violation: the ticket already has bookings.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("ticket %s has bookings: %w", id, apperrors.ErrInvalidTransition)
		}
		return err
	}
	return requireRow(res)
}

func (r *PostgresTicketRepository) SetStatus(ctx context.Context, id string, status models.TicketStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTicketRepository) SetAdvertised(ctx context.Context, id string, advertised bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET advertised = $2, updated_at = NOW() WHERE id = $1 AND status = 'approved'`,
		id, advertised)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresTicketRepository) HideAllBySeller(ctx context.Context, sellerEmail string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = 'hidden', updated_at = NOW() WHERE seller_email = $1`, sellerEmail)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Reserve is the single conditional write that guards against
// overselling: the quantity check and decrement happen in one
// statement, so two concurrent reservations cannot both pass the check.
func (r *PostgresTicketRepository) Reserve(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET quantity = quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND quantity >= $2`, id, qty)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Distinguish a missing ticket from insufficient inventory.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("ticket %s: %w", id, apperrors.ErrInsufficientInventory)
}

func (r *PostgresTicketRepository) Release(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
