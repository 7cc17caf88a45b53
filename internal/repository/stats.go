package repository

import (
	"context"

	"tixbay/internal/database"
	"tixbay/internal/models"
)

type PostgresStatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// VendorOverview sums sold quantity over accepted+paid bookings and
// revenue over paid bookings only. By invariant the revenue figure
// equals the sum of Payment amounts for the same seller.
func (r *PostgresStatsRepository) VendorOverview(ctx context.Context, sellerEmail string) (*models.VendorOverviewResponse, error) {
	overview := &models.VendorOverviewResponse{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE seller_email = $1`, sellerEmail).
		Scan(&overview.TotalTicketsAdded)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(unit_price * quantity) FILTER (WHERE status = 'paid'), 0)
		FROM bookings
		WHERE seller_email = $1 AND status IN ('accepted', 'paid')`, sellerEmail).
		Scan(&overview.TotalTicketsSold, &overview.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return overview, nil
}

func (r *PostgresStatsRepository) PlatformStats(ctx context.Context) (*models.PlatformStatsResponse, error) {
	stats := &models.PlatformStatsResponse{
		TicketsByStatus:  make(map[models.TicketStatus]int64),
		BookingsByStatus: make(map[models.BookingStatus]int64),
		TicketsByType:    make(map[models.TransportType]int64),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status models.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.TicketsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status models.BookingStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.BookingsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM tickets GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var transportType models.TransportType
		var count int64
		if err := rows.Scan(&transportType, &count); err != nil {
			return nil, err
		}
		stats.TicketsByType[transportType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
