package repository

import (
	"context"
	"time"

	"tixbay/internal/database"
	"tixbay/internal/models"
)

// TicketRepository is the inventory store contract. Reserve and Release
// are the only ways a ticket's quantity changes; both are single
// conditional statements so concurrent callers cannot oversell.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	GetApprovedByID(ctx context.Context, id string) (*models.Ticket, error)
	ListApproved(ctx context.Context, page, pageSize int) ([]models.Ticket, error)
	SearchApproved(ctx context.Context, query string, page, pageSize int) ([]models.Ticket, error)
	ListAdvertised(ctx context.Context, limit int) ([]models.Ticket, error)
	ListBySeller(ctx context.Context, sellerEmail string) ([]models.Ticket, error)
	ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error)
	Update(ctx context.Context, id string, upd *models.UpdateTicketRequest) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status models.TicketStatus) error
	SetAdvertised(ctx context.Context, id string, advertised bool) error
	HideAllBySeller(ctx context.Context, sellerEmail string) (int64, error)

	// Reserve atomically checks quantity >= qty and decrements it.
	// Returns ErrNotFound or ErrInsufficientInventory on failure.
	Reserve(ctx context.Context, id string, qty int) error
	// Release returns qty to the pool. Not idempotent: callers must key
	// it off a state transition that can happen at most once.
	Release(ctx context.Context, id string, qty int) error
}

// BookingRepository persists bookings. Status changes go through
// UpdateStatus, which is conditional on the current status.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetActiveByBuyerAndTicket(ctx context.Context, buyerEmail, ticketID string) (*models.Booking, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Booking, error)
	ListBySeller(ctx context.Context, sellerEmail string, status models.BookingStatus) ([]models.Booking, error)
	ListStalePending(ctx context.Context, createdBefore time.Time) ([]models.Booking, error)

	// UpdateStatus sets the booking to next only if it is currently in
	// expected; reports whether the transition was applied.
	UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus) (bool, error)
}

// PaymentRepository records payments exactly once per external
// transaction id.
type PaymentRepository interface {
	// InsertUnique stores the payment unless a record for its
	// transaction id (or booking id) already exists; reports whether a
	// row was inserted.
	InsertUnique(ctx context.Context, payment *models.Payment) (bool, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Payment, error)
}

// UserRepository stores accounts and roles.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, email string, role models.Role) error
}

// StatsRepository computes read-only rollups.
type StatsRepository interface {
	VendorOverview(ctx context.Context, sellerEmail string) (*models.VendorOverviewResponse, error)
	PlatformStats(ctx context.Context) (*models.PlatformStatsResponse, error)
}

type Repositories struct {
	Tickets  TicketRepository
	Bookings BookingRepository
	Payments PaymentRepository
	Users    UserRepository
	Stats    StatsRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Tickets:  NewTicketRepository(db),
		Bookings: NewBookingRepository(db),
		Payments: NewPaymentRepository(db),
		Users:    NewUserRepository(db),
		Stats:    NewStatsRepository(db),
	}
}
