package service

import (
	"context"
	"fmt"
	"time"

	apperrors "tixbay/internal/errors"
	"tixbay/internal/logger"
	"tixbay/internal/metrics"
	"tixbay/internal/models"
	"tixbay/internal/repository"
)

// BookingService owns the reservation lifecycle. Inventory moves at
// reservation time: Create decrements the ticket's quantity, and the
// units come back only on reject or on pending expiry. Acceptance and
// payment never touch the quantity again.
type BookingService struct {
	bookingRepo repository.BookingRepository
	ticketRepo  repository.TicketRepository
	publisher   Publisher
}

func NewBookingService(bookingRepo repository.BookingRepository, ticketRepo repository.TicketRepository, publisher Publisher) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		ticketRepo:  ticketRepo,
		publisher:   publisher,
	}
}

// Create reserves quantity against an approved ticket and stores a
// pending booking carrying a snapshot of the ticket's terms. A buyer
// with an active booking for the same ticket gets that booking back
// instead of a second reservation.
func (s *BookingService) Create(ctx context.Context, buyerEmail string, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}

	ticket, err := s.ticketRepo.GetApprovedByID(ctx, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", req.TicketID, apperrors.ErrNotFound)
	}
	if ticket.SellerEmail == buyerEmail {
		return nil, fmt.Errorf("%w: cannot book own ticket", apperrors.ErrForbidden)
	}
	if !ticket.DepartureTime.After(time.Now()) {
		return nil, fmt.Errorf("ticket %s: %w", req.TicketID, apperrors.ErrExpired)
	}

	existing, err := s.bookingRepo.GetActiveByBuyerAndTicket(ctx, buyerEmail, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}
	if existing != nil {
		return &models.CreateBookingResponse{
			ID:       existing.ID,
			Status:   existing.Status,
			Existing: true,
		}, nil
	}

	if err := s.ticketRepo.Reserve(ctx, req.TicketID, req.Quantity); err != nil {
		if apperrors.Is(err, apperrors.ErrInsufficientInventory) {
			metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}

	booking := &models.Booking{
		TicketID:      ticket.ID,
		BuyerEmail:    buyerEmail,
		SellerEmail:   ticket.SellerEmail,
		TicketTitle:   ticket.Title,
		UnitPrice:     ticket.Price,
		Quantity:      req.Quantity,
		DepartureTime: ticket.DepartureTime,
		Status:        models.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// The reservation already went through; give the units back.
		if relErr := s.ticketRepo.Release(ctx, ticket.ID, req.Quantity); relErr != nil {
			logger.WithContext(ctx).Error("Failed to release reservation after booking insert failure",
				"error", relErr,
				"ticket_id", ticket.ID,
				"quantity", req.Quantity)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingsCreated.Inc()

	if s.publisher != nil {
		event := models.BookingCreatedEvent{
			BookingID:   booking.ID,
			TicketID:    booking.TicketID,
			BuyerEmail:  booking.BuyerEmail,
			SellerEmail: booking.SellerEmail,
			Quantity:    booking.Quantity,
			Timestamp:   time.Now(),
		}
		if err := s.publisher.Publish(models.EventBookingCreated, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish booking created event",
				"error", err,
				"booking_id", booking.ID,
				"event_type", models.EventBookingCreated)
		}
	}

	return &models.CreateBookingResponse{ID: booking.ID, Status: booking.Status}, nil
}

// Decide applies the seller's accept or reject to a pending booking.
// The transition is conditional on the booking still being pending, so
// a concurrent expiry or duplicate decision loses cleanly. Rejection
// returns the reserved units to the ticket.
func (s *BookingService) Decide(ctx context.Context, sellerEmail, bookingID string, accept bool) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}
	if booking.SellerEmail != sellerEmail {
		return nil, fmt.Errorf("booking %s belongs to another seller: %w", bookingID, apperrors.ErrForbidden)
	}

	next := models.BookingStatusRejected
	subject := models.EventBookingRejected
	if accept {
		next = models.BookingStatusAccepted
		subject = models.EventBookingAccepted
	}

	applied, err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusPending, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("booking %s is not pending: %w", bookingID, apperrors.ErrInvalidTransition)
	}
	booking.Status = next

	if !accept {
		if err := s.ticketRepo.Release(ctx, booking.TicketID, booking.Quantity); err != nil {
			logger.WithContext(ctx).Error("Failed to release inventory after rejection",
				"error", err,
				"booking_id", booking.ID,
				"ticket_id", booking.TicketID,
				"quantity", booking.Quantity)
		}
	}

	metrics.BookingsDecided.WithLabelValues(string(next)).Inc()

	if s.publisher != nil {
		event := models.BookingDecidedEvent{
			BookingID:   booking.ID,
			TicketID:    booking.TicketID,
			SellerEmail: booking.SellerEmail,
			Status:      next,
			Timestamp:   time.Now(),
		}
		if err := s.publisher.Publish(subject, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish booking decision event",
				"error", err,
				"booking_id", booking.ID,
				"event_type", subject)
		}
	}

	return booking, nil
}

// Get returns a booking to its buyer or seller.
func (s *BookingService) Get(ctx context.Context, email, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}
	if booking.BuyerEmail != email && booking.SellerEmail != email {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrForbidden)
	}
	return booking, nil
}

func (s *BookingService) ListForBuyer(ctx context.Context, buyerEmail string) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.ListByBuyer(ctx, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListForSeller returns the seller's incoming bookings, optionally
// filtered by status.
func (s *BookingService) ListForSeller(ctx context.Context, sellerEmail, statusFilter string) ([]models.Booking, error) {
	var status models.BookingStatus
	if statusFilter != "" {
		parsed, err := models.ParseBookingStatus(statusFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		status = parsed
	}

	bookings, err := s.bookingRepo.ListBySeller(ctx, sellerEmail, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller bookings: %w", err)
	}
	return bookings, nil
}

// ExpireStalePending moves pending bookings older than the cutoff to
// expired and returns their units. Accepted bookings are never expired
// here: once a seller has committed, only payment or rejection by the
// departure-time gate ends the hold.
func (s *BookingService) ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.bookingRepo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale bookings: %w", err)
	}

	expired := 0
	for _, booking := range stale {
		applied, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, models.BookingStatusPending, models.BookingStatusExpired)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to expire booking",
				"error", err,
				"booking_id", booking.ID)
			continue
		}
		if !applied {
			// Decided between the list and the update. Nothing to do.
			continue
		}

		if err := s.ticketRepo.Release(ctx, booking.TicketID, booking.Quantity); err != nil {
			logger.WithContext(ctx).Error("Failed to release inventory after expiry",
				"error", err,
				"booking_id", booking.ID,
				"ticket_id", booking.TicketID,
				"quantity", booking.Quantity)
		}

		expired++
		metrics.BookingsExpired.Inc()

		if s.publisher != nil {
			event := models.BookingExpiredEvent{
				BookingID: booking.ID,
				TicketID:  booking.TicketID,
				Quantity:  booking.Quantity,
				Reason:    "pending past ttl",
				Timestamp: time.Now(),
			}
			if err := s.publisher.Publish(models.EventBookingExpired, event); err != nil {
				logger.WithContext(ctx).Error("Failed to publish booking expired event",
					"error", err,
					"booking_id", booking.ID,
					"event_type", models.EventBookingExpired)
			}
		}
	}

	return expired, nil
}
