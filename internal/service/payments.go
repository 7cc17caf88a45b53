package service

import (
	"context"
	"fmt"
	"time"

	apperrors "tixbay/internal/errors"
	"tixbay/internal/external"
	"tixbay/internal/logger"
	"tixbay/internal/metrics"
	"tixbay/internal/models"
	"tixbay/internal/repository"

	"github.com/google/uuid"
)

// PaymentService drives hosted checkout and the idempotent confirmation
// path. The confirmation callback is delivered at least once; the
// unique transaction id constraint is what makes the payment record
// exactly-once no matter how many deliveries race.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	gateway     CheckoutGateway
	publisher   Publisher
	clientURL   string
}

func NewPaymentService(paymentRepo repository.PaymentRepository, bookingRepo repository.BookingRepository, gateway CheckoutGateway, publisher Publisher, clientURL string) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		gateway:     gateway,
		publisher:   publisher,
		clientURL:   clientURL,
	}
}

// StartCheckout opens a hosted checkout session for an accepted
// booking. Each call opens a fresh session; only confirmation is
// idempotent. Bookings whose departure has passed cannot be paid.
func (s *PaymentService) StartCheckout(ctx context.Context, buyerEmail, bookingID string) (*models.StartCheckoutResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}
	if booking.BuyerEmail != buyerEmail {
		return nil, fmt.Errorf("booking %s belongs to another buyer: %w", bookingID, apperrors.ErrForbidden)
	}
	if booking.Status != models.BookingStatusAccepted {
		return nil, fmt.Errorf("booking %s is %s, not accepted: %w", bookingID, booking.Status, apperrors.ErrInvalidTransition)
	}
	if !booking.DepartureTime.After(time.Now()) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrExpired)
	}

	session, err := s.gateway.CreateSession(ctx, external.CreateSessionParams{
		Title:         booking.TicketTitle,
		UnitAmount:    booking.UnitPrice,
		Quantity:      booking.Quantity,
		CustomerEmail: booking.BuyerEmail,
		BookingID:     booking.ID,
		SuccessURL:    s.clientURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.clientURL + "/my-bookings",
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckoutSessionsStarted.Inc()

	return &models.StartCheckoutResponse{URL: session.URL}, nil
}

// ConfirmPayment records a completed checkout exactly once. It is the
// gateway success callback, so there is no caller identity to check;
// the session is re-read from the gateway, never trusted from the
// request.
//
// Two fast paths skip work on retries (the recorded transaction and
// the already-paid booking); the unique insert is the guarantee. When
// the insert wins, the booking moves accepted -> paid; losing that
// transition race just means a retry already did it.
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*models.Payment, error) {
	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != external.SessionStatusComplete {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, session.Status, apperrors.ErrInvalidTransition)
	}
	if session.TransactionID == "" {
		return nil, fmt.Errorf("%w: session %s has no transaction id", apperrors.ErrGateway, sessionID)
	}

	// Retry fast path: this transaction was already recorded.
	if existing, err := s.paymentRepo.GetByTransactionID(ctx, session.TransactionID); err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	} else if existing != nil {
		metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
		return existing, nil
	}

	bookingID := session.Metadata["bookingId"]
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, apperrors.ErrNotFound)
	}

	// Booking-side fast path: already paid, possibly through a
	// different session. The recorded payment is the answer either way.
	if booking.Status == models.BookingStatusPaid {
		return s.recordedPayment(ctx, booking.ID)
	}

	payment := &models.Payment{
		ID:            uuid.New().String(),
		TransactionID: session.TransactionID,
		SessionID:     sessionID,
		BookingID:     booking.ID,
		BuyerEmail:    booking.BuyerEmail,
		Amount:        session.AmountTotal,
		TicketTitle:   booking.TicketTitle,
	}

	inserted, err := s.paymentRepo.InsertUnique(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if !inserted {
		// A concurrent delivery won the insert; return its record.
		existing, err := s.paymentRepo.GetByTransactionID(ctx, session.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up payment: %w", err)
		}
		if existing == nil {
			// The booking unique fired instead: a different transaction
			// already paid this booking. Still a duplicate, not a failure.
			return s.recordedPayment(ctx, booking.ID)
		}
		metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
		return existing, nil
	}

	applied, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, models.BookingStatusAccepted, models.BookingStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if !applied {
		// Already paid by an earlier delivery. The payment record is the
		// source of truth, so this is success, not conflict.
		logger.WithContext(ctx).Info("Booking already marked paid",
			"booking_id", booking.ID,
			"transaction_id", session.TransactionID)
	}

	metrics.PaymentsRecorded.WithLabelValues("recorded").Inc()

	if s.publisher != nil {
		event := models.PaymentCompletedEvent{
			PaymentID:     payment.ID,
			TransactionID: payment.TransactionID,
			BookingID:     payment.BookingID,
			Amount:        payment.Amount,
			Timestamp:     time.Now(),
		}
		if err := s.publisher.Publish(models.EventPaymentCompleted, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish payment completed event",
				"error", err,
				"payment_id", payment.ID,
				"event_type", models.EventPaymentCompleted)
		}
	}

	return payment, nil
}

// recordedPayment resolves a duplicate confirmation of an already-paid
// booking to the payment that paid it.
func (s *PaymentService) recordedPayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	existing, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("booking %s is paid but has no payment record: %w", bookingID, apperrors.ErrNotFound)
	}
	metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
	return existing, nil
}

// ListTransactions returns the buyer's payment history.
func (s *PaymentService) ListTransactions(ctx context.Context, buyerEmail string) ([]models.Payment, error) {
	payments, err := s.paymentRepo.ListByBuyer(ctx, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
