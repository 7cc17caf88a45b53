package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "tixbay/internal/errors"
	"tixbay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture(t *testing.T, quantity int) (*BookingService, *fakeTicketRepo, *fakeBookingRepo, *fakePublisher, string) {
	t.Helper()

	ticketRepo := newFakeTicketRepo()
	bookingRepo := newFakeBookingRepo()
	publisher := &fakePublisher{}

	ticket := &models.Ticket{
		SellerEmail:   "seller@example.com",
		Title:         "Train Astana - Almaty",
		Type:          models.TransportTrain,
		Origin:        "Astana",
		Destination:   "Almaty",
		Price:         12000,
		Quantity:      quantity,
		DepartureTime: time.Now().Add(48 * time.Hour),
		Status:        models.TicketStatusApproved,
	}
	require.NoError(t, ticketRepo.Create(context.Background(), ticket))

	svc := NewBookingService(bookingRepo, ticketRepo, publisher)
	return svc, ticketRepo, bookingRepo, publisher, ticket.ID
}

func TestCreateBookingReservesInventory(t *testing.T) {
	svc, ticketRepo, _, publisher, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, models.BookingStatusPending, resp.Status)
	assert.False(t, resp.Existing)

	assert.Equal(t, 7, ticketRepo.quantity(ticketID))
	assert.Contains(t, publisher.subjects(), models.EventBookingCreated)
}

func TestCreateBookingInsufficientInventory(t *testing.T) {
	svc, ticketRepo, _, _, ticketID := newBookingFixture(t, 2)

	_, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 5,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientInventory))
	assert.Equal(t, 2, ticketRepo.quantity(ticketID))
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _, _, ticketID := newBookingFixture(t, 5)

	_, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 0,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: "missing-id",
		Quantity: 1,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCreateBookingOwnTicketForbidden(t *testing.T) {
	svc, _, _, _, ticketID := newBookingFixture(t, 5)

	_, err := svc.Create(context.Background(), "seller@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 1,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCreateBookingReturnsExistingActive(t *testing.T) {
	svc, ticketRepo, _, _, ticketID := newBookingFixture(t, 10)

	first, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 2,
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 4,
	})
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.ID, second.ID)

	// No second reservation was taken.
	assert.Equal(t, 8, ticketRepo.quantity(ticketID))
}

func TestCreateBookingExpiredDeparture(t *testing.T) {
	ticketRepo := newFakeTicketRepo()
	bookingRepo := newFakeBookingRepo()

	ticket := &models.Ticket{
		SellerEmail:   "seller@example.com",
		Title:         "Bus Taraz - Shymkent",
		Type:          models.TransportBus,
		Origin:        "Taraz",
		Destination:   "Shymkent",
		Price:         3000,
		Quantity:      5,
		DepartureTime: time.Now().Add(-time.Hour),
		Status:        models.TicketStatusApproved,
	}
	require.NoError(t, ticketRepo.Create(context.Background(), ticket))

	svc := NewBookingService(bookingRepo, ticketRepo, &fakePublisher{})

	_, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticket.ID,
		Quantity: 1,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrExpired))
}

// Concurrent reservations must never push inventory negative: with 10
// units and 20 buyers wanting 1 each, exactly 10 succeed.
func TestCreateBookingConcurrentNoOversell(t *testing.T) {
	svc, ticketRepo, _, _, ticketID := newBookingFixture(t, 10)

	const buyers = 20
	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			email := fmt.Sprintf("buyer%d@example.com", n)
			_, err := svc.Create(context.Background(), email, &models.CreateBookingRequest{
				TicketID: ticketID,
				Quantity: 1,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.Is(err, apperrors.ErrInsufficientInventory):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, conflicted)
	assert.Equal(t, 0, ticketRepo.quantity(ticketID))
}

func TestDecideAccept(t *testing.T) {
	svc, ticketRepo, _, publisher, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 2,
	})
	require.NoError(t, err)

	booking, err := svc.Decide(context.Background(), "seller@example.com", resp.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, booking.Status)

	// Acceptance keeps the reservation.
	assert.Equal(t, 8, ticketRepo.quantity(ticketID))
	assert.Contains(t, publisher.subjects(), models.EventBookingAccepted)
}

func TestDecideRejectReleasesInventory(t *testing.T) {
	svc, ticketRepo, _, publisher, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, ticketRepo.quantity(ticketID))

	booking, err := svc.Decide(context.Background(), "seller@example.com", resp.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, booking.Status)

	assert.Equal(t, 10, ticketRepo.quantity(ticketID))
	assert.Contains(t, publisher.subjects(), models.EventBookingRejected)
}

func TestDecideWrongSellerForbidden(t *testing.T) {
	svc, _, _, _, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "other-seller@example.com", resp.ID, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestDecideTwiceConflicts(t *testing.T) {
	svc, ticketRepo, _, _, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 3,
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "seller@example.com", resp.ID, false)
	require.NoError(t, err)

	// The second decision loses the conditional transition; no double
	// release happens.
	_, err = svc.Decide(context.Background(), "seller@example.com", resp.ID, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	assert.Equal(t, 10, ticketRepo.quantity(ticketID))
}

// Concurrent duplicate rejections must release the units exactly once.
func TestDecideConcurrentRejectSingleRelease(t *testing.T) {
	svc, ticketRepo, _, _, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 5,
	})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), "seller@example.com", resp.ID, false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, ticketRepo.quantity(ticketID))
}

func TestGetBookingOwnership(t *testing.T) {
	svc, _, _, _, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "buyer@example.com", resp.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "seller@example.com", resp.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "stranger@example.com", resp.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestExpireStalePending(t *testing.T) {
	svc, ticketRepo, bookingRepo, publisher, ticketID := newBookingFixture(t, 10)

	stale, err := svc.Create(context.Background(), "late@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 2,
	})
	require.NoError(t, err)
	bookingRepo.setCreatedAt(stale.ID, time.Now().Add(-time.Hour))

	fresh, err := svc.Create(context.Background(), "fresh@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 3,
	})
	require.NoError(t, err)

	accepted, err := svc.Create(context.Background(), "kept@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 1,
	})
	require.NoError(t, err)
	bookingRepo.setCreatedAt(accepted.ID, time.Now().Add(-2*time.Hour))
	_, err = svc.Decide(context.Background(), "seller@example.com", accepted.ID, true)
	require.NoError(t, err)

	expired, err := svc.ExpireStalePending(context.Background(), time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	// Only the stale pending booking expired and released its units.
	assert.Equal(t, 6, ticketRepo.quantity(ticketID))

	staleBooking, err := bookingRepo.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, staleBooking.Status)

	freshBooking, err := bookingRepo.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, freshBooking.Status)

	acceptedBooking, err := bookingRepo.GetByID(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, acceptedBooking.Status)

	assert.Contains(t, publisher.subjects(), models.EventBookingExpired)
}

func TestListForSellerStatusFilter(t *testing.T) {
	svc, _, _, _, ticketID := newBookingFixture(t, 10)

	resp, err := svc.Create(context.Background(), "buyer@example.com", &models.CreateBookingRequest{
		TicketID: ticketID,
		Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.Decide(context.Background(), "seller@example.com", resp.ID, true)
	require.NoError(t, err)

	all, err := svc.ListForSeller(context.Background(), "seller@example.com", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	accepted, err := svc.ListForSeller(context.Background(), "seller@example.com", "accepted")
	require.NoError(t, err)
	assert.Len(t, accepted, 1)

	pending, err := svc.ListForSeller(context.Background(), "seller@example.com", "pending")
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.ListForSeller(context.Background(), "seller@example.com", "bogus")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
