package jobs

import (
	"context"
	"log/slog"
	"time"

	"tixbay/internal/service"
)

// BookingExpirationJob periodically returns stale pending reservations
// to the pool. Only pending bookings expire: once a seller accepts, the
// hold lasts until payment or the departure-time gate closes checkout.
type BookingExpirationJob struct {
	bookings *service.BookingService
	ttl      time.Duration
	every    time.Duration
	ticker   *time.Ticker
	done     chan bool
}

func NewBookingExpirationJob(bookings *service.BookingService, ttl, every time.Duration) *BookingExpirationJob {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if every <= 0 {
		every = time.Minute
	}
	return &BookingExpirationJob{
		bookings: bookings,
		ttl:      ttl,
		every:    every,
		done:     make(chan bool),
	}
}

func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job",
		"check_interval", j.every.String(), "ttl", j.ttl.String())

	j.ticker = time.NewTicker(j.every)

	// Run the first sweep immediately.
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.sweep(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			}
		}
	}()
}

func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *BookingExpirationJob) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.ttl)

	expired, err := j.bookings.ExpireStalePending(ctx, cutoff)
	if err != nil {
		slog.Error("Expiration sweep failed", "error", err)
		return
	}
	if expired > 0 {
		slog.Info("Expired stale pending bookings", "count", expired)
	}
}
