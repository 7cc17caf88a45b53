package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tixbay",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// BookingsCreated counts successful reservations.
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		},
	)

	// ReservationConflicts counts reservations refused because the
	// conditional decrement found insufficient inventory.
	ReservationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "reservation_conflicts_total",
			Help:      "Reservations refused due to insufficient inventory",
		},
	)

	// BookingsDecided counts seller decisions by outcome.
	BookingsDecided = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "bookings_decided_total",
			Help:      "Seller accept/reject decisions",
		},
		[]string{"decision"},
	)

	// CheckoutSessionsStarted counts hosted checkout sessions opened.
	CheckoutSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "checkout_sessions_started_total",
			Help:      "Hosted checkout sessions opened",
		},
	)

	// PaymentsRecorded counts confirmation outcomes: "recorded" for the
	// single write that wins, "duplicate" for idempotent short-circuits.
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "payments_recorded_total",
			Help:      "Payment confirmation outcomes",
		},
		[]string{"result"},
	)

	// BookingsExpired counts reservations returned to the pool by the
	// expiration job.
	BookingsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tixbay",
			Name:      "bookings_expired_total",
			Help:      "Stale pending bookings expired",
		},
	)
)
