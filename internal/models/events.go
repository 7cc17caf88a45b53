package models

import "time"

// NATS event subjects
const (
	EventBookingCreated   = "booking.created"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingExpired   = "booking.expired"
	EventTicketModerated  = "ticket.moderated"
	EventPaymentCompleted = "payment.completed"
)

// BookingCreatedEvent is published after a reservation is made and the
// pending booking stored.
type BookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	TicketID    string    `json:"ticket_id"`
	BuyerEmail  string    `json:"buyer_email"`
	SellerEmail string    `json:"seller_email"`
	Quantity    int       `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingDecidedEvent is published on seller accept/reject.
type BookingDecidedEvent struct {
	BookingID   string        `json:"booking_id"`
	TicketID    string        `json:"ticket_id"`
	SellerEmail string        `json:"seller_email"`
	Status      BookingStatus `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
}

// BookingExpiredEvent is published when the expiration job returns a
// stale pending reservation to the pool.
type BookingExpiredEvent struct {
	BookingID string    `json:"booking_id"`
	TicketID  string    `json:"ticket_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketModeratedEvent is published on every moderation transition so
// the search index can be kept in sync.
type TicketModeratedEvent struct {
	TicketID  string       `json:"ticket_id"`
	Status    TicketStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}

// PaymentCompletedEvent is published once per recorded payment.
type PaymentCompletedEvent struct {
	PaymentID     string    `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
	BookingID     string    `json:"booking_id"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}
