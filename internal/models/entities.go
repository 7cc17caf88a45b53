package models

import (
	"time"
)

// User represents a platform account identified by the email claim of
// the identity provider token.
type User struct {
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	PhotoURL    *string   `json:"photo_url" db:"photo_url"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
}

// Ticket represents a sellable unit of transport capacity.
// Quantity is only ever mutated through the repository's conditional
// reserve/release statements.
type Ticket struct {
	ID            string        `json:"id" db:"id"`
	SellerEmail   string        `json:"seller_email" db:"seller_email"`
	Title         string        `json:"title" db:"title"`
	Description   *string       `json:"description" db:"description"`
	Type          TransportType `json:"type" db:"type"`
	Origin        string        `json:"origin" db:"origin"`
	Destination   string        `json:"destination" db:"destination"`
	ImageURL      *string       `json:"image_url" db:"image_url"`
	Price         int64         `json:"price" db:"price"` // minor units
	Quantity      int           `json:"quantity" db:"quantity"`
	DepartureTime time.Time     `json:"departure_time" db:"departure_time"`
	Status        TicketStatus  `json:"status" db:"status"`
	Advertised    bool          `json:"advertised" db:"advertised"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Booking represents a buyer's claim against a ticket's inventory.
// SellerEmail, TicketTitle, UnitPrice and DepartureTime are snapshots
// taken at creation; later ticket edits do not affect them.
type Booking struct {
	ID            string        `json:"id" db:"id"`
	TicketID      string        `json:"ticket_id" db:"ticket_id"`
	BuyerEmail    string        `json:"buyer_email" db:"buyer_email"`
	SellerEmail   string        `json:"seller_email" db:"seller_email"`
	TicketTitle   string        `json:"ticket_title" db:"ticket_title"`
	UnitPrice     int64         `json:"unit_price" db:"unit_price"`
	Quantity      int           `json:"quantity" db:"quantity"`
	DepartureTime time.Time     `json:"departure_time" db:"departure_time"`
	Status        BookingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Payment is the immutable record of one completed checkout. Both
// TransactionID and BookingID carry unique constraints; transaction id
// uniqueness is the hard exactly-once guarantee.
type Payment struct {
	ID            string    `json:"id" db:"id"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	BookingID     string    `json:"booking_id" db:"booking_id"`
	BuyerEmail    string    `json:"buyer_email" db:"buyer_email"`
	Amount        int64     `json:"amount" db:"amount"` // minor units
	TicketTitle   string    `json:"ticket_title" db:"ticket_title"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
