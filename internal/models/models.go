package models

import "time"

// CreateTicketRequest is the vendor payload for listing a new ticket.
type CreateTicketRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   *string   `json:"description"`
	Type          string    `json:"type" binding:"required"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	ImageURL      *string   `json:"image_url"`
	Price         int64     `json:"price" binding:"required"`
	Quantity      int       `json:"quantity" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
}

// UpdateTicketRequest carries the owner-editable ticket fields. Nil
// fields are left untouched.
type UpdateTicketRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Origin        *string    `json:"origin"`
	Destination   *string    `json:"destination"`
	ImageURL      *string    `json:"image_url"`
	Price         *int64     `json:"price"`
	DepartureTime *time.Time `json:"departure_time"`
}

// CreateTicketResponse is returned after a ticket is listed.
type CreateTicketResponse struct {
	ID string `json:"id"`
}

// CreateBookingRequest is the buyer payload for reserving inventory.
type CreateBookingRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// CreateBookingResponse is returned after a booking is created. Existing
// is true when an active booking by the same buyer for the same ticket
// was returned instead of creating a second reservation.
type CreateBookingResponse struct {
	ID       string        `json:"id"`
	Status   BookingStatus `json:"status"`
	Existing bool          `json:"existing,omitempty"`
}

// StartCheckoutRequest asks for a hosted checkout session for an
// accepted booking.
type StartCheckoutRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// StartCheckoutResponse carries the gateway redirect target.
type StartCheckoutResponse struct {
	URL string `json:"url"`
}

// ConfirmPaymentRequest is the server-to-server callback payload from
// the checkout success flow. Delivery is at-least-once.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// UpsertUserRequest is sent on login to record the account.
type UpsertUserRequest struct {
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

// UserRoleResponse reports the caller's platform role.
type UserRoleResponse struct {
	Role Role `json:"role"`
}

// SetRoleRequest is the admin payload for promoting a user.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AdvertiseRequest toggles the promoted flag on an approved ticket.
type AdvertiseRequest struct {
	Advertise bool `json:"advertise"`
}

// VendorOverviewResponse is the per-seller revenue rollup.
type VendorOverviewResponse struct {
	TotalTicketsAdded int64 `json:"total_tickets_added"`
	TotalTicketsSold  int64 `json:"total_tickets_sold"`
	TotalRevenue      int64 `json:"total_revenue"`
}

// PlatformStatsResponse is the admin-wide rollup.
type PlatformStatsResponse struct {
	TicketsByStatus  map[TicketStatus]int64  `json:"tickets_by_status"`
	BookingsByStatus map[BookingStatus]int64 `json:"bookings_by_status"`
	TicketsByType    map[TransportType]int64 `json:"tickets_by_type"`
	TotalRevenue     int64                   `json:"total_revenue"`
}
