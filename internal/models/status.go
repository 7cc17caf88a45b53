package models

import "fmt"

// TicketStatus is the moderation state of a ticket listing.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusApproved TicketStatus = "approved"
	TicketStatusRejected TicketStatus = "rejected"
	TicketStatusHidden   TicketStatus = "hidden"
)

func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(s) {
	case TicketStatusPending, TicketStatusApproved, TicketStatusRejected, TicketStatusHidden:
		return TicketStatus(s), nil
	}
	return "", fmt.Errorf("invalid ticket status: %q", s)
}

// BookingStatus is the lifecycle state of a booking.
//
// pending -> accepted | rejected | expired
// accepted -> paid
// rejected, paid and expired are terminal.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
	BookingStatusPaid     BookingStatus = "paid"
	BookingStatusExpired  BookingStatus = "expired"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected, BookingStatusPaid, BookingStatusExpired:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("invalid booking status: %q", s)
}

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusRejected || s == BookingStatusPaid || s == BookingStatusExpired
}

// Role is the platform role of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
	RoleFraud    Role = "fraud"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleVendor, RoleAdmin, RoleFraud:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role: %q", s)
}

// TransportType is the category of transport a ticket covers.
type TransportType string

const (
	TransportBus   TransportType = "bus"
	TransportTrain TransportType = "train"
	TransportPlane TransportType = "plane"
)

func ParseTransportType(s string) (TransportType, error) {
	switch TransportType(s) {
	case TransportBus, TransportTrain, TransportPlane:
		return TransportType(s), nil
	}
	return "", fmt.Errorf("invalid transport type: %q", s)
}
