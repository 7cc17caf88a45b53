package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"tixbay/internal/models"
)

func TestHealthEndpoint(t *testing.T) {
	client := apiClient(t)

	resp := client.Health(t)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected healthy API, got status %d", resp.StatusCode)
	}
}

func TestPublicCatalogRequiresNoAuth(t *testing.T) {
	client := apiClient(t)

	client.ListTickets(t, "")
}

func TestBookingRequiresAuth(t *testing.T) {
	client := apiClient(t)

	resp := client.CreateBooking(t, "", models.CreateBookingRequest{
		TicketID: "00000000-0000-0000-0000-000000000000",
		Quantity: 1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without a token, got %d", resp.StatusCode)
	}
}

// TestBookingLifecycle walks the full flow: the seller lists a ticket,
// the admin approves it, the buyer reserves, and the seller accepts.
func TestBookingLifecycle(t *testing.T) {
	client := apiClient(t)
	sellerToken := requireToken(t, "TIXBAY_SELLER_TOKEN")
	buyerToken := requireToken(t, "TIXBAY_BUYER_TOKEN")
	adminToken := requireToken(t, "TIXBAY_ADMIN_TOKEN")

	ticket := client.CreateTicket(t, sellerToken, newTicketRequest(5))
	if ticket.Status != models.TicketStatusPending {
		t.Fatalf("New ticket should await moderation, got status %s", ticket.Status)
	}

	resp := client.ModerateTicket(t, adminToken, ticket.ID, "approved")
	client.expectStatus(t, resp, http.StatusOK)

	catalog := client.ListTickets(t, "")
	if findTicket(catalog, ticket.ID) == nil {
		t.Fatalf("Approved ticket %s missing from public catalog", ticket.ID)
	}

	resp = client.CreateBooking(t, buyerToken, models.CreateBookingRequest{
		TicketID: ticket.ID,
		Quantity: 2,
	})
	client.expectStatus(t, resp, http.StatusCreated)
	var created models.CreateBookingResponse
	client.decode(t, resp, &created)
	if created.Status != models.BookingStatusPending {
		t.Fatalf("New booking should be pending, got %s", created.Status)
	}

	// A second attempt returns the active booking instead of
	// reserving again.
	resp = client.CreateBooking(t, buyerToken, models.CreateBookingRequest{
		TicketID: ticket.ID,
		Quantity: 1,
	})
	client.expectStatus(t, resp, http.StatusOK)
	var dup models.CreateBookingResponse
	client.decode(t, resp, &dup)
	if dup.ID != created.ID {
		t.Fatalf("Duplicate booking returned %s, expected existing %s", dup.ID, created.ID)
	}

	resp = client.DecideBooking(t, sellerToken, created.ID, "accept")
	client.expectStatus(t, resp, http.StatusOK)

	// The decision is final.
	resp = client.DecideBooking(t, sellerToken, created.ID, "reject")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409 rejecting an accepted booking, got %d", resp.StatusCode)
	}

	bookings := client.ListMyBookings(t, buyerToken)
	for _, b := range bookings {
		if b.ID == created.ID && b.Status != models.BookingStatusAccepted {
			t.Fatalf("Booking %s should be accepted, got %s", b.ID, b.Status)
		}
	}
}

func TestOversellRejected(t *testing.T) {
	client := apiClient(t)
	sellerToken := requireToken(t, "TIXBAY_SELLER_TOKEN")
	buyerToken := requireToken(t, "TIXBAY_BUYER_TOKEN")
	adminToken := requireToken(t, "TIXBAY_ADMIN_TOKEN")

	ticket := client.CreateTicket(t, sellerToken, newTicketRequest(1))
	resp := client.ModerateTicket(t, adminToken, ticket.ID, "approved")
	client.expectStatus(t, resp, http.StatusOK)

	resp = client.CreateBooking(t, buyerToken, models.CreateBookingRequest{
		TicketID: ticket.ID,
		Quantity: 3,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		body := json.NewDecoder(resp.Body)
		var payload map[string]interface{}
		_ = body.Decode(&payload)
		t.Fatalf("Expected 409 for oversized booking, got %d: %v", resp.StatusCode, payload)
	}
}
