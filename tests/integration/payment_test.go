package integration

import (
	"net/http"
	"testing"

	"tixbay/internal/models"
)

// TestCheckoutGating verifies checkout is only reachable from an
// accepted booking and that phantom sessions are rejected. Completing a
// real gateway session needs a browser, so the paid transition itself
// is covered by the service-level suite.
func TestCheckoutGating(t *testing.T) {
	client := apiClient(t)
	sellerToken := requireToken(t, "TIXBAY_SELLER_TOKEN")
	buyerToken := requireToken(t, "TIXBAY_BUYER_TOKEN")
	adminToken := requireToken(t, "TIXBAY_ADMIN_TOKEN")

	ticket := client.CreateTicket(t, sellerToken, newTicketRequest(4))
	resp := client.ModerateTicket(t, adminToken, ticket.ID, "approved")
	client.expectStatus(t, resp, http.StatusOK)

	resp = client.CreateBooking(t, buyerToken, models.CreateBookingRequest{
		TicketID: ticket.ID,
		Quantity: 1,
	})
	client.expectStatus(t, resp, http.StatusCreated)
	var created models.CreateBookingResponse
	client.decode(t, resp, &created)

	// Pending bookings cannot be paid for.
	resp = client.StartCheckout(t, buyerToken, created.ID)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409 starting checkout on a pending booking, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = client.DecideBooking(t, sellerToken, created.ID, "accept")
	client.expectStatus(t, resp, http.StatusOK)

	resp = client.StartCheckout(t, buyerToken, created.ID)
	client.expectStatus(t, resp, http.StatusOK)
	var checkout models.StartCheckoutResponse
	client.decode(t, resp, &checkout)
	if checkout.URL == "" {
		t.Fatal("Checkout session should carry a redirect URL")
	}

	// Only the buyer can open checkout.
	resp = client.StartCheckout(t, sellerToken, created.ID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-buyer checkout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// The confirm callback is server-to-server and takes no bearer token.
func TestConfirmUnknownSession(t *testing.T) {
	client := apiClient(t)

	resp := client.ConfirmPayment(t, "", "cs_does_not_exist")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected 404 or 502 for unknown session, got %d", resp.StatusCode)
	}
}
