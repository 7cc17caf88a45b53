package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"tixbay/internal/models"
)

// The suite runs against a live deployment. It is skipped unless
// TIXBAY_API_URL is set; flows that need a persona also need the
// matching token:
//
//	TIXBAY_API_URL      base URL, e.g. http://localhost:8080
//	TIXBAY_SELLER_TOKEN bearer token for a vendor account
//	TIXBAY_BUYER_TOKEN  bearer token for a customer account
//	TIXBAY_ADMIN_TOKEN  bearer token for an admin account

func apiClient(t *testing.T) *TestClient {
	t.Helper()
	baseURL := os.Getenv("TIXBAY_API_URL")
	if baseURL == "" {
		t.Skip("TIXBAY_API_URL not set; skipping integration tests")
	}
	return NewTestClient(baseURL)
}

func requireToken(t *testing.T, env string) string {
	t.Helper()
	token := os.Getenv(env)
	if token == "" {
		t.Skipf("%s not set; skipping", env)
	}
	return token
}

// newTicketRequest builds a listing a day out so reservation and
// checkout gates on departure time never trip during the run.
func newTicketRequest(quantity int) models.CreateTicketRequest {
	return models.CreateTicketRequest{
		Title:         fmt.Sprintf("Integration run %d", time.Now().UnixNano()),
		Type:          "train",
		Origin:        "Astana",
		Destination:   "Almaty",
		Price:         12000,
		Quantity:      quantity,
		DepartureTime: time.Now().Add(24 * time.Hour),
	}
}

func findTicket(tickets []models.Ticket, id string) *models.Ticket {
	for i := range tickets {
		if tickets[i].ID == id {
			return &tickets[i]
		}
	}
	return nil
}
