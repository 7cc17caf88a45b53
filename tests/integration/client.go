package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"tixbay/internal/models"
)

// TestClient drives a running API instance over HTTP. Each call takes a
// bearer token so a single client can act as buyer, seller, or admin.
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TestClient) makeRequest(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (c *TestClient) decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("Failed to decode response %s: %v", string(data), err)
	}
}

func (c *TestClient) expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("Expected status %d, got %d: %s", want, resp.StatusCode, string(data))
	}
}

func (c *TestClient) Health(t *testing.T) *http.Response {
	return c.makeRequest(t, http.MethodGet, "/healthz", "", nil)
}

func (c *TestClient) ListTickets(t *testing.T, query string) []models.Ticket {
	path := "/api/tickets"
	if query != "" {
		path += "?query=" + query
	}
	resp := c.makeRequest(t, http.MethodGet, path, "", nil)
	c.expectStatus(t, resp, http.StatusOK)

	var tickets []models.Ticket
	c.decode(t, resp, &tickets)
	return tickets
}

func (c *TestClient) CreateTicket(t *testing.T, token string, req models.CreateTicketRequest) models.Ticket {
	resp := c.makeRequest(t, http.MethodPost, "/api/tickets", token, req)
	c.expectStatus(t, resp, http.StatusCreated)

	var ticket models.Ticket
	c.decode(t, resp, &ticket)
	return ticket
}

func (c *TestClient) ModerateTicket(t *testing.T, token, ticketID, status string) *http.Response {
	return c.makeRequest(t, http.MethodPatch,
		fmt.Sprintf("/api/admin/tickets/%s/status", ticketID),
		token, map[string]string{"status": status})
}

func (c *TestClient) CreateBooking(t *testing.T, token string, req models.CreateBookingRequest) *http.Response {
	return c.makeRequest(t, http.MethodPost, "/api/bookings", token, req)
}

func (c *TestClient) DecideBooking(t *testing.T, token, bookingID, verb string) *http.Response {
	return c.makeRequest(t, http.MethodPatch,
		fmt.Sprintf("/api/vendor/bookings/%s/%s", bookingID, verb), token, nil)
}

func (c *TestClient) StartCheckout(t *testing.T, token, bookingID string) *http.Response {
	return c.makeRequest(t, http.MethodPost, "/api/checkout/session", token,
		models.StartCheckoutRequest{BookingID: bookingID})
}

func (c *TestClient) ConfirmPayment(t *testing.T, token, sessionID string) *http.Response {
	return c.makeRequest(t, http.MethodPost, "/api/payments/confirm", token,
		models.ConfirmPaymentRequest{SessionID: sessionID})
}

func (c *TestClient) ListMyBookings(t *testing.T, token string) []models.Booking {
	resp := c.makeRequest(t, http.MethodGet, "/api/my-bookings", token, nil)
	c.expectStatus(t, resp, http.StatusOK)

	var bookings []models.Booking
	c.decode(t, resp, &bookings)
	return bookings
}
