package external

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "tixbay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenIsDeterministicAndSorted(t *testing.T) {
	client := NewCheckoutClient(CheckoutConfig{MerchantID: "m-1", Secret: "s3cret"})

	a := client.generateToken(map[string]string{"UnitAmount": "100", "Quantity": "2"})
	b := client.generateToken(map[string]string{"Quantity": "2", "UnitAmount": "100"})
	assert.Equal(t, a, b)

	// MerchantId + Quantity + Secret + UnitAmount in key order.
	sum := sha256.Sum256([]byte("m-1" + "2" + "s3cret" + "100"))
	assert.Equal(t, hex.EncodeToString(sum[:]), a)
}

func TestCreateSession(t *testing.T) {
	var got createSessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:       "cs_1",
			URL:      "https://pay.test/cs_1",
			Status:   "open",
			Metadata: got.Metadata,
		})
	}))
	defer srv.Close()

	client := NewCheckoutClient(CheckoutConfig{BaseURL: srv.URL, MerchantID: "m-1", Secret: "s"})
	session, err := client.CreateSession(context.Background(), CreateSessionParams{
		Title:         "Train Astana - Almaty",
		UnitAmount:    12000,
		Quantity:      2,
		CustomerEmail: "buyer@example.com",
		BookingID:     "b-1",
		SuccessURL:    "https://shop.test/ok",
		CancelURL:     "https://shop.test/no",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.test/cs_1", session.URL)
	assert.Equal(t, "m-1", got.MerchantID)
	assert.Equal(t, int64(12000), got.UnitAmount)
	assert.Equal(t, "b-1", got.Metadata["bookingId"])
	assert.NotEmpty(t, got.Token)
}

func TestCreateSessionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewCheckoutClient(CheckoutConfig{BaseURL: srv.URL})
	_, err := client.CreateSession(context.Background(), CreateSessionParams{BookingID: "b-1"})
	assert.ErrorIs(t, err, apperrors.ErrGateway)
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		require.Equal(t, "m-1", r.Header.Get("X-Merchant-Id"))
		require.NotEmpty(t, r.Header.Get("X-Request-Token"))

		json.NewEncoder(w).Encode(CheckoutSession{
			ID:            "cs_1",
			Status:        SessionStatusComplete,
			TransactionID: "txn_9",
			AmountTotal:   24000,
			Metadata:      map[string]string{"bookingId": "b-1"},
		})
	}))
	defer srv.Close()

	client := NewCheckoutClient(CheckoutConfig{BaseURL: srv.URL, MerchantID: "m-1", Secret: "s"})
	session, err := client.GetSession(context.Background(), "cs_1")
	require.NoError(t, err)

	assert.Equal(t, SessionStatusComplete, session.Status)
	assert.Equal(t, "txn_9", session.TransactionID)
	assert.Equal(t, "b-1", session.Metadata["bookingId"])
}

func TestGetSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewCheckoutClient(CheckoutConfig{BaseURL: srv.URL})
	_, err := client.GetSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
