package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	apperrors "tixbay/internal/errors"
)

// CheckoutClient talks to the hosted checkout gateway. Every call has a
// bounded timeout; a slow gateway fails the request rather than hanging.
type CheckoutClient struct {
	baseURL    string
	merchantID string
	secret     string
	httpClient *http.Client
}

type CheckoutConfig struct {
	BaseURL    string
	MerchantID string
	Secret     string
	Timeout    time.Duration
}

// CreateSessionParams describes one booking's checkout: everything is a
// snapshot from the booking, never re-read from the ticket.
type CreateSessionParams struct {
	Title         string
	UnitAmount    int64 // minor units
	Quantity      int
	CustomerEmail string
	BookingID     string
	ImageURL      string
	SuccessURL    string
	CancelURL     string
}

type createSessionRequest struct {
	MerchantID    string            `json:"merchantId"`
	Token         string            `json:"token"`
	Title         string            `json:"title"`
	UnitAmount    int64             `json:"unitAmount"`
	Quantity      int               `json:"quantity"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customerEmail"`
	ImageURL      string            `json:"imageUrl,omitempty"`
	SuccessURL    string            `json:"successUrl"`
	CancelURL     string            `json:"cancelUrl"`
	Metadata      map[string]string `json:"metadata"`
}

// CheckoutSession is the gateway's view of one hosted checkout flow.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	TransactionID string            `json:"transactionId"`
	AmountTotal   int64             `json:"amountTotal"`
	CustomerEmail string            `json:"customerEmail"`
	Metadata      map[string]string `json:"metadata"`
}

// SessionStatusComplete is the gateway status of a finished checkout.
const SessionStatusComplete = "complete"

func NewCheckoutClient(cfg CheckoutConfig) *CheckoutClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &CheckoutClient{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		secret:     cfg.Secret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs a request: parameters are sorted alphabetically,
// concatenated with the merchant id and secret, and hashed.
func (cc *CheckoutClient) generateToken(params map[string]string) string {
	params["MerchantId"] = cc.merchantID
	params["Secret"] = cc.secret

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// CreateSession opens a new hosted checkout session. Each call opens a
// fresh session at the gateway; no local state is touched.
func (cc *CheckoutClient) CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	token := cc.generateToken(map[string]string{
		"UnitAmount": strconv.FormatInt(params.UnitAmount, 10),
		"Quantity":   strconv.Itoa(params.Quantity),
		"BookingId":  params.BookingID,
	})

	req := createSessionRequest{
		MerchantID:    cc.merchantID,
		Token:         token,
		Title:         params.Title,
		UnitAmount:    params.UnitAmount,
		Quantity:      params.Quantity,
		Currency:      "usd",
		CustomerEmail: params.CustomerEmail,
		ImageURL:      params.ImageURL,
		SuccessURL:    params.SuccessURL,
		CancelURL:     params.CancelURL,
		Metadata:      map[string]string{"bookingId": params.BookingID},
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cc.baseURL+"/v1/checkout/sessions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := cc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create session returned %d", apperrors.ErrGateway, resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", apperrors.ErrGateway, err)
	}

	return &session, nil
}

// GetSession retrieves a session by id, including its transaction id
// and booking metadata. Used by payment confirmation; safe to call any
// number of times.
func (cc *CheckoutClient) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	token := cc.generateToken(map[string]string{
		"SessionId": sessionID,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		cc.baseURL+"/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("X-Merchant-Id", cc.merchantID)
	httpReq.Header.Set("X-Request-Token", token)

	resp, err := cc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get session returned %d", apperrors.ErrGateway, resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", apperrors.ErrGateway, err)
	}

	return &session, nil
}
