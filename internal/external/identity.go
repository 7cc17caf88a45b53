package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "tixbay/internal/errors"
)

// IdentityClient verifies bearer tokens against the external identity
// provider and returns the verified email claim. Verification results
// are cached upstream; this client performs the actual round trip.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

type IdentityConfig struct {
	BaseURL string
	Timeout time.Duration
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

// TokenClaims is the verified identity of a caller.
type TokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewIdentityClient(cfg IdentityConfig) *IdentityClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &IdentityClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// VerifyToken exchanges a raw bearer token for its claims. An invalid
// or expired token yields ErrUnauthorized; provider outages yield
// ErrGateway so the caller can distinguish the two.
func (ic *IdentityClient) VerifyToken(ctx context.Context, token string) (*TokenClaims, error) {
	jsonBody, err := json.Marshal(verifyTokenRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ic.baseURL+"/v1/tokens/verify", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := ic.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: verify token: %v", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify token returned %d", apperrors.ErrGateway, resp.StatusCode)
	}

	var claims TokenClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", apperrors.ErrGateway, err)
	}

	if claims.Email == "" {
		return nil, apperrors.ErrUnauthorized
	}

	return &claims, nil
}
