package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSemCliente is returned when a portal session is asked for a user that
// never went through checkout
var ErrSemCliente = errors.New("user has no payment customer")

// Client talks to the server-side functions that open payment provider
// sessions. Both endpoints answer with the URL the user must be sent to.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a billing client for the functions under baseURL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckoutRequest describes a subscription checkout
type CheckoutRequest struct {
	PriceID    string `json:"price_id"`
	UserID     string `json:"user_id"`
	CustomerID string `json:"customer_id,omitempty"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// PortalRequest describes a customer portal session
type PortalRequest struct {
	CustomerID string `json:"customer_id"`
	ReturnURL  string `json:"return_url"`
}

// SessionResponse is what both endpoints return
type SessionResponse struct {
	URL        string `json:"url"`
	SessionID  string `json:"session_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CreateCheckoutSession opens a hosted checkout and returns its session
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*SessionResponse, error) {
	if req.PriceID == "" || req.UserID == "" {
		return nil, fmt.Errorf("price_id and user_id are required")
	}
	return c.post(ctx, "create-checkout-session", req)
}

// CreatePortalSession opens the hosted billing portal for a customer
func (c *Client) CreatePortalSession(ctx context.Context, req PortalRequest) (*SessionResponse, error) {
	if req.CustomerID == "" {
		return nil, ErrSemCliente
	}
	return c.post(ctx, "create-portal-session", req)
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*SessionResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	var out SessionResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, msg)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("%s returned no redirect URL", endpoint)
	}
	return &out, nil
}
