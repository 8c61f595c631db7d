package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

// Client talks to the external payment gateway over HTTP JSON. The gateway
// is an untrusted boundary: it can be slow, down, or decline the charge, and
// the three cases must stay distinguishable for the orchestrator.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	breaker *circuitBreaker
}

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	MaxFailures    int
	Cooldown       time.Duration
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		hc: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		breaker: newCircuitBreaker(cfg.MaxFailures, cfg.Cooldown),
	}
}

type chargeRequest struct {
	IdempotencyKey string                `json:"idempotency_key"`
	Amount         decimal.Decimal       `json:"amount"`
	Currency       string                `json:"currency"`
	CardToken      string                `json:"card_token"`
	Billing        domain.BillingProfile `json:"billing"`
}

type chargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// ChargeKey is the idempotency key sent to the gateway for a purchase. A
// retried charge for the same purchase reuses the same key, so the gateway
// will not double-charge a customer after a transient failure.
func ChargeKey(purchaseID uuid.UUID) string {
	return "purchase-" + purchaseID.String()
}

func (c *Client) Charge(ctx context.Context, purchaseID uuid.UUID, profile domain.BillingProfile, amount decimal.Decimal, cardToken string) (*ports.ChargeReceipt, error) {
	if !c.breaker.allow() {
		return nil, fmt.Errorf("circuit breaker open: %w", domain.ErrPaymentTransient)
	}

	receipt, err := c.charge(ctx, purchaseID, profile, amount, cardToken)
	c.breaker.record(err)
	return receipt, err
}

func (c *Client) charge(ctx context.Context, purchaseID uuid.UUID, profile domain.BillingProfile, amount decimal.Decimal, cardToken string) (*ports.ChargeReceipt, error) {
	body, err := json.Marshal(chargeRequest{
		IdempotencyKey: ChargeKey(purchaseID),
		Amount:         amount,
		Currency:       "USD",
		CardToken:      cardToken,
		Billing:        profile,
	})
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", ChargeKey(purchaseID))

	resp, err := c.hc.Do(req)
	if err != nil {
		// Timeouts and connection errors: the charge may or may not have
		// happened, never assume either way.
		return nil, fmt.Errorf("gateway unreachable: %v: %w", err, domain.ErrPaymentTransient)
	}

	defer resp.Body.Close()

	var parsed chargeResponse
	if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); readErr == nil {
		_ = json.Unmarshal(data, &parsed)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if parsed.Status == "declined" {
			return nil, fmt.Errorf("gateway declined charge: %s: %w", parsed.Message, domain.ErrPaymentDeclined)
		}
		return &ports.ChargeReceipt{TransactionID: parsed.TransactionID}, nil

	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("gateway declined charge: %s: %w", parsed.Message, domain.ErrPaymentDeclined)

	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return nil, fmt.Errorf("gateway error %d: %w", resp.StatusCode, domain.ErrPaymentTransient)

	default:
		// Remaining 4xx responses are definitive rejections of this
		// request; retrying the same input will not help.
		return nil, fmt.Errorf("gateway rejected charge with status %d: %w", resp.StatusCode, domain.ErrPaymentDeclined)
	}
}
