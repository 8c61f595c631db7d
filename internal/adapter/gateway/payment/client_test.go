package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

func testClient(url string) *Client {
	return NewClient(Config{
		BaseURL:        url,
		APIKey:         "sk_test",
		RequestTimeout: 2 * time.Second,
		MaxFailures:    3,
		Cooldown:       time.Minute,
	})
}

func testProfile() domain.BillingProfile {
	return domain.BillingProfile{Name: "Ana", Email: "ana@example.com", Address: "Rua A 1", Phone: "555"}
}

func TestCharge_Accepted(t *testing.T) {
	purchaseID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, ChargeKey(purchaseID), r.Header.Get("Idempotency-Key"))

		var req chargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Amount.Equal(decimal.RequireFromString("125.00")))
		assert.Equal(t, "tok_visa", req.CardToken)

		json.NewEncoder(w).Encode(chargeResponse{TransactionID: "txn_123", Status: "accepted"})
	}))
	defer server.Close()

	client := testClient(server.URL)

	receipt, err := client.Charge(context.Background(), purchaseID, testProfile(), decimal.RequireFromString("125.00"), "tok_visa")

	require.NoError(t, err)
	assert.Equal(t, "txn_123", receipt.TransactionID)
}

func TestCharge_DeclinedStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(chargeResponse{Status: "declined", Message: "insufficient funds"})
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_bad")

	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestCharge_DeclinedInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chargeResponse{Status: "declined", Message: "card expired"})
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_expired")

	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
}

func TestCharge_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_visa")

	assert.ErrorIs(t, err, domain.ErrPaymentTransient)
}

func TestCharge_TimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(server.URL)
	client.hc.Timeout = 20 * time.Millisecond

	_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_visa")

	assert.ErrorIs(t, err, domain.ErrPaymentTransient)
}

func TestCharge_BreakerOpensAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)

	for i := 0; i < 3; i++ {
		_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_visa")
		assert.ErrorIs(t, err, domain.ErrPaymentTransient)
	}

	// Breaker is open now: the next call must fail fast without a request.
	_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_visa")
	assert.ErrorIs(t, err, domain.ErrPaymentTransient)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCharge_DeclinesDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := testClient(server.URL)

	for i := 0; i < 5; i++ {
		_, err := client.Charge(context.Background(), uuid.New(), testProfile(), decimal.NewFromInt(10), "tok_bad")
		assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
	}

	assert.Equal(t, int32(5), calls.Load())
}

func TestBreaker_HalfOpenProbeRecovers(t *testing.T) {
	b := newCircuitBreaker(2, 10*time.Millisecond)

	transient := domain.ErrPaymentTransient

	require.True(t, b.allow())
	b.record(transient)
	require.True(t, b.allow())
	b.record(transient)

	assert.False(t, b.allow(), "breaker should be open after max failures")

	time.Sleep(15 * time.Millisecond)

	require.True(t, b.allow(), "breaker should allow a probe after cooldown")
	b.record(nil)

	assert.True(t, b.allow(), "breaker should close after a successful probe")
}
