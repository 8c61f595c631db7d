package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

// ChargeReceipt is the gateway's acknowledgement of a successful charge.
type ChargeReceipt struct {
	TransactionID string
}

// PaymentGateway charges a card token. Failures are classified: a declined
// charge surfaces domain.ErrPaymentDeclined, infrastructure failures
// (timeout, connection error, 5xx) surface domain.ErrPaymentTransient. The
// purchase id keys the idempotent retry on the gateway side.
type PaymentGateway interface {
	Charge(ctx context.Context, purchaseID uuid.UUID, profile domain.BillingProfile, amount decimal.Decimal, cardToken string) (*ChargeReceipt, error)
}

// AvailabilityCache caches the public per-event ticket listing. It is never
// consulted by the purchase workflow itself, which always reads fresh rows
// inside its transaction; it only serves the listing endpoint and is
// invalidated after every committed ticket transition.
type AvailabilityCache interface {
	GetEventTickets(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error)
	SetEventTickets(ctx context.Context, eventID uuid.UUID, tickets []domain.Ticket) error
	InvalidateEvent(ctx context.Context, eventID uuid.UUID) error
}

// IdempotencyStore parks the gateway idempotency key for a purchase before
// the charge call, so a supervising process can re-query the gateway for
// purchases stranded by a transient failure.
type IdempotencyStore interface {
	PutChargeKey(ctx context.Context, purchaseID uuid.UUID, key string, ttl time.Duration) error
	GetChargeKey(ctx context.Context, purchaseID uuid.UUID) (string, error)
}
