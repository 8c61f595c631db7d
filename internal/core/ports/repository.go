package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

// Tx is an opaque transaction handle. The TxRunner produces one and the
// repository methods that must share a transaction scope accept it; the
// postgres adapter asserts it back to *sql.Tx.
type Tx interface{}

// TxRunner runs fn inside a single database transaction, committing when fn
// returns nil and rolling back otherwise.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

type TicketRepository interface {
	// FindByIDs returns the tickets matching ids. Callers must compare the
	// returned count against the requested count; missing ids are not an
	// error at this level.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ticket, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error)

	// MarkReserved transitions available -> reserved for every id, inside
	// the caller's transaction. If any ticket is not available (a lost
	// race included) it fails with domain.ErrTicketsUnavailable and the
	// transaction must be rolled back.
	MarkReserved(ctx context.Context, tx Tx, ids []uuid.UUID) error

	// MarkSold transitions reserved -> sold; Release transitions
	// reserved -> available. Both fail with domain.ErrStateConflict when
	// any ticket is not in the expected predecessor state.
	MarkSold(ctx context.Context, tx Tx, ids []uuid.UUID) error
	Release(ctx context.Context, tx Tx, ids []uuid.UUID) error

	// CreateBatch inserts provisioned tickets (partner inventory setup).
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
}

type PurchaseRepository interface {
	// CreatePending inserts the purchase row with status pending plus its
	// purchase_tickets associations, inside the caller's transaction.
	CreatePending(ctx context.Context, tx Tx, purchase *domain.Purchase) error

	// Advance moves a purchase from one status to another with a
	// status-guarded update. Illegal transitions and lost races fail with
	// domain.ErrStateConflict.
	Advance(ctx context.Context, tx Tx, id uuid.UUID, from, to domain.PurchaseStatus) error

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)

	// FindStalePending returns ids of pending purchases older than
	// olderThan, capped at limit. Input for the hold-expiry sweeper.
	FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]uuid.UUID, error)

	// CreateReservations writes the per-ticket audit rows for a paid
	// purchase, inside the caller's transaction.
	CreateReservations(ctx context.Context, tx Tx, reservations []domain.Reservation) error
}

type CustomerRepository interface {
	// FindByID and FindByUserID return domain.ErrNotACustomer when no
	// billing profile exists.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error)
}
