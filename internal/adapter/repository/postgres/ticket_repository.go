package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ticket, error) {
	query := `
	SELECT id, event_id, location, price, status, created_at
	FROM tickets
	WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("query tickets by ids: %w", err)
	}

	defer rows.Close()

	return scanTickets(rows)
}

func (r *TicketRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]domain.Ticket, error) {
	query := `
	SELECT id, event_id, location, price, status, created_at
	FROM tickets
	WHERE event_id = $1
	ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("query tickets by event: %w", err)
	}

	defer rows.Close()

	return scanTickets(rows)
}

// MarkReserved flips available -> reserved. The status predicate is the
// concurrency control: of two racing transactions only one can match all
// requested rows, the loser observes a short row count and rolls back.
func (r *TicketRepository) MarkReserved(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return r.transition(ctx, tx, ids, domain.TicketAvailable, domain.TicketReserved, domain.ErrTicketsUnavailable)
}

func (r *TicketRepository) MarkSold(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return r.transition(ctx, tx, ids, domain.TicketReserved, domain.TicketSold, domain.ErrStateConflict)
}

func (r *TicketRepository) Release(ctx context.Context, tx ports.Tx, ids []uuid.UUID) error {
	return r.transition(ctx, tx, ids, domain.TicketReserved, domain.TicketAvailable, domain.ErrStateConflict)
}

func (r *TicketRepository) transition(ctx context.Context, tx ports.Tx, ids []uuid.UUID, from, to domain.TicketStatus, conflictErr error) error {
	query := `
	UPDATE tickets
	SET status = $1
	WHERE id = ANY($2) AND status = $3
	`

	result, err := resolve(r.db, tx).ExecContext(ctx, query, to, pq.Array(idStrings(ids)), from)
	if err != nil {
		return fmt.Errorf("transition tickets %s -> %s: %w", from, to, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// Absence of an error is not enough: a concurrent transaction may have
	// already moved some tickets past the expected state, which shows up
	// only in the affected-row count.
	if affected != int64(len(ids)) {
		return fmt.Errorf("expected %d tickets in state %q, matched %d: %w", len(ids), from, affected, conflictErr)
	}

	return nil
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	query := `
	INSERT INTO tickets (id, event_id, location, price, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare ticket insert: %w", err)
	}

	defer stmt.Close()

	for _, t := range tickets {
		if _, err := stmt.ExecContext(ctx, t.ID, t.EventID, t.Location, t.Price, t.Status, t.CreatedAt); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}

	return nil
}

func scanTickets(rows *sql.Rows) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.EventID, &t.Location, &t.Price, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}

		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
