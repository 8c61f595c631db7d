package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) CreatePending(ctx context.Context, tx ports.Tx, purchase *domain.Purchase) error {
	q := resolve(r.db, tx)

	queryHeader := `
	INSERT INTO purchases (id, customer_id, total_amount, status, purchase_date)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.ExecContext(ctx, queryHeader,
		purchase.ID, purchase.CustomerID, purchase.TotalAmount, domain.PurchasePending, purchase.PurchaseDate)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	queryAssoc := `
	INSERT INTO purchase_tickets (id, purchase_id, ticket_id)
	VALUES ($1, $2, $3)
	`

	for _, ticketID := range purchase.TicketIDs {
		if _, err := q.ExecContext(ctx, queryAssoc, uuid.New(), purchase.ID, ticketID); err != nil {
			return fmt.Errorf("insert purchase ticket %s: %w", ticketID, err)
		}
	}

	return nil
}

func (r *PurchaseRepository) Advance(ctx context.Context, tx ports.Tx, id uuid.UUID, from, to domain.PurchaseStatus) error {
	if !from.CanAdvanceTo(to) {
		return fmt.Errorf("purchase %s: %s -> %s: %w", id, from, to, domain.ErrStateConflict)
	}

	query := `
	UPDATE purchases
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	result, err := resolve(r.db, tx).ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("advance purchase %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("purchase %s is no longer %s: %w", id, from, domain.ErrStateConflict)
	}

	return nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	query := `
	SELECT id, customer_id, total_amount, status, purchase_date
	FROM purchases
	WHERE id = $1
	`

	var p domain.Purchase
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CustomerID, &p.TotalAmount, &p.Status, &p.PurchaseDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("query purchase %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT ticket_id FROM purchase_tickets WHERE purchase_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query purchase tickets: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var ticketID uuid.UUID
		if err := rows.Scan(&ticketID); err != nil {
			return nil, err
		}

		p.TicketIDs = append(p.TicketIDs, ticketID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PurchaseRepository) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM purchases
	WHERE status = $1 AND purchase_date < $2
	ORDER BY purchase_date
	LIMIT $3
	`

	cutoff := time.Now().UTC().Add(-olderThan)

	rows, err := r.db.QueryContext(ctx, query, domain.PurchasePending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending purchases: %w", err)
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *PurchaseRepository) CreateReservations(ctx context.Context, tx ports.Tx, reservations []domain.Reservation) error {
	query := `
	INSERT INTO reservation_tickets (id, customer_id, ticket_id, reservation_date, status)
	VALUES ($1, $2, $3, $4, $5)
	`

	q := resolve(r.db, tx)
	for _, res := range reservations {
		if _, err := q.ExecContext(ctx, query,
			res.ID, res.CustomerID, res.TicketID, res.ReservationDate, res.Status); err != nil {
			return fmt.Errorf("insert reservation for ticket %s: %w", res.TicketID, err)
		}
	}

	return nil
}
