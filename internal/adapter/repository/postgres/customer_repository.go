package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
	SELECT c.id, c.user_id, u.name, u.email, c.address, c.phone, c.created_at
	FROM customers c
	JOIN users u ON c.user_id = u.id
	WHERE c.id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	query := `
	SELECT c.id, c.user_id, u.name, u.email, c.address, c.phone, c.created_at
	FROM customers c
	JOIN users u ON c.user_id = u.id
	WHERE c.user_id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *CustomerRepository) scanOne(row *sql.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Address, &c.Phone, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotACustomer
		}
		return nil, fmt.Errorf("query customer: %w", err)
	}

	return &c, nil
}
