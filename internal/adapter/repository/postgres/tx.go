package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ingressolabs/ticketsales/internal/core/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx so repository methods can
// run against the pool or inside a caller-supplied transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager implements ports.TxRunner over a *sql.DB.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) RunInTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// resolve picks the execution target for a repository call: the transaction
// handle when one was supplied, the pool otherwise.
func resolve(db *sql.DB, tx ports.Tx) querier {
	if t, ok := tx.(*sql.Tx); ok && t != nil {
		return t
	}
	return db
}
