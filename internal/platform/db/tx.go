package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// Txer runs a function inside a database transaction. Services depend on
// this interface so tests can substitute a pass-through implementation.
type Txer interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolTxer implements Txer on top of a pgx connection pool. The open
// transaction is carried in the context; repositories pick it up via
// TxFromContext so every repository call inside fn joins the same
// transaction.
type PoolTxer struct {
	pool *pgxpool.Pool
}

func NewPoolTxer(pool *pgxpool.Pool) *PoolTxer {
	return &PoolTxer{pool: pool}
}

func (t *PoolTxer) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TxFromContext retrieves the ambient transaction, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}
