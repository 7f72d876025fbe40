package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

// TxBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithTx runs fn inside a transaction. The transaction commits only when fn returns nil.
func WithTx(ctx context.Context, db TxBeginner, fn func(pgx.Tx) error) error {
	if db == nil {
		return errors.New("db: transaction beginner not configured")
	}
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Runner runs generated queries inside a pgx transaction.
type Runner struct {
	Pool TxBeginner
	Q    *dbgen.Queries
}

// InTx calls fn with queries bound to a new transaction.
func (r Runner) InTx(ctx context.Context, fn func(dbgen.Querier) error) error {
	if r.Q == nil {
		return errors.New("db: queries not configured")
	}
	return WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		return fn(r.Q.WithTx(tx))
	})
}
