package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type txKey struct{}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx
type querier interface {
	sqlx.ExtContext
}

func txFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}

// withTx runs fn inside the transaction carried by ctx, or inside a new one
// that is committed when fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, logger *zap.Logger, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx), tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
