package services

import (
	"context"

	"github.com/jwtpizza/pizza-service/repositories"
)

// WithTransaction executes fn within a database transaction.
// Automatically commits on success, rolls back on error.
// Non-domain errors surface as internal errors.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) error) error {
	if err := txMgr.InTransaction(ctx, fn); err != nil {
		return WrapInternal("transaction failed", err)
	}
	return nil
}

// WithTransactionResult executes fn within a database transaction and returns its result
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := WithTransaction(ctx, txMgr, func(txCtx context.Context) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
