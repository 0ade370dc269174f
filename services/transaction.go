package services

import (
	"context"

	"github.com/upb/todo-app/repositories"
)

// WithTransaction executes fn within a database transaction.
// Commits on success, rolls back on error.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) error) error {
	return txMgr.WithTransaction(ctx, fn)
}
