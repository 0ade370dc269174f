package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
)

// transactionContextKey is the context key for storing transactions
type transactionContextKey struct{}

// TransactionManager implements repositories.TransactionManager
type TransactionManager struct {
	conn   Connector
	logger *zap.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(conn Connector, logger *zap.Logger) repositories.TransactionManager {
	return &TransactionManager{
		conn:   conn,
		logger: logger,
	}
}

// WithTransaction executes fn within a transaction.
// Automatically commits if fn succeeds, rolls back on error.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(transactionContextKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	db, err := tm.conn.Conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tm.logger.Debug("transaction started")

	txCtx := context.WithValue(ctx, transactionContextKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			tm.logger.Error("failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("original_error", err),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tm.logger.Debug("transaction committed")

	return nil
}

// Executor can run queries on either a pool or a transaction
type Executor interface {
	sqlx.ExtContext
}

// GetExecutor returns the transaction bound to ctx, or the pool
func GetExecutor(ctx context.Context, db *DB) Executor {
	if tx, ok := ctx.Value(transactionContextKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.DB
}

// executor resolves a connection through conn and picks the right executor
func executor(ctx context.Context, conn Connector) (Executor, error) {
	if tx, ok := ctx.Value(transactionContextKey{}).(*sqlx.Tx); ok {
		return tx, nil
	}
	db, err := conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return GetExecutor(ctx, db), nil
}
