package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
)

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

// TodoRepository implements the repositories.TodoRepository interface
type TodoRepository struct {
	conn   Connector
	logger *zap.Logger
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(conn Connector, logger *zap.Logger) repositories.TodoRepository {
	return &TodoRepository{
		conn:   conn,
		logger: logger,
	}
}

// ListByUser retrieves the owner's todos in creation order
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error) {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}

	todos := []*models.Todo{}
	query := exec.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? ORDER BY created_at, id`)
	if err := sqlx.SelectContext(ctx, exec, &todos, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

// GetByID retrieves a todo by id and owner
func (r *TodoRepository) GetByID(ctx context.Context, id, userID int64) (*models.Todo, error) {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{}
	query := exec.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ? LIMIT 1`)
	if err := sqlx.GetContext(ctx, exec, todo, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// Create inserts a todo and sets its ID
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}

	query := exec.Rebind(`
		INSERT INTO todos (user_id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err = exec.QueryRowxContext(ctx, query,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	r.logger.Debug("todo created", zap.Int64("id", todo.ID), zap.Int64("user_id", todo.UserID))
	return nil
}

// Update applies a partial update to the owner's todo.
// A todo of another user matches no row and is left untouched.
func (r *TodoRepository) Update(ctx context.Context, id, userID int64, patch models.TodoPatch, now time.Time) error {
	if patch.IsEmpty() {
		return nil
	}

	exec, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}

	var (
		set  []string
		args []interface{}
	)
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Completed != nil {
		set = append(set, "completed = ?")
		args = append(args, *patch.Completed)
	}
	set = append(set, "updated_at = ?")
	args = append(args, now, id, userID)

	query := exec.Rebind(`UPDATE todos SET ` + strings.Join(set, ", ") + ` WHERE id = ? AND user_id = ?`)
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

// Delete removes the owner's todo
func (r *TodoRepository) Delete(ctx context.Context, id, userID int64) error {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}

	query := exec.Rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`)
	if _, err := exec.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	r.logger.Debug("todo deleted", zap.Int64("id", id), zap.Int64("user_id", userID))
	return nil
}
