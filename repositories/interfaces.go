package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/upb/todo-app/models"
)

// ErrStorageUnavailable is returned when no database is configured or the
// connection could not be established. Callers decide whether to degrade.
var ErrStorageUnavailable = errors.New("storage unavailable")

// TransactionManager runs a unit of work in a single database transaction
type TransactionManager interface {
	// WithTransaction executes fn with a transaction bound to ctx.
	// Commits if fn succeeds, rolls back on error.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository handles user data operations
type UserRepository interface {
	// GetByOpenID retrieves a user by provider subject. Returns nil, nil when absent.
	GetByOpenID(ctx context.Context, openID string) (*models.User, error)

	// Upsert inserts the user or updates only the supplied attributes.
	Upsert(ctx context.Context, user *models.UserUpsert, now time.Time) error

	// List retrieves all users ordered by id
	List(ctx context.Context) ([]*models.User, error)
}

// TodoRepository handles todo data operations. Every method is scoped by
// owner so rows of other users are never read or written.
type TodoRepository interface {
	// ListByUser retrieves the owner's todos in creation order
	ListByUser(ctx context.Context, userID int64) ([]*models.Todo, error)

	// GetByID retrieves a todo by id and owner. Returns nil, nil when absent.
	GetByID(ctx context.Context, id, userID int64) (*models.Todo, error)

	// Create inserts a todo and sets its ID
	Create(ctx context.Context, todo *models.Todo) error

	// Update applies a partial update to the owner's todo
	Update(ctx context.Context, id, userID int64, patch models.TodoPatch, now time.Time) error

	// Delete removes the owner's todo
	Delete(ctx context.Context, id, userID int64) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users UserRepository
	Todos TodoRepository
}
