package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/repositories"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

// CreateTodoInput is the body of a create request
type CreateTodoInput struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
}

// UpdateTodoInput is the body of a partial update. Nil fields are left untouched.
type UpdateTodoInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoService implements the owner-scoped todo operations
type TodoService struct {
	todos  repositories.TodoRepository
	txMgr  repositories.TransactionManager
	now    func() time.Time
	logger *zap.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(todos repositories.TodoRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *TodoService {
	return &TodoService{
		todos:  todos,
		txMgr:  txMgr,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// List returns the owner's todos in creation order. Storage outages yield an empty list.
func (s *TodoService) List(ctx context.Context, userID int64) ([]*models.Todo, error) {
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrStorageUnavailable) {
			s.logger.Debug("todo list degraded, storage unavailable", zap.Int64("user_id", userID))
			return []*models.Todo{}, nil
		}
		return nil, WrapInternal("list todos", err)
	}
	if todos == nil {
		todos = []*models.Todo{}
	}
	return todos, nil
}

// Create validates input and stores a new todo for userID
func (s *TodoService) Create(ctx context.Context, userID int64, input CreateTodoInput) (*models.Todo, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationError(err)
	}

	todo := models.NewTodo(userID, input.Title, input.Description)
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, s.writeError("create todo", err)
	}

	s.logger.Info("todo created", zap.Int64("todo_id", todo.ID), zap.Int64("user_id", userID))
	return todo, nil
}

// Update applies a partial update to the owner's todo. Rows of other
// users are not matched, so the call succeeds without effect.
func (s *TodoService) Update(ctx context.Context, userID, id int64, input UpdateTodoInput) error {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := utils.ValidateStruct(input); err != nil {
		return validationError(err)
	}

	patch := models.TodoPatch{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}
	if err := s.todos.Update(ctx, id, userID, patch, s.now()); err != nil {
		return s.writeError("update todo", err)
	}
	return nil
}

// Toggle flips the completed flag of the owner's todo in one transaction
func (s *TodoService) Toggle(ctx context.Context, userID, id int64) error {
	err := WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		todo, err := s.todos.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if todo == nil {
			return ErrTodoNotFound
		}

		completed := !todo.Completed
		return s.todos.Update(ctx, id, userID, models.TodoPatch{Completed: &completed}, s.now())
	})
	if err != nil {
		return s.writeError("toggle todo", err)
	}
	return nil
}

// Delete removes the owner's todo
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.todos.Delete(ctx, id, userID); err != nil {
		return s.writeError("delete todo", err)
	}
	return nil
}

// writeError maps a failed write to a domain error. Storage outages are
// reported instead of being swallowed.
func (s *TodoService) writeError(op string, err error) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, repositories.ErrStorageUnavailable) {
		s.logger.Warn(op+" failed, storage unavailable", zap.Error(err))
		return ErrStorageUnavailable
	}
	return WrapInternal(op, err)
}

func validationError(err error) error {
	fields := utils.GetValidationFields(err)
	if fields == nil {
		return NewDomainError(ErrorTypeValidation, err.Error(), err)
	}
	domainErr := NewDomainError(ErrorTypeValidation, "Validation failed", err)
	for field, msg := range fields {
		domainErr = domainErr.WithDetail(field, msg)
	}
	return domainErr
}
