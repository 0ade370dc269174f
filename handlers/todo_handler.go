package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upb/todo-app/internal/observability"
	"github.com/upb/todo-app/middleware"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/services"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

const maxTodoBodyBytes = 64 << 10

// TodoOperations defines the owner-scoped todo operations
type TodoOperations interface {
	List(ctx context.Context, userID int64) ([]*models.Todo, error)
	Create(ctx context.Context, userID int64, input services.CreateTodoInput) (*models.Todo, error)
	Update(ctx context.Context, userID, id int64, input services.UpdateTodoInput) error
	Toggle(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
}

// SuccessResult is the body of mutations that return nothing else
type SuccessResult struct {
	Success bool `json:"success"`
}

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	todos  TodoOperations
	logger *zap.Logger
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(todos TodoOperations, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todos:  todos,
		logger: logger,
	}
}

// HandleList handles GET /api/todos
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	todos, err := h.todos.List(ctx, user.ID)
	if err != nil {
		observability.ForRequest(ctx, h.logger).Error("failed to list todos", zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, todos)
}

// HandleCreate handles POST /api/todos
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var input services.CreateTodoInput
	if !h.decode(w, r, &input) {
		return
	}

	todo, err := h.todos.Create(ctx, user.ID, input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, todo)
}

// HandleUpdate handles PATCH /api/todos/{id}
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	var input services.UpdateTodoInput
	if !h.decode(w, r, &input) {
		return
	}

	if err := h.todos.Update(ctx, user.ID, id, input); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, SuccessResult{Success: true})
}

// HandleToggle handles POST /api/todos/{id}/toggle
func (h *TodoHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	if err := h.todos.Toggle(ctx, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, SuccessResult{Success: true})
}

// HandleDelete handles DELETE /api/todos/{id}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	if err := h.todos.Delete(ctx, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, SuccessResult{Success: true})
}

// requireUser returns the caller. The gate normally rejects anonymous
// requests before this point.
func (h *TodoHandler) requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteError(w, http.StatusUnauthorized, services.ErrUnauthorized.Message, nil)
		return nil, false
	}
	return user, true
}

func (h *TodoHandler) todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		_ = utils.WriteError(w, http.StatusBadRequest, "Invalid todo id", nil)
		return 0, false
	}
	return id, true
}

func (h *TodoHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxTodoBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		observability.ForRequest(r.Context(), h.logger).Warn("failed to parse request body", zap.Error(err))
		if errors.Is(err, io.EOF) {
			_ = utils.WriteError(w, http.StatusBadRequest, "Request body is required", nil)
			return false
		}
		_ = utils.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}
