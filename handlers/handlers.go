package handlers

import (
	"context"
	"net/http"

	"github.com/upb/todo-app/middleware"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

// UserLister lists every user, for the admin surface
type UserLister interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// CurrentUserHandler handles GET /api/auth/me. Public: anonymous callers get a null user.
func CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.GetUserFromContext(r.Context())
		if user == nil {
			_ = utils.WriteOK(w, nil)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// ListUsersHandler handles GET /api/admin/users
func ListUsersHandler(users UserLister, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := users.ListUsers(ctx)
		if err != nil {
			logger.Error("failed to list users",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
			HandleServiceError(w, err, logger)
			return
		}
		_ = utils.WriteOK(w, list)
	}
}

// NotFoundHandler answers unknown routes with the JSON error envelope
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusNotFound, "endpoint not found", nil)
	}
}
