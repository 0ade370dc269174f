package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/todo-app/middleware"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/services"
	"go.uber.org/zap"
)

// MockUserLister is a mock implementation of UserLister
type MockUserLister struct {
	mock.Mock
}

func (m *MockUserLister) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func TestCurrentUserHandler(t *testing.T) {
	t.Run("returns the resolved user", func(t *testing.T) {
		user := &models.User{ID: 1, OpenID: "u1", Name: models.StringPtr("Alice"), Role: models.RoleUser}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.NewPrincipal(user)))
		rec := httptest.NewRecorder()

		CurrentUserHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Data struct {
				OpenID string `json:"openId"`
				Name   string `json:"name"`
				Role   string `json:"role"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "u1", body.Data.OpenID)
		assert.Equal(t, "Alice", body.Data.Name)
		assert.Equal(t, "user", body.Data.Role)
	})

	t.Run("anonymous is an explicit null", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CurrentUserHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":null}`, rec.Body.String())
	})
}

func TestListUsersHandler(t *testing.T) {
	logger := zap.NewNop()

	t.Run("lists users", func(t *testing.T) {
		users := new(MockUserLister)
		users.On("ListUsers", mock.Anything).Return([]*models.User{{ID: 1, OpenID: "a"}, {ID: 2, OpenID: "b"}}, nil)

		rec := httptest.NewRecorder()
		ListUsersHandler(users, logger)(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response["data"], 2)
	})

	t.Run("failure is mapped", func(t *testing.T) {
		users := new(MockUserLister)
		users.On("ListUsers", mock.Anything).Return(nil, services.WrapInternal("list users", assert.AnError))

		rec := httptest.NewRecorder()
		ListUsersHandler(users, logger)(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestNotFoundHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundHandler()(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"endpoint not found"}`, rec.Body.String())
}
