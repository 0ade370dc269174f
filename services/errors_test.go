package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name:    "error with wrapped error",
			err:     &DomainError{Type: ErrorTypeNotFound, Message: "user not found", Err: errors.New("db error")},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name:    "error without wrapped error",
			err:     &DomainError{Type: ErrorTypeValidation, Message: "invalid input"},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same error type", NewDomainError(ErrorTypeNotFound, "not found", nil), ErrTodoNotFound, true},
		{"different error type", NewDomainError(ErrorTypeValidation, "validation", nil), ErrTodoNotFound, false},
		{"not a domain error", NewDomainError(ErrorTypeNotFound, "not found", nil), errors.New("regular error"), false},
		{"wrapped unavailable", fmt.Errorf("create todo: %w", ErrStorageUnavailable), ErrStorageUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := ErrProviderRejected.WithDetail("status", 401).WithDetail("body", "")

	assert.Equal(t, 401, err.Details["status"])
	assert.Equal(t, "", err.Details["body"])
	assert.Empty(t, ErrProviderRejected.Details, "sentinel must not be mutated")
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrTodoNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("toggle todo: %w", ErrTodoNotFound), IsNotFoundError, true},
		{"validation", NewDomainError(ErrorTypeValidation, "Validation failed", nil), IsValidationError, true},
		{"unauthorized", ErrUnauthorized, IsUnauthorizedError, true},
		{"forbidden", ErrForbidden, IsForbiddenError, true},
		{"unavailable", ErrStorageUnavailable, IsUnavailableError, true},
		{"external", WrapExternal("userinfo", errors.New("boom")), IsExternalError, true},
		{"regular error", errors.New("regular"), IsNotFoundError, false},
		{"nil error", nil, IsValidationError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, GetErrorType(WrapInternal("x", errors.New("y"))))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := ErrTodoNotFound.WithDetail("id", int64(4))
	assert.Equal(t, int64(4), GetErrorDetails(err)["id"])
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
