package middleware

import (
	"context"

	"github.com/upb/todo-app/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// PrincipalKey is the context key for the resolved session principal
	PrincipalKey contextKey = "principal"
)

// PrincipalKind tags who is making the request
type PrincipalKind int

const (
	KindAnonymous PrincipalKind = iota
	KindAuthenticated
	KindAdmin
)

func (k PrincipalKind) String() string {
	switch k {
	case KindAuthenticated:
		return "authenticated"
	case KindAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Principal is the immutable outcome of session resolution. The zero value is anonymous.
type Principal struct {
	kind PrincipalKind
	user *models.User
}

// Anonymous returns the principal of a request without a usable session
func Anonymous() Principal {
	return Principal{kind: KindAnonymous}
}

// NewPrincipal returns the principal for user; the kind follows the user's role
func NewPrincipal(user *models.User) Principal {
	switch {
	case user == nil:
		return Anonymous()
	case user.IsAdmin():
		return Principal{kind: KindAdmin, user: user}
	default:
		return Principal{kind: KindAuthenticated, user: user}
	}
}

// Kind returns the principal kind
func (p Principal) Kind() PrincipalKind {
	return p.kind
}

// User returns the resolved user, or nil for anonymous requests
func (p Principal) User() *models.User {
	return p.user
}

// IsAnonymous reports whether no user was resolved
func (p Principal) IsAnonymous() bool {
	return p.user == nil
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetPrincipalFromContext retrieves the principal from context, anonymous if unset
func GetPrincipalFromContext(ctx context.Context) Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(Principal); ok {
			return p
		}
	}
	return Anonymous()
}

// WithPrincipal adds the principal to the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetUserFromContext retrieves the resolved user from context
func GetUserFromContext(ctx context.Context) *models.User {
	return GetPrincipalFromContext(ctx).User()
}
