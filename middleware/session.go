package middleware

import (
	"context"
	"net/http"

	"github.com/upb/todo-app/models"
	"go.uber.org/zap"
)

// SessionVerifier checks a session token and returns its subject id
type SessionVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup resolves subject ids to users
type UserLookup interface {
	FindBySubject(ctx context.Context, subjectID string) (*models.User, error)
	GetOrCreateDevUser(ctx context.Context) (*models.User, error)
}

// SessionResolver turns the session cookie into a Principal once per request.
// Resolution never fails the request; anything unusable is anonymous.
type SessionResolver struct {
	verifier   SessionVerifier
	users      UserLookup
	cookieName string
	devMode    bool
	logger     *zap.Logger
}

// NewSessionResolver creates a resolver reading the named cookie
func NewSessionResolver(verifier SessionVerifier, users UserLookup, cookieName string, devMode bool, logger *zap.Logger) *SessionResolver {
	return &SessionResolver{
		verifier:   verifier,
		users:      users,
		cookieName: cookieName,
		devMode:    devMode,
		logger:     logger,
	}
}

// Resolve is middleware that stores the resolved Principal in the request context
func (s *SessionResolver) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := s.resolve(r)
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (s *SessionResolver) resolve(r *http.Request) Principal {
	ctx := r.Context()
	requestID := GetRequestIDFromContext(ctx)

	if r.Header.Get("Cookie") == "" {
		return s.fallback(ctx, requestID)
	}

	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return s.fallback(ctx, requestID)
	}

	subjectID, err := s.verifier.Verify(cookie.Value)
	if err != nil {
		s.logger.Debug("session rejected",
			zap.String("request_id", requestID))
		return s.fallback(ctx, requestID)
	}

	// A valid token for an unknown subject stays anonymous, even in dev mode.
	user, err := s.users.FindBySubject(ctx, subjectID)
	if err != nil {
		s.logger.Warn("session user lookup failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return Anonymous()
	}
	if user == nil {
		s.logger.Debug("session subject unknown",
			zap.String("request_id", requestID),
			zap.String("open_id", subjectID))
		return Anonymous()
	}

	return NewPrincipal(user)
}

// fallback is the principal for requests without a usable session
func (s *SessionResolver) fallback(ctx context.Context, requestID string) Principal {
	if !s.devMode {
		return Anonymous()
	}

	user, err := s.users.GetOrCreateDevUser(ctx)
	if err != nil {
		s.logger.Warn("dev user unavailable",
			zap.String("request_id", requestID),
			zap.Error(err))
		return Anonymous()
	}
	return NewPrincipal(user)
}
