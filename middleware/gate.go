package middleware

import (
	"errors"
	"net/http"

	"github.com/upb/todo-app/services"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

// AccessLevel is the access requirement attached to a route
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessProtected
	AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessProtected:
		return "protected"
	case AccessAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Check is a single access predicate. A non-nil error denies the request.
type Check func(Principal) error

// RequireUser denies anonymous principals
func RequireUser(p Principal) error {
	if p.IsAnonymous() {
		return services.ErrUnauthorized
	}
	return nil
}

// RequireAdminRole denies every principal that is not an admin
func RequireAdminRole(p Principal) error {
	if p.Kind() != KindAdmin {
		return services.ErrForbidden
	}
	return nil
}

// Gate evaluates the ordered checks of an access level before a handler runs
type Gate struct {
	checks map[AccessLevel][]Check
	logger *zap.Logger
}

// NewGate creates a gate with the standard levels
func NewGate(logger *zap.Logger) *Gate {
	return &Gate{
		checks: map[AccessLevel][]Check{
			AccessPublic:    nil,
			AccessProtected: {RequireUser},
			AccessAdmin:     {RequireAdminRole},
		},
		logger: logger,
	}
}

// Allow runs the checks of level in order and returns the first denial
func (g *Gate) Allow(level AccessLevel, p Principal) error {
	for _, check := range g.checks[level] {
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

// Require is middleware that rejects requests whose principal fails the level's checks
func (g *Gate) Require(level AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := GetPrincipalFromContext(ctx)

			if err := g.Allow(level, principal); err != nil {
				g.logger.Debug("access denied",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.Stringer("level", level),
					zap.Stringer("principal", principal.Kind()))
				writeDenial(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeDenial(w http.ResponseWriter, err error) {
	message := err.Error()
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	if services.IsUnauthorizedError(err) {
		_ = utils.WriteError(w, http.StatusUnauthorized, message, nil)
		return
	}
	_ = utils.WriteError(w, http.StatusForbidden, message, nil)
}
