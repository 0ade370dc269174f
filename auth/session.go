package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed validity of a session token
const SessionTTL = 365 * 24 * time.Hour

// ErrInvalidSession is the only error Verify returns. Callers cannot tell a
// bad signature from an expired or malformed token.
var ErrInvalidSession = errors.New("invalid session")

// SessionCodec issues and verifies HS256 session tokens carrying a subject id
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a SessionCodec
type Option func(*SessionCodec)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *SessionCodec) {
		c.now = now
	}
}

// NewSessionCodec creates a codec for the process-wide signing secret
func NewSessionCodec(secret string, opts ...Option) (*SessionCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	c := &SessionCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subjectID that expires SessionTTL from now
func (c *SessionCodec) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("subject id is required")
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject id
func (c *SessionCodec) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}
