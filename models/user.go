package models

import (
	"time"
)

// UserRole represents the single role flag stored per user
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is a local account keyed by the provider-issued open id.
// ID is an internal surrogate and is never sent to the provider.
type User struct {
	ID           int64     `json:"id" db:"id"`
	OpenID       string    `json:"openId" db:"open_id"`
	Name         *string   `json:"name" db:"name"`
	Email        *string   `json:"email" db:"email"`
	LoginMethod  *string   `json:"loginMethod" db:"login_method"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	LastSignedIn time.Time `json:"lastSignedIn" db:"last_signed_in"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserUpsert carries the attributes of an insert-or-update keyed by OpenID.
// A nil pointer means the attribute was not supplied and must be left as is.
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *UserRole
	LastSignedIn *time.Time
}

// HasUpdates reports whether any updatable attribute was supplied.
func (u *UserUpsert) HasUpdates() bool {
	return u.Name != nil || u.Email != nil || u.LoginMethod != nil || u.Role != nil || u.LastSignedIn != nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
