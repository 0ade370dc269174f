package services

import (
	"context"
	"errors"
	"time"

	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
)

// Fixed identity used when dev mode bypasses the provider
const (
	DevUserOpenID      = "dev-user"
	devUserName        = "Dev User"
	devUserEmail       = "dev@localhost"
	devUserLoginMethod = "dev"
)

// UserService is the user directory keyed by provider subject id
type UserService struct {
	users       repositories.UserRepository
	ownerOpenID string
	now         func() time.Time
	logger      *zap.Logger
}

// NewUserService creates a user directory. ownerOpenID is promoted to admin on every upsert.
func NewUserService(users repositories.UserRepository, ownerOpenID string, logger *zap.Logger) *UserService {
	return &UserService{
		users:       users,
		ownerOpenID: ownerOpenID,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// FindBySubject returns the user with the given open id, or nil when absent
// or when storage is unavailable.
func (s *UserService) FindBySubject(ctx context.Context, subjectID string) (*models.User, error) {
	if subjectID == "" {
		return nil, nil
	}

	user, err := s.users.GetByOpenID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrStorageUnavailable) {
			s.logger.Debug("user lookup skipped, storage unavailable", zap.String("open_id", subjectID))
			return nil, nil
		}
		return nil, WrapInternal("find user", err)
	}
	return user, nil
}

// Upsert inserts the user or updates the supplied attributes. It is a silent
// no-op when storage is unavailable or the open id is empty.
func (s *UserService) Upsert(ctx context.Context, user models.UserUpsert) error {
	if user.OpenID == "" {
		s.logger.Warn("upsert skipped, empty open id")
		return nil
	}

	now := s.now()
	if s.ownerOpenID != "" && user.OpenID == s.ownerOpenID {
		admin := models.RoleAdmin
		user.Role = &admin
	}
	if !user.HasUpdates() {
		user.LastSignedIn = &now
	}

	if err := s.users.Upsert(ctx, &user, now); err != nil {
		if errors.Is(err, repositories.ErrStorageUnavailable) {
			s.logger.Warn("upsert skipped, storage unavailable", zap.String("open_id", user.OpenID))
			return nil
		}
		return WrapInternal("upsert user", err)
	}
	return nil
}

// GetOrCreateDevUser returns the fixed dev identity, creating it when absent.
// An existing row is returned as is. Without storage it returns an unsaved
// value with ID 0.
func (s *UserService) GetOrCreateDevUser(ctx context.Context) (*models.User, error) {
	user, err := s.users.GetByOpenID(ctx, DevUserOpenID)
	switch {
	case errors.Is(err, repositories.ErrStorageUnavailable):
		return s.unsavedDevUser(), nil
	case err != nil:
		return nil, WrapInternal("load dev user", err)
	case user != nil:
		return user, nil
	}

	now := s.now()
	if err := s.Upsert(ctx, models.UserUpsert{
		OpenID:       DevUserOpenID,
		Name:         models.StringPtr(devUserName),
		Email:        models.StringPtr(devUserEmail),
		LoginMethod:  models.StringPtr(devUserLoginMethod),
		LastSignedIn: &now,
	}); err != nil {
		return nil, err
	}

	user, err = s.FindBySubject(ctx, DevUserOpenID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return s.unsavedDevUser(), nil
	}
	s.logger.Info("dev user created", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *UserService) unsavedDevUser() *models.User {
	now := s.now()
	role := models.RoleUser
	if s.ownerOpenID == DevUserOpenID {
		role = models.RoleAdmin
	}
	return &models.User{
		OpenID:       DevUserOpenID,
		Name:         models.StringPtr(devUserName),
		Email:        models.StringPtr(devUserEmail),
		LoginMethod:  models.StringPtr(devUserLoginMethod),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
}

// ListUsers returns every user ordered by id
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrStorageUnavailable) {
			return []*models.User{}, nil
		}
		return nil, WrapInternal("list users", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
