package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	conn   Connector
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(conn Connector, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		conn:   conn,
		logger: logger,
	}
}

// GetByOpenID retrieves a user by provider subject
func (r *UserRepository) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}

	query := exec.Rebind(`SELECT ` + userColumns + ` FROM users WHERE open_id = ? LIMIT 1`)

	user := &models.User{}
	if err := sqlx.GetContext(ctx, exec, user, query, openID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Upsert inserts the user or updates only the supplied attributes.
// Unsupplied attributes keep their stored values on conflict.
func (r *UserRepository) Upsert(ctx context.Context, u *models.UserUpsert, now time.Time) error {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}

	role := models.RoleUser
	if u.Role != nil {
		role = *u.Role
	}
	lastSignedIn := now
	if u.LastSignedIn != nil {
		lastSignedIn = *u.LastSignedIn
	}

	var set []string
	if u.Name != nil {
		set = append(set, "name = excluded.name")
	}
	if u.Email != nil {
		set = append(set, "email = excluded.email")
	}
	if u.LoginMethod != nil {
		set = append(set, "login_method = excluded.login_method")
	}
	if u.Role != nil {
		set = append(set, "role = excluded.role")
	}
	if u.LastSignedIn != nil {
		set = append(set, "last_signed_in = excluded.last_signed_in")
	}
	set = append(set, "updated_at = excluded.updated_at")

	query := exec.Rebind(`
		INSERT INTO users (open_id, name, email, login_method, role, created_at, updated_at, last_signed_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (open_id) DO UPDATE SET ` + strings.Join(set, ", "))

	_, err = exec.ExecContext(ctx, query,
		u.OpenID,
		u.Name,
		u.Email,
		u.LoginMethod,
		role,
		now,
		now,
		lastSignedIn,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	r.logger.Debug("user upserted", zap.String("open_id", u.OpenID), zap.Int("fields", len(set)-1))
	return nil
}

// List retrieves all users ordered by id
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	exec, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}

	users := []*models.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	if err := sqlx.SelectContext(ctx, exec, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
