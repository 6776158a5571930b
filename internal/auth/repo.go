package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/db"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("auth: user not found")

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
	FindByID(ctx context.Context, id int64) (*AdminUser, error)
	// RolesFor loads roles through the user_roles join. Callers rely on
	// this being a fresh query on every call.
	RolesFor(ctx context.Context, userID int64) ([]Role, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// last_login is NULL until the first login; coalesce keeps the scan simple.
const userColumns = `id, username, password_hash, email, is_superuser, COALESCE(last_login, to_timestamp(0)), created_at`

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*AdminUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*AdminUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id)
	return scanUser(row)
}

// RolesFor queries the join table and returns the user's roles.
func (r *PGRepository) RolesFor(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT roles.id, roles.name, roles.accessible_models
		FROM user_roles
		JOIN roles ON roles.id = user_roles.role_id
		WHERE user_roles.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("auth: roles for user %d: %w", userID, err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.AccessibleModels); err != nil {
			return nil, fmt.Errorf("auth: scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: roles rows: %w", err)
	}
	return roles, nil
}

// TouchLastLogin records a successful login time.
func (r *PGRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE admin_users SET last_login = $2 WHERE id = $1`, id, at.UTC())
	return err
}

// EnsureDefaultAdmin creates the bootstrap superuser account when no user
// with that name exists yet. The check and insert run in one transaction so
// concurrent instances cannot both bootstrap.
func (r *PGRepository) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash default password: %w", err)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users WHERE username = $1)`, username).Scan(&exists); err != nil {
			return fmt.Errorf("auth: check default admin: %w", err)
		}
		if exists {
			return nil
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO admin_users (username, password_hash, email, is_superuser, created_at)
			VALUES ($1, $2, $3, TRUE, NOW())`, username, string(hash), username+"@example.com")
		if err != nil {
			return fmt.Errorf("auth: create default admin: %w", err)
		}
		return nil
	})
}

func scanUser(row pgx.Row) (*AdminUser, error) {
	var user AdminUser
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.IsSuperuser, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("auth: scan user: %w", err)
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
