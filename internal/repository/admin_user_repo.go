package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/procure_api/internal/models"
)

// AdminUserRepository stores back-office accounts.
type AdminUserRepository struct {
	db *sqlx.DB
}

func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail matches case-insensitively.
func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	const q = `SELECT id, email, password_hash, name, is_active, last_login_at, created_at, updated_at
        FROM admin_users
        WHERE LOWER(email) = LOWER($1)`
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, q, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	const q = `INSERT INTO admin_users (email, password_hash, name, is_active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, user.Email, user.PasswordHash, user.Name, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// TouchLastLogin stamps a successful login.
func (r *AdminUserRepository) TouchLastLogin(ctx context.Context, id int) error {
	const q = `UPDATE admin_users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
