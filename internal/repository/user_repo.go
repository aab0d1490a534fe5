package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"washhub/internal/models"
	"washhub/internal/tenant"
)

const userColumns = `id, org_id, branch_id, email, full_name, password_hash, role, is_active, deleted_at, created_at, updated_at`

// UserRepository handles the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const query = `
		INSERT INTO users (org_id, branch_id, email, full_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		user.OrgID, user.BranchID, user.Email, user.FullName, user.PasswordHash, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByEmail fetches a user by email for login.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 AND deleted_at IS NULL LIMIT 1`, userColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetByID fetches a non-deleted user.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// List returns users visible to the tenant.
func (r *UserRepository) List(ctx context.Context, tc tenant.Context, limit, offset int) ([]models.User, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	conds, args = tc.Scope(conds, args, "org_id", "branch_id")
	args = append(args, clampLimit(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, whereClause(conds), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites mutable user fields. The password hash is only touched
// when non-empty.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	const query = `
		UPDATE users
		SET branch_id = $2,
			full_name = $3,
			role = $4,
			is_active = $5,
			password_hash = CASE WHEN $6 <> '' THEN $6 ELSE password_hash END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.BranchID, user.FullName, user.Role, user.IsActive, user.PasswordHash,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a user deleted.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "users", id)
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanUser(row rowScanner, u *models.User) error {
	return row.Scan(
		&u.ID, &u.OrgID, &u.BranchID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
}
