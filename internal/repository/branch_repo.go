package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
)

const branchColumns = `id, org_id, name, address, phone, is_active, deleted_at, created_at, updated_at`

// BranchRepository handles the branches table.
type BranchRepository struct {
	db *sql.DB
}

// NewBranchRepository returns repository instance.
func NewBranchRepository(db *sql.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create inserts a branch.
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	const query = `
		INSERT INTO branches (org_id, name, address, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		branch.OrgID, branch.Name, branch.Address, branch.Phone, branch.IsActive,
	).Scan(&branch.ID, &branch.CreatedAt, &branch.UpdatedAt)
}

// GetByID fetches a non-deleted branch.
func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*models.Branch, error) {
	query := fmt.Sprintf(`SELECT %s FROM branches WHERE id = $1 AND deleted_at IS NULL`, branchColumns)
	var b models.Branch
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.OrgID, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOrg returns all non-deleted branches of an organization.
func (r *BranchRepository) ListByOrg(ctx context.Context, orgID int64, limit, offset int) ([]models.Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM branches
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY id LIMIT $2 OFFSET $3
	`, branchColumns)
	rows, err := r.db.QueryContext(ctx, query, orgID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.OrgID, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// Update rewrites mutable branch fields.
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	const query = `
		UPDATE branches
		SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		branch.ID, branch.Name, branch.Address, branch.Phone, branch.IsActive,
	).Scan(&branch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a branch deleted.
func (r *BranchRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "branches", id)
}

func softDelete(ctx context.Context, db *sql.DB, table string, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, table)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
