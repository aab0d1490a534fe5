package repository

import (
	"context"
	"database/sql"
	"errors"

	"washhub/internal/models"
)

// OrganizationRepository handles the organizations table.
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository returns repository instance.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts an organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	const query = `
		INSERT INTO organizations (name, phone, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, org.Name, org.Phone, org.IsActive).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID fetches a non-deleted organization.
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	const query = `
		SELECT id, name, phone, is_active, deleted_at, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`
	var org models.Organization
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Phone, &org.IsActive, &org.DeletedAt, &org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update rewrites mutable organization fields.
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	const query = `
		UPDATE organizations
		SET name = $2, phone = $3, is_active = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, org.ID, org.Name, org.Phone, org.IsActive).Scan(&org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
