package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
)

const serviceColumns = `id, org_id, name, description, duration_minutes, is_active, deleted_at, created_at, updated_at`

// ServiceRepository handles the services (catalog of offered work) table.
type ServiceRepository struct {
	db *sql.DB
}

// NewServiceRepository returns repository instance.
func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create inserts a service.
func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	const query = `
		INSERT INTO services (org_id, name, description, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		s.OrgID, s.Name, s.Description, s.DurationMinutes, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID fetches a non-deleted service.
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1 AND deleted_at IS NULL`, serviceColumns)
	var s models.Service
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.OrgID, &s.Name, &s.Description, &s.DurationMinutes, &s.IsActive,
		&s.DeletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByOrg returns services of an organization.
func (r *ServiceRepository) ListByOrg(ctx context.Context, orgID int64, limit, offset int) ([]models.Service, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM services
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY id LIMIT $2 OFFSET $3
	`, serviceColumns)
	rows, err := r.db.QueryContext(ctx, query, orgID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.OrgID, &s.Name, &s.Description, &s.DurationMinutes, &s.IsActive, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// Update rewrites mutable service fields.
func (r *ServiceRepository) Update(ctx context.Context, s *models.Service) error {
	const query = `
		UPDATE services
		SET name = $2, description = $3, duration_minutes = $4, is_active = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.IsActive,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a service deleted.
func (r *ServiceRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "services", id)
}
