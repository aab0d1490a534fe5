package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
)

// CatalogRepository handles the vehicle catalog: types, brands and models.
// Catalog rows are org-scoped and shared across all branches of the org,
// so no branch filtering applies here.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository returns repository instance.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateType inserts a vehicle type.
func (r *CatalogRepository) CreateType(ctx context.Context, t *models.VehicleType) error {
	const query = `
		INSERT INTO vehicle_types (org_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, t.OrgID, t.Name).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetTypeByID fetches a non-deleted vehicle type.
func (r *CatalogRepository) GetTypeByID(ctx context.Context, id int64) (*models.VehicleType, error) {
	const query = `
		SELECT id, org_id, name, deleted_at, created_at, updated_at
		FROM vehicle_types WHERE id = $1 AND deleted_at IS NULL
	`
	var t models.VehicleType
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.OrgID, &t.Name, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTypes returns vehicle types of an organization.
func (r *CatalogRepository) ListTypes(ctx context.Context, orgID int64) ([]models.VehicleType, error) {
	const query = `
		SELECT id, org_id, name, deleted_at, created_at, updated_at
		FROM vehicle_types WHERE org_id = $1 AND deleted_at IS NULL ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.VehicleType
	for rows.Next() {
		var t models.VehicleType
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// DeleteType soft-deletes a vehicle type.
func (r *CatalogRepository) DeleteType(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "vehicle_types", id)
}

// CreateBrand inserts a vehicle brand under a type.
func (r *CatalogRepository) CreateBrand(ctx context.Context, b *models.VehicleBrand) error {
	const query = `
		INSERT INTO vehicle_brands (org_id, vehicle_type_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, b.OrgID, b.VehicleTypeID, b.Name).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetBrandByID fetches a non-deleted vehicle brand.
func (r *CatalogRepository) GetBrandByID(ctx context.Context, id int64) (*models.VehicleBrand, error) {
	const query = `
		SELECT id, org_id, vehicle_type_id, name, deleted_at, created_at, updated_at
		FROM vehicle_brands WHERE id = $1 AND deleted_at IS NULL
	`
	var b models.VehicleBrand
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.OrgID, &b.VehicleTypeID, &b.Name, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBrands returns brands, optionally narrowed to one vehicle type.
func (r *CatalogRepository) ListBrands(ctx context.Context, orgID int64, vehicleTypeID *int64) ([]models.VehicleBrand, error) {
	conds := []string{"org_id = $1", "deleted_at IS NULL"}
	args := []interface{}{orgID}
	if vehicleTypeID != nil {
		args = append(args, *vehicleTypeID)
		conds = append(conds, fmt.Sprintf("vehicle_type_id = $%d", len(args)))
	}
	query := fmt.Sprintf(`
		SELECT id, org_id, vehicle_type_id, name, deleted_at, created_at, updated_at
		FROM vehicle_brands%s ORDER BY name
	`, whereClause(conds))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.VehicleBrand
	for rows.Next() {
		var b models.VehicleBrand
		if err := rows.Scan(&b.ID, &b.OrgID, &b.VehicleTypeID, &b.Name, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// DeleteBrand soft-deletes a vehicle brand.
func (r *CatalogRepository) DeleteBrand(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "vehicle_brands", id)
}

// CreateModel inserts a vehicle model under a brand.
func (r *CatalogRepository) CreateModel(ctx context.Context, m *models.VehicleModel) error {
	const query = `
		INSERT INTO vehicle_models (org_id, vehicle_brand_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, m.OrgID, m.VehicleBrandID, m.Name).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetModelByID fetches a non-deleted vehicle model.
func (r *CatalogRepository) GetModelByID(ctx context.Context, id int64) (*models.VehicleModel, error) {
	const query = `
		SELECT id, org_id, vehicle_brand_id, name, deleted_at, created_at, updated_at
		FROM vehicle_models WHERE id = $1 AND deleted_at IS NULL
	`
	var m models.VehicleModel
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.OrgID, &m.VehicleBrandID, &m.Name, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListModels returns models, optionally narrowed to one brand.
func (r *CatalogRepository) ListModels(ctx context.Context, orgID int64, brandID *int64) ([]models.VehicleModel, error) {
	conds := []string{"org_id = $1", "deleted_at IS NULL"}
	args := []interface{}{orgID}
	if brandID != nil {
		args = append(args, *brandID)
		conds = append(conds, fmt.Sprintf("vehicle_brand_id = $%d", len(args)))
	}
	query := fmt.Sprintf(`
		SELECT id, org_id, vehicle_brand_id, name, deleted_at, created_at, updated_at
		FROM vehicle_models%s ORDER BY name
	`, whereClause(conds))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modelsList []models.VehicleModel
	for rows.Next() {
		var m models.VehicleModel
		if err := rows.Scan(&m.ID, &m.OrgID, &m.VehicleBrandID, &m.Name, &m.DeletedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		modelsList = append(modelsList, m)
	}
	return modelsList, rows.Err()
}

// DeleteModel soft-deletes a vehicle model.
func (r *CatalogRepository) DeleteModel(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "vehicle_models", id)
}
