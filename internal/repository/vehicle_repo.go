package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
	"washhub/internal/tenant"
)

const vehicleColumns = `id, org_id, branch_id, customer_id, vehicle_type_id, vehicle_brand_id,
		vehicle_model_id, plate_number, color, year, deleted_at, created_at, updated_at`

// VehicleRepository handles the vehicles table.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository returns repository instance.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	const query = `
		INSERT INTO vehicles
			(org_id, branch_id, customer_id, vehicle_type_id, vehicle_brand_id, vehicle_model_id, plate_number, color, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		v.OrgID, v.BranchID, v.CustomerID, v.VehicleTypeID, v.VehicleBrandID, v.VehicleModelID,
		v.PlateNumber, v.Color, v.Year,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID fetches a non-deleted vehicle.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1 AND deleted_at IS NULL`, vehicleColumns)
	var v models.Vehicle
	err := scanVehicle(r.db.QueryRowContext(ctx, query, id), &v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns vehicles visible to the tenant, optionally for one customer.
func (r *VehicleRepository) List(ctx context.Context, tc tenant.Context, customerID *int64, limit, offset int) ([]models.Vehicle, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	conds, args = tc.Scope(conds, args, "org_id", "branch_id")
	if customerID != nil {
		args = append(args, *customerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	args = append(args, clampLimit(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM vehicles%s ORDER BY id LIMIT $%d OFFSET $%d`,
		vehicleColumns, whereClause(conds), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update rewrites mutable vehicle fields.
func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	const query = `
		UPDATE vehicles
		SET branch_id = $2,
			vehicle_type_id = $3,
			vehicle_brand_id = $4,
			vehicle_model_id = $5,
			plate_number = $6,
			color = $7,
			year = $8,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		v.ID, v.BranchID, v.VehicleTypeID, v.VehicleBrandID, v.VehicleModelID,
		v.PlateNumber, v.Color, v.Year,
	).Scan(&v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a vehicle deleted.
func (r *VehicleRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "vehicles", id)
}

func scanVehicle(row rowScanner, v *models.Vehicle) error {
	return row.Scan(
		&v.ID, &v.OrgID, &v.BranchID, &v.CustomerID, &v.VehicleTypeID, &v.VehicleBrandID,
		&v.VehicleModelID, &v.PlateNumber, &v.Color, &v.Year, &v.DeletedAt, &v.CreatedAt, &v.UpdatedAt,
	)
}
