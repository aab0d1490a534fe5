package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
	"washhub/internal/tenant"
)

const pricingRuleColumns = `id, org_id, branch_id, service_id, vehicle_type_id,
		vehicle_brand_id, vehicle_model_id, price, is_active, deleted_at, created_at, updated_at`

// PricingRuleRepository handles CRUD and tuple lookups for pricing_rules.
type PricingRuleRepository struct {
	db *sql.DB
}

// NewPricingRuleRepository returns repository instance.
func NewPricingRuleRepository(db *sql.DB) *PricingRuleRepository {
	return &PricingRuleRepository{db: db}
}

// Create inserts a new rule and fills in generated fields.
func (r *PricingRuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	const query = `
		INSERT INTO pricing_rules
			(org_id, branch_id, service_id, vehicle_type_id, vehicle_brand_id, vehicle_model_id, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		rule.OrgID,
		rule.BranchID,
		rule.ServiceID,
		rule.VehicleTypeID,
		rule.VehicleBrandID,
		rule.VehicleModelID,
		rule.Price,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

// GetByID fetches a non-deleted rule.
func (r *PricingRuleRepository) GetByID(ctx context.Context, id int64) (*models.PricingRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM pricing_rules WHERE id = $1 AND deleted_at IS NULL`, pricingRuleColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// List returns rules visible to the tenant, optionally narrowed to one service.
func (r *PricingRuleRepository) List(ctx context.Context, tc tenant.Context, serviceID *int64, limit, offset int) ([]models.PricingRule, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	conds, args = tc.Scope(conds, args, "org_id", "branch_id")
	if serviceID != nil {
		args = append(args, *serviceID)
		conds = append(conds, fmt.Sprintf("service_id = $%d", len(args)))
	}
	args = append(args, clampLimit(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM pricing_rules%s ORDER BY id LIMIT $%d OFFSET $%d`,
		pricingRuleColumns, whereClause(conds), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.PricingRule
	for rows.Next() {
		var rule models.PricingRule
		if err := scanPricingRule(rows, &rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Update rewrites the mutable columns of a rule.
func (r *PricingRuleRepository) Update(ctx context.Context, rule *models.PricingRule) error {
	const query = `
		UPDATE pricing_rules
		SET branch_id = $2,
			service_id = $3,
			vehicle_type_id = $4,
			vehicle_brand_id = $5,
			vehicle_model_id = $6,
			price = $7,
			is_active = $8,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rule.ID,
		rule.BranchID,
		rule.ServiceID,
		rule.VehicleTypeID,
		rule.VehicleBrandID,
		rule.VehicleModelID,
		rule.Price,
		rule.IsActive,
	).Scan(&rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a rule deleted, freeing its tuple for reuse.
func (r *PricingRuleRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "pricing_rules", id)
}

// FindActive returns the single active rule matching the exact five-part tuple.
// A nil brandID/modelID matches rows where that column IS NULL, never "any value".
func (r *PricingRuleRepository) FindActive(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) (*models.PricingRule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM pricing_rules
		WHERE branch_id = $1
			AND service_id = $2
			AND vehicle_type_id = $3
			AND vehicle_brand_id IS NOT DISTINCT FROM $4
			AND vehicle_model_id IS NOT DISTINCT FROM $5
			AND is_active = true
			AND deleted_at IS NULL
		LIMIT 1
	`, pricingRuleColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, branchID, serviceID, vehicleTypeID, brandID, modelID))
}

// ExistsTuple reports whether a non-deleted rule already occupies the tuple.
// excludeID skips the row being updated; pass 0 on create.
func (r *PricingRuleRepository) ExistsTuple(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64, excludeID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM pricing_rules
			WHERE branch_id = $1
				AND service_id = $2
				AND vehicle_type_id = $3
				AND vehicle_brand_id IS NOT DISTINCT FROM $4
				AND vehicle_model_id IS NOT DISTINCT FROM $5
				AND deleted_at IS NULL
				AND ($6 = 0 OR id <> $6)
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, branchID, serviceID, vehicleTypeID, brandID, modelID, excludeID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PricingRuleRepository) scanOne(row *sql.Row) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := scanPricingRule(row, &rule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func scanPricingRule(row rowScanner, rule *models.PricingRule) error {
	return row.Scan(
		&rule.ID,
		&rule.OrgID,
		&rule.BranchID,
		&rule.ServiceID,
		&rule.VehicleTypeID,
		&rule.VehicleBrandID,
		&rule.VehicleModelID,
		&rule.Price,
		&rule.IsActive,
		&rule.DeletedAt,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
}
