package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingRule binds a price to a (branch, service, vehicle type) combination,
// optionally narrowed to a brand or to a concrete model. The five-part tuple
// (branch, service, type, brand, model) is unique among non-deleted rows;
// NULL brand/model take part in that uniqueness.
type PricingRule struct {
	ID             int64           `db:"id" json:"id"`
	OrgID          int64           `db:"org_id" json:"org_id"`
	BranchID       int64           `db:"branch_id" json:"branch_id"`
	ServiceID      int64           `db:"service_id" json:"service_id"`
	VehicleTypeID  int64           `db:"vehicle_type_id" json:"vehicle_type_id"`
	VehicleBrandID *int64          `db:"vehicle_brand_id" json:"vehicle_brand_id,omitempty"`
	VehicleModelID *int64          `db:"vehicle_model_id" json:"vehicle_model_id,omitempty"`
	Price          decimal.Decimal `db:"price" json:"price"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	DeletedAt      *time.Time      `db:"deleted_at" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
