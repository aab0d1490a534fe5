package models

import "time"

// VehicleType is org-scoped reference data ("sedan", "SUV", "truck").
type VehicleType struct {
	ID        int64      `db:"id" json:"id"`
	OrgID     int64      `db:"org_id" json:"org_id"`
	Name      string     `db:"name" json:"name"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// VehicleBrand belongs to a vehicle type.
type VehicleBrand struct {
	ID            int64      `db:"id" json:"id"`
	OrgID         int64      `db:"org_id" json:"org_id"`
	VehicleTypeID int64      `db:"vehicle_type_id" json:"vehicle_type_id"`
	Name          string     `db:"name" json:"name"`
	DeletedAt     *time.Time `db:"deleted_at" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// VehicleModel belongs to a vehicle brand.
type VehicleModel struct {
	ID             int64      `db:"id" json:"id"`
	OrgID          int64      `db:"org_id" json:"org_id"`
	VehicleBrandID int64      `db:"vehicle_brand_id" json:"vehicle_brand_id"`
	Name           string     `db:"name" json:"name"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Service is a unit of work offered by the organization ("exterior wash",
// "full detailing"). Prices live in pricing rules, not here.
type Service struct {
	ID              int64      `db:"id" json:"id"`
	OrgID           int64      `db:"org_id" json:"org_id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
