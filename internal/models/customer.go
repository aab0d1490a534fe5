package models

import "time"

// Customer is a client of the organization, optionally pinned to a branch.
type Customer struct {
	ID        int64      `db:"id" json:"id"`
	OrgID     int64      `db:"org_id" json:"org_id"`
	BranchID  *int64     `db:"branch_id" json:"branch_id,omitempty"`
	FullName  string     `db:"full_name" json:"full_name"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email"`
	Notes     string     `db:"notes" json:"notes"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Vehicle belongs to a customer and references the vehicle catalog.
type Vehicle struct {
	ID             int64      `db:"id" json:"id"`
	OrgID          int64      `db:"org_id" json:"org_id"`
	BranchID       *int64     `db:"branch_id" json:"branch_id,omitempty"`
	CustomerID     int64      `db:"customer_id" json:"customer_id"`
	VehicleTypeID  int64      `db:"vehicle_type_id" json:"vehicle_type_id"`
	VehicleBrandID *int64     `db:"vehicle_brand_id" json:"vehicle_brand_id,omitempty"`
	VehicleModelID *int64     `db:"vehicle_model_id" json:"vehicle_model_id,omitempty"`
	PlateNumber    string     `db:"plate_number" json:"plate_number"`
	Color          string     `db:"color" json:"color"`
	Year           int        `db:"year" json:"year,omitempty"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
