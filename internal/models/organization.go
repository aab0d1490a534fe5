package models

import "time"

// Organization is the top-level tenant.
type Organization struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Phone     string     `db:"phone" json:"phone"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Branch is a physical location belonging to an organization.
type Branch struct {
	ID        int64      `db:"id" json:"id"`
	OrgID     int64      `db:"org_id" json:"org_id"`
	Name      string     `db:"name" json:"name"`
	Address   string     `db:"address" json:"address"`
	Phone     string     `db:"phone" json:"phone"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
