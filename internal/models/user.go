package models

import "time"

// User is a staff account. BranchID is nil for organization-wide users
// such as org admins with no single-branch assignment.
type User struct {
	ID           int64      `db:"id" json:"id"`
	OrgID        int64      `db:"org_id" json:"org_id"`
	BranchID     *int64     `db:"branch_id" json:"branch_id,omitempty"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
