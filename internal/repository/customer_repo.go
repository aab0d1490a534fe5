package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"washhub/internal/models"
	"washhub/internal/tenant"
)

const customerColumns = `id, org_id, branch_id, full_name, phone, email, notes, deleted_at, created_at, updated_at`

// CustomerRepository handles the customers table.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository returns repository instance.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	const query = `
		INSERT INTO customers (org_id, branch_id, full_name, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		c.OrgID, c.BranchID, c.FullName, c.Phone, c.Email, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches a non-deleted customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1 AND deleted_at IS NULL`, customerColumns)
	var c models.Customer
	err := scanCustomer(r.db.QueryRowContext(ctx, query, id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns customers visible to the tenant.
func (r *CustomerRepository) List(ctx context.Context, tc tenant.Context, limit, offset int) ([]models.Customer, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	conds, args = tc.Scope(conds, args, "org_id", "branch_id")
	args = append(args, clampLimit(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM customers%s ORDER BY id LIMIT $%d OFFSET $%d`,
		customerColumns, whereClause(conds), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Update rewrites mutable customer fields.
func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	const query = `
		UPDATE customers
		SET branch_id = $2, full_name = $3, phone = $4, email = $5, notes = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.BranchID, c.FullName, c.Phone, c.Email, c.Notes,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SoftDelete marks a customer deleted.
func (r *CustomerRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "customers", id)
}

func scanCustomer(row rowScanner, c *models.Customer) error {
	return row.Scan(
		&c.ID, &c.OrgID, &c.BranchID, &c.FullName, &c.Phone, &c.Email, &c.Notes,
		&c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
}
