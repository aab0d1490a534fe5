package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washhub/internal/tenant"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func ruleColumns() []string {
	return []string{
		"id", "org_id", "branch_id", "service_id", "vehicle_type_id",
		"vehicle_brand_id", "vehicle_model_id", "price", "is_active",
		"deleted_at", "created_at", "updated_at",
	}
}

func TestPricingRuleRepository_FindActive_NullBrandAndModel(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM pricing_rules`).
		WithArgs(int64(1), int64(10), int64(2), nil, nil).
		WillReturnRows(sqlmock.NewRows(ruleColumns()).
			AddRow(int64(42), int64(1), int64(1), int64(10), int64(2), nil, nil, "20.00", true, nil, now, now))

	rule, err := repo.FindActive(context.Background(), 1, 10, 2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rule.ID)
	assert.Nil(t, rule.VehicleBrandID)
	assert.Nil(t, rule.VehicleModelID)
	assert.Equal(t, "20", rule.Price.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_FindActive_NoMatch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	brandID := int64(7)
	mock.ExpectQuery(`SELECT (.+) FROM pricing_rules`).
		WithArgs(int64(1), int64(10), int64(2), brandID, nil).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), 1, 10, 2, &brandID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_ExistsTuple_ExcludesOwnRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	brandID := int64(7)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1), int64(10), int64(2), brandID, nil, int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsTuple(context.Background(), 1, 10, 2, &brandID, nil, 42)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_ExistsTuple_OccupiedTuple(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1), int64(10), int64(2), nil, nil, int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsTuple(context.Background(), 1, 10, 2, nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_List_BranchScopedTenant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	branchID := int64(3)
	serviceID := int64(10)
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM pricing_rules WHERE deleted_at IS NULL AND org_id = \$1 AND branch_id = \$2 AND service_id = \$3`).
		WithArgs(int64(1), branchID, serviceID, 100, 0).
		WillReturnRows(sqlmock.NewRows(ruleColumns()).
			AddRow(int64(5), int64(1), branchID, serviceID, int64(2), nil, nil, "20.00", true, nil, now, now))

	tc := tenant.NewContext(1, &branchID)
	rules, err := repo.List(context.Background(), tc, &serviceID, 0, 0)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(5), rules[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_SoftDelete_MissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pricing_rules SET deleted_at = now()")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingRuleRepository_SoftDelete_OK(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPricingRuleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pricing_rules SET deleted_at = now()")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), 42))
	require.NoError(t, mock.ExpectationsWereMet())
}
