package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
	"washhub/internal/tenant"
)

func ptr(v int64) *int64 { return &v }

func ptrEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type fakeRuleStore struct {
	rules  []*models.PricingRule
	nextID int64
}

func (s *fakeRuleStore) Create(_ context.Context, rule *models.PricingRule) error {
	s.nextID++
	rule.ID = s.nextID
	stored := *rule
	s.rules = append(s.rules, &stored)
	return nil
}

func (s *fakeRuleStore) GetByID(_ context.Context, id int64) (*models.PricingRule, error) {
	for _, r := range s.rules {
		if r.ID == id && r.DeletedAt == nil {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeRuleStore) List(_ context.Context, tc tenant.Context, serviceID *int64, _, _ int) ([]models.PricingRule, error) {
	var out []models.PricingRule
	for _, r := range s.rules {
		if r.DeletedAt != nil || !tc.AllowsBranch(r.OrgID, r.BranchID) {
			continue
		}
		if serviceID != nil && r.ServiceID != *serviceID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *fakeRuleStore) Update(_ context.Context, rule *models.PricingRule) error {
	for i, r := range s.rules {
		if r.ID == rule.ID && r.DeletedAt == nil {
			stored := *rule
			s.rules[i] = &stored
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeRuleStore) SoftDelete(_ context.Context, id int64) error {
	for _, r := range s.rules {
		if r.ID == id && r.DeletedAt == nil {
			now := r.CreatedAt
			r.DeletedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeRuleStore) FindActive(_ context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) (*models.PricingRule, error) {
	for _, r := range s.rules {
		if r.DeletedAt != nil || !r.IsActive {
			continue
		}
		if r.BranchID != branchID || r.ServiceID != serviceID || r.VehicleTypeID != vehicleTypeID {
			continue
		}
		if ptrEq(r.VehicleBrandID, brandID) && ptrEq(r.VehicleModelID, modelID) {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeRuleStore) ExistsTuple(_ context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64, excludeID int64) (bool, error) {
	for _, r := range s.rules {
		if r.DeletedAt != nil || r.ID == excludeID {
			continue
		}
		if r.BranchID == branchID && r.ServiceID == serviceID && r.VehicleTypeID == vehicleTypeID &&
			ptrEq(r.VehicleBrandID, brandID) && ptrEq(r.VehicleModelID, modelID) {
			return true, nil
		}
	}
	return false, nil
}

type fakeBranchStore struct {
	orgByBranch map[int64]int64
}

func (s *fakeBranchStore) GetByID(_ context.Context, id int64) (*models.Branch, error) {
	orgID, ok := s.orgByBranch[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.Branch{ID: id, OrgID: orgID, IsActive: true}, nil
}

// org 1 branches used by most tests.
func org1Branches() *fakeBranchStore {
	return &fakeBranchStore{orgByBranch: map[int64]int64{1: 1, 2: 1, 4: 1, 5: 1}}
}

func seedRule(t *testing.T, store *fakeRuleStore, branchID, serviceID, typeID int64, brandID, modelID *int64, price float64) *models.PricingRule {
	t.Helper()
	rule := &models.PricingRule{
		OrgID:          1,
		BranchID:       branchID,
		ServiceID:      serviceID,
		VehicleTypeID:  typeID,
		VehicleBrandID: brandID,
		VehicleModelID: modelID,
		Price:          decimal.NewFromFloat(price),
		IsActive:       true,
	}
	require.NoError(t, store.Create(context.Background(), rule))
	return rule
}

func newTestService(store PricingRuleStore) *PricingService {
	return NewPricingService(store, org1Branches(), nil, nil, zap.NewNop())
}

func orgWide() tenant.Context { return tenant.NewContext(1, nil) }

func TestLookup_MostSpecificWins(t *testing.T) {
	store := &fakeRuleStore{}
	typeRule := seedRule(t, store, 1, 10, 2, nil, nil, 20)
	brandRule := seedRule(t, store, 1, 10, 2, ptr(7), nil, 25)
	modelRule := seedRule(t, store, 1, 10, 2, ptr(7), ptr(3), 30)
	svc := newTestService(store)

	query := LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7), VehicleModelID: ptr(3)}

	rule, tier, err := svc.Lookup(context.Background(), orgWide(), query)
	require.NoError(t, err)
	assert.Equal(t, modelRule.ID, rule.ID)
	assert.Equal(t, TierExactModel, tier)

	require.NoError(t, store.SoftDelete(context.Background(), modelRule.ID))
	rule, tier, err = svc.Lookup(context.Background(), orgWide(), query)
	require.NoError(t, err)
	assert.Equal(t, brandRule.ID, rule.ID)
	assert.Equal(t, TierBrandLevel, tier)

	require.NoError(t, store.SoftDelete(context.Background(), brandRule.ID))
	rule, tier, err = svc.Lookup(context.Background(), orgWide(), query)
	require.NoError(t, err)
	assert.Equal(t, typeRule.ID, rule.ID)
	assert.Equal(t, TierTypeLevel, tier)
}

func TestLookup_BrandFallsBackToType(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	seedRule(t, store, 1, 10, 2, ptr(7), nil, 25)
	svc := newTestService(store)

	rule, tier, err := svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, TierBrandLevel, tier)
	assert.True(t, rule.Price.Equal(decimal.NewFromInt(25)))

	rule, tier, err = svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, TierTypeLevel, tier)
	assert.True(t, rule.Price.Equal(decimal.NewFromInt(20)))
}

func TestLookup_TypeRuleCoversSpecificVehicle(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	rule, tier, err := svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7), VehicleModelID: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, TierTypeLevel, tier)
	assert.True(t, rule.Price.Equal(decimal.NewFromInt(20)))
}

func TestLookup_NoRuleAtAnyTier(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 11, 2, nil, nil, 20) // other service
	svc := newTestService(store)

	_, _, err := svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7), VehicleModelID: ptr(3)})
	assert.ErrorIs(t, err, ErrNoPricingFound)
}

func TestLookup_NoCrossBranchFallback(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 2, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	_, _, err := svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2})
	assert.ErrorIs(t, err, ErrNoPricingFound)
}

func TestLookup_InactiveRuleIgnored(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	store.rules[0].IsActive = false
	svc := newTestService(store)

	_, _, err := svc.Lookup(context.Background(), orgWide(),
		LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2})
	assert.ErrorIs(t, err, ErrNoPricingFound)
}

func TestLookup_MissingRequiredIDs(t *testing.T) {
	svc := newTestService(&fakeRuleStore{})

	_, _, err := svc.Lookup(context.Background(), orgWide(), LookupQuery{ServiceID: 10, VehicleTypeID: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookup_BranchScopedCallerDeniedOtherBranch(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 5, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	tc := tenant.NewContext(1, ptr(3))
	_, _, err := svc.Lookup(context.Background(), tc,
		LookupQuery{BranchID: 5, ServiceID: 10, VehicleTypeID: 2})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLookup_Idempotent(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, ptr(7), nil, 25)
	svc := newTestService(store)

	query := LookupQuery{BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7)}
	first, firstTier, err := svc.Lookup(context.Background(), orgWide(), query)
	require.NoError(t, err)
	second, secondTier, err := svc.Lookup(context.Background(), orgWide(), query)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, firstTier, secondTier)
}

func TestCreateRule_DuplicateTuple(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(30), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestCreateRule_NullBrandDistinctFromBrand(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	rule, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(5),
		Price: decimal.NewFromInt(25), IsActive: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, rule.ID)
}

func TestCreateRule_ModelRequiresBrand(t *testing.T) {
	svc := newTestService(&fakeRuleStore{})

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleModelID: ptr(3),
		Price: decimal.NewFromInt(25), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateRule_NegativePrice(t *testing.T) {
	svc := newTestService(&fakeRuleStore{})

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2,
		Price: decimal.NewFromInt(-1), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateRule_BranchScopedCallerDeniedOtherBranch(t *testing.T) {
	svc := newTestService(&fakeRuleStore{})

	tc := tenant.NewContext(1, ptr(3))
	_, err := svc.CreateRule(context.Background(), tc, RuleInput{
		BranchID: 4, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(20), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

type conflictingStore struct {
	*fakeRuleStore
}

func (s *conflictingStore) Create(context.Context, *models.PricingRule) error {
	return &pgconn.PgError{Code: "23505"}
}

func TestCreateRule_UniqueViolationBackstop(t *testing.T) {
	// A concurrent writer slipping past the guard surfaces as Conflict,
	// not as a server fault.
	svc := newTestService(&conflictingStore{&fakeRuleStore{}})

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(20), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestCreateRule_ForeignOrgBranchDenied(t *testing.T) {
	store := &fakeRuleStore{}
	branches := &fakeBranchStore{orgByBranch: map[int64]int64{77: 2}}
	input := RuleInput{
		BranchID: 77, ServiceID: 10, VehicleTypeID: 2,
		Price: decimal.NewFromInt(20), IsActive: true,
	}

	// An org-1 caller may not plant a rule on org 2's branch.
	svc := NewPricingService(store, branches, nil, nil, zap.NewNop())
	_, err := svc.CreateRule(context.Background(), tenant.NewContext(1, nil), input)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.rules)

	// The owning org still holds the tuple and its lookup resolves.
	rule, err := svc.CreateRule(context.Background(), tenant.NewContext(2, nil), input)
	require.NoError(t, err)
	assert.NotZero(t, rule.ID)

	got, tier, err := svc.Lookup(context.Background(), tenant.NewContext(2, nil),
		LookupQuery{BranchID: 77, ServiceID: 10, VehicleTypeID: 2})
	require.NoError(t, err)
	assert.Equal(t, rule.ID, got.ID)
	assert.Equal(t, TierTypeLevel, tier)
}

func TestCreateRule_UnknownBranch(t *testing.T) {
	svc := newTestService(&fakeRuleStore{})

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 99, ServiceID: 10, VehicleTypeID: 2,
		Price: decimal.NewFromInt(20), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRule_ForeignOrgBranchDenied(t *testing.T) {
	store := &fakeRuleStore{}
	rule := seedRule(t, store, 1, 10, 2, nil, nil, 20)
	branches := &fakeBranchStore{orgByBranch: map[int64]int64{1: 1, 77: 2}}
	svc := NewPricingService(store, branches, nil, nil, zap.NewNop())

	_, err := svc.UpdateRule(context.Background(), orgWide(), rule.ID, RuleInput{
		BranchID: 77, ServiceID: 10, VehicleTypeID: 2,
		Price: decimal.NewFromInt(20), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRule_DoesNotConflictWithItself(t *testing.T) {
	store := &fakeRuleStore{}
	rule := seedRule(t, store, 1, 10, 2, ptr(7), nil, 25)
	svc := newTestService(store)

	updated, err := svc.UpdateRule(context.Background(), orgWide(), rule.ID, RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, VehicleBrandID: ptr(7),
		Price: decimal.NewFromInt(27), IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(27)))
}

func TestUpdateRule_ConflictsWithOtherRule(t *testing.T) {
	store := &fakeRuleStore{}
	seedRule(t, store, 1, 10, 2, nil, nil, 20)
	other := seedRule(t, store, 1, 10, 2, ptr(7), nil, 25)
	svc := newTestService(store)

	_, err := svc.UpdateRule(context.Background(), orgWide(), other.ID, RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2,
		Price: decimal.NewFromInt(25), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrDuplicateRule)
}

func TestUpdateRule_ForbiddenOutsideOrg(t *testing.T) {
	store := &fakeRuleStore{}
	rule := seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	tc := tenant.NewContext(99, nil)
	_, err := svc.UpdateRule(context.Background(), tc, rule.ID, RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(20), IsActive: true,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRule_FreesTupleForReuse(t *testing.T) {
	store := &fakeRuleStore{}
	rule := seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	require.NoError(t, svc.DeleteRule(context.Background(), orgWide(), rule.ID))

	created, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(22), IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, rule.ID, created.ID)
}

func TestGetRule_NotFoundAfterDelete(t *testing.T) {
	store := &fakeRuleStore{}
	rule := seedRule(t, store, 1, 10, 2, nil, nil, 20)
	svc := newTestService(store)

	require.NoError(t, svc.DeleteRule(context.Background(), orgWide(), rule.ID))
	_, err := svc.GetRule(context.Background(), orgWide(), rule.ID)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

type recordingCache struct {
	invalidated [][2]int64
}

func (c *recordingCache) Get(context.Context, int64, int64, int64, *int64, *int64) (*models.PricingRule, MatchTier, bool) {
	return nil, "", false
}

func (c *recordingCache) Save(context.Context, int64, int64, int64, *int64, *int64, *models.PricingRule, MatchTier) {
}

func (c *recordingCache) Invalidate(_ context.Context, branchID, serviceID int64) {
	c.invalidated = append(c.invalidated, [2]int64{branchID, serviceID})
}

type recordingBoard struct {
	events []PriceEvent
}

func (b *recordingBoard) Broadcast(_ int64, payload interface{}) {
	if ev, ok := payload.(PriceEvent); ok {
		b.events = append(b.events, ev)
	}
}

func TestWritePath_InvalidatesCacheAndBroadcasts(t *testing.T) {
	store := &fakeRuleStore{}
	cache := &recordingCache{}
	board := &recordingBoard{}
	svc := NewPricingService(store, org1Branches(), cache, board, zap.NewNop())

	rule, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(20), IsActive: true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRule(context.Background(), orgWide(), rule.ID))

	assert.Equal(t, [][2]int64{{1, 10}, {1, 10}}, cache.invalidated)
	require.Len(t, board.events, 2)
	assert.Equal(t, "pricing_rule.created", board.events[0].Event)
	assert.Equal(t, "pricing_rule.deleted", board.events[1].Event)
}

func TestWritePath_StorageErrorPropagates(t *testing.T) {
	svc := newTestService(&erroringStore{})

	_, err := svc.CreateRule(context.Background(), orgWide(), RuleInput{
		BranchID: 1, ServiceID: 10, VehicleTypeID: 2, Price: decimal.NewFromInt(20), IsActive: true,
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateRule))
}

type erroringStore struct {
	fakeRuleStore
}

func (s *erroringStore) ExistsTuple(context.Context, int64, int64, int64, *int64, *int64, int64) (bool, error) {
	return false, errors.New("storage down")
}
