package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
	"washhub/internal/tenant"
)

var (
	// ErrNoPricingFound means no rule matched at any tier.
	ErrNoPricingFound = errors.New("pricing: no pricing found")
	// ErrDuplicateRule means an equivalent five-part tuple already exists.
	ErrDuplicateRule = errors.New("pricing: equivalent rule already exists")
	// ErrRuleNotFound means the addressed rule does not exist (or is deleted).
	ErrRuleNotFound = errors.New("pricing: rule not found")
	// ErrForbidden means the addressed rule is outside the caller's tenant scope.
	ErrForbidden = errors.New("pricing: rule outside tenant scope")
	// ErrInvalidInput wraps rejected request payloads.
	ErrInvalidInput = errors.New("pricing: invalid input")
)

const uniqueViolationCode = "23505"

// MatchTier labels how specific the matched rule is.
type MatchTier string

const (
	TierExactModel MatchTier = "exact_model"
	TierBrandLevel MatchTier = "brand_level"
	TierTypeLevel  MatchTier = "type_level"
)

// PricingRuleStore is the storage contract for pricing rules.
type PricingRuleStore interface {
	Create(ctx context.Context, rule *models.PricingRule) error
	GetByID(ctx context.Context, id int64) (*models.PricingRule, error)
	List(ctx context.Context, tc tenant.Context, serviceID *int64, limit, offset int) ([]models.PricingRule, error)
	Update(ctx context.Context, rule *models.PricingRule) error
	SoftDelete(ctx context.Context, id int64) error
	FindActive(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) (*models.PricingRule, error)
	ExistsTuple(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64, excludeID int64) (bool, error)
}

// BranchStore resolves branches for ownership checks on rule writes.
type BranchStore interface {
	GetByID(ctx context.Context, id int64) (*models.Branch, error)
}

// LookupCache fronts price lookups. Implementations must degrade silently;
// a nil PricingService cache disables caching entirely.
type LookupCache interface {
	Get(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) (*models.PricingRule, MatchTier, bool)
	Save(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64, rule *models.PricingRule, tier MatchTier)
	Invalidate(ctx context.Context, branchID, serviceID int64)
}

// BranchBroadcaster pushes price-change events to branch subscribers.
type BranchBroadcaster interface {
	Broadcast(branchID int64, payload interface{})
}

// PriceEvent is the frame pushed to branch price boards on rule changes.
type PriceEvent struct {
	Event     string           `json:"event"`
	RuleID    int64            `json:"rule_id"`
	BranchID  int64            `json:"branch_id"`
	ServiceID int64            `json:"service_id"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// PricingService resolves prices through tiered fallback and guards rule
// writes against tuple duplicates.
type PricingService struct {
	rules    PricingRuleStore
	branches BranchStore
	cache    LookupCache
	board    BranchBroadcaster
	logger   *zap.Logger
}

// NewPricingService builds the service. cache and board may be nil.
func NewPricingService(rules PricingRuleStore, branches BranchStore, cache LookupCache, board BranchBroadcaster, logger *zap.Logger) *PricingService {
	return &PricingService{
		rules:    rules,
		branches: branches,
		cache:    cache,
		board:    board,
		logger:   logger,
	}
}

// LookupQuery identifies the vehicle and context a price is asked for.
// Brand and model are optional.
type LookupQuery struct {
	BranchID       int64
	ServiceID      int64
	VehicleTypeID  int64
	VehicleBrandID *int64
	VehicleModelID *int64
}

// tierFilter is one rung of the fallback ladder: the label plus the exact
// brand/model predicate to query with (nil means IS NULL).
type tierFilter struct {
	tier    MatchTier
	brandID *int64
	modelID *int64
}

// matchTiers returns the fallback ladder for a query, most specific first.
// Each entry is an independent store filter; the first hit wins.
func (q LookupQuery) matchTiers() []tierFilter {
	var tiers []tierFilter
	if q.VehicleBrandID != nil && q.VehicleModelID != nil {
		tiers = append(tiers, tierFilter{TierExactModel, q.VehicleBrandID, q.VehicleModelID})
	}
	if q.VehicleBrandID != nil {
		tiers = append(tiers, tierFilter{TierBrandLevel, q.VehicleBrandID, nil})
	}
	return append(tiers, tierFilter{TierTypeLevel, nil, nil})
}

// Lookup resolves the single applicable price for a branch/service/vehicle
// combination. Tiers are walked most-specific-first: exact_model, then
// brand_level, then type_level. There is no fallback past type_level and no
// cross-branch or cross-service fallback. Read-only and idempotent.
func (s *PricingService) Lookup(ctx context.Context, tc tenant.Context, q LookupQuery) (*models.PricingRule, MatchTier, error) {
	if q.BranchID == 0 || q.ServiceID == 0 || q.VehicleTypeID == 0 {
		return nil, "", fmt.Errorf("%w: branch_id, service_id and vehicle_type_id are required", ErrInvalidInput)
	}
	if tc.IsBranchScoped() && *tc.BranchID != q.BranchID {
		return nil, "", ErrForbidden
	}

	if s.cache != nil {
		if rule, tier, ok := s.cache.Get(ctx, q.BranchID, q.ServiceID, q.VehicleTypeID, q.VehicleBrandID, q.VehicleModelID); ok {
			if rule.OrgID == tc.OrgID {
				return rule, tier, nil
			}
		}
	}

	for _, t := range q.matchTiers() {
		rule, err := s.rules.FindActive(ctx, q.BranchID, q.ServiceID, q.VehicleTypeID, t.brandID, t.modelID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		if rule.OrgID != tc.OrgID {
			return nil, "", ErrForbidden
		}
		if s.cache != nil {
			s.cache.Save(ctx, q.BranchID, q.ServiceID, q.VehicleTypeID, q.VehicleBrandID, q.VehicleModelID, rule, t.tier)
		}
		return rule, t.tier, nil
	}

	return nil, "", ErrNoPricingFound
}

// RuleInput carries the writable fields of a pricing rule.
type RuleInput struct {
	BranchID       int64
	ServiceID      int64
	VehicleTypeID  int64
	VehicleBrandID *int64
	VehicleModelID *int64
	Price          decimal.Decimal
	IsActive       bool
}

func (in RuleInput) validate() error {
	if in.BranchID == 0 || in.ServiceID == 0 || in.VehicleTypeID == 0 {
		return fmt.Errorf("%w: branch_id, service_id and vehicle_type_id are required", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	// A model-only rule could never be matched by any tier, so it is
	// rejected up front instead of persisted as dead data.
	if in.VehicleModelID != nil && in.VehicleBrandID == nil {
		return fmt.Errorf("%w: vehicle_model_id requires vehicle_brand_id", ErrInvalidInput)
	}
	return nil
}

// authorizeBranch verifies the target branch exists and belongs to the
// caller's org. Without it an org-wide caller could plant a rule on another
// org's branch, occupying that branch's tuple.
func (s *PricingService) authorizeBranch(ctx context.Context, tc tenant.Context, branchID int64) error {
	if tc.IsBranchScoped() && *tc.BranchID != branchID {
		return ErrForbidden
	}
	branch, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: branch does not exist", ErrInvalidInput)
		}
		return err
	}
	if !tc.AllowsOrg(branch.OrgID) {
		return ErrForbidden
	}
	return nil
}

// isDuplicate checks the five-part tuple against existing non-deleted rules.
// Absent brand/model match IS NULL rows only, never "any value". excludeID
// keeps an update from conflicting with the row itself.
func (s *PricingService) isDuplicate(ctx context.Context, in RuleInput, excludeID int64) (bool, error) {
	return s.rules.ExistsTuple(ctx, in.BranchID, in.ServiceID, in.VehicleTypeID, in.VehicleBrandID, in.VehicleModelID, excludeID)
}

// CreateRule validates, runs the duplicate guard and inserts a rule.
func (s *PricingService) CreateRule(ctx context.Context, tc tenant.Context, in RuleInput) (*models.PricingRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.authorizeBranch(ctx, tc, in.BranchID); err != nil {
		return nil, err
	}

	dup, err := s.isDuplicate(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateRule
	}

	rule := &models.PricingRule{
		OrgID:          tc.OrgID,
		BranchID:       in.BranchID,
		ServiceID:      in.ServiceID,
		VehicleTypeID:  in.VehicleTypeID,
		VehicleBrandID: in.VehicleBrandID,
		VehicleModelID: in.VehicleModelID,
		Price:          in.Price,
		IsActive:       in.IsActive,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		// The guard races concurrent writers; the unique index is the backstop.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRule
		}
		return nil, err
	}

	s.afterWrite(ctx, "pricing_rule.created", rule)
	return rule, nil
}

// UpdateRule validates, re-runs the duplicate guard excluding the rule
// itself, and rewrites it.
func (s *PricingService) UpdateRule(ctx context.Context, tc tenant.Context, id int64, in RuleInput) (*models.PricingRule, error) {
	rule, err := s.GetRule(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.authorizeBranch(ctx, tc, in.BranchID); err != nil {
		return nil, err
	}

	dup, err := s.isDuplicate(ctx, in, id)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateRule
	}

	prevBranchID, prevServiceID := rule.BranchID, rule.ServiceID
	rule.BranchID = in.BranchID
	rule.ServiceID = in.ServiceID
	rule.VehicleTypeID = in.VehicleTypeID
	rule.VehicleBrandID = in.VehicleBrandID
	rule.VehicleModelID = in.VehicleModelID
	rule.Price = in.Price
	rule.IsActive = in.IsActive

	if err := s.rules.Update(ctx, rule); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRule
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if s.cache != nil && (prevBranchID != rule.BranchID || prevServiceID != rule.ServiceID) {
		s.cache.Invalidate(ctx, prevBranchID, prevServiceID)
	}
	s.afterWrite(ctx, "pricing_rule.updated", rule)
	return rule, nil
}

// DeleteRule soft-deletes a rule, freeing its tuple.
func (s *PricingService) DeleteRule(ctx context.Context, tc tenant.Context, id int64) error {
	rule, err := s.GetRule(ctx, tc, id)
	if err != nil {
		return err
	}

	if err := s.rules.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRuleNotFound
		}
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, rule.BranchID, rule.ServiceID)
	}
	if s.board != nil {
		s.board.Broadcast(rule.BranchID, PriceEvent{
			Event:     "pricing_rule.deleted",
			RuleID:    rule.ID,
			BranchID:  rule.BranchID,
			ServiceID: rule.ServiceID,
		})
	}
	return nil
}

// GetRule fetches a rule and authorizes it against the tenant scope.
func (s *PricingService) GetRule(ctx context.Context, tc tenant.Context, id int64) (*models.PricingRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if !tc.AllowsBranch(rule.OrgID, rule.BranchID) {
		return nil, ErrForbidden
	}
	return rule, nil
}

// ListRules returns the tenant's rules, optionally for one service.
func (s *PricingService) ListRules(ctx context.Context, tc tenant.Context, serviceID *int64, limit, offset int) ([]models.PricingRule, error) {
	return s.rules.List(ctx, tc, serviceID, limit, offset)
}

func (s *PricingService) afterWrite(ctx context.Context, event string, rule *models.PricingRule) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, rule.BranchID, rule.ServiceID)
	}
	if s.board != nil {
		price := rule.Price
		s.board.Broadcast(rule.BranchID, PriceEvent{
			Event:     event,
			RuleID:    rule.ID,
			BranchID:  rule.BranchID,
			ServiceID: rule.ServiceID,
			Price:     &price,
		})
	}
	s.logger.Info("pricing rule written",
		zap.String("event", event),
		zap.Int64("rule_id", rule.ID),
		zap.Int64("branch_id", rule.BranchID),
		zap.Int64("service_id", rule.ServiceID),
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
