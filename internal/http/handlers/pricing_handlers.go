package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/service"
	"washhub/internal/tenant"
)

// PricingAPI is the pricing surface used by the handlers.
type PricingAPI interface {
	Lookup(ctx context.Context, tc tenant.Context, q service.LookupQuery) (*models.PricingRule, service.MatchTier, error)
	CreateRule(ctx context.Context, tc tenant.Context, in service.RuleInput) (*models.PricingRule, error)
	UpdateRule(ctx context.Context, tc tenant.Context, id int64, in service.RuleInput) (*models.PricingRule, error)
	DeleteRule(ctx context.Context, tc tenant.Context, id int64) error
	GetRule(ctx context.Context, tc tenant.Context, id int64) (*models.PricingRule, error)
	ListRules(ctx context.Context, tc tenant.Context, serviceID *int64, limit, offset int) ([]models.PricingRule, error)
}

// PricingHandlers serves pricing-rule CRUD and the price lookup endpoint.
type PricingHandlers struct {
	pricing PricingAPI
	logger  *zap.Logger
}

// NewPricingHandlers returns handler.
func NewPricingHandlers(pricing PricingAPI, logger *zap.Logger) *PricingHandlers {
	return &PricingHandlers{pricing: pricing, logger: logger}
}

type pricingRuleRequest struct {
	BranchID       int64           `json:"branch_id" validate:"required"`
	ServiceID      int64           `json:"service_id" validate:"required"`
	VehicleTypeID  int64           `json:"vehicle_type_id" validate:"required"`
	VehicleBrandID *int64          `json:"vehicle_brand_id"`
	VehicleModelID *int64          `json:"vehicle_model_id"`
	Price          decimal.Decimal `json:"price"`
	IsActive       bool            `json:"is_active"`
}

func (req pricingRuleRequest) toInput() service.RuleInput {
	return service.RuleInput{
		BranchID:       req.BranchID,
		ServiceID:      req.ServiceID,
		VehicleTypeID:  req.VehicleTypeID,
		VehicleBrandID: req.VehicleBrandID,
		VehicleModelID: req.VehicleModelID,
		Price:          req.Price,
		IsActive:       req.IsActive,
	}
}

// Lookup handles GET /price-lookup. branch_id, service_id and
// vehicle_type_id are required; vehicle_brand_id and vehicle_model_id are
// optional and drive the fallback tiers.
func (h *PricingHandlers) Lookup(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var q service.LookupQuery
	required := map[string]*int64{
		"branch_id":       &q.BranchID,
		"service_id":      &q.ServiceID,
		"vehicle_type_id": &q.VehicleTypeID,
	}
	for name, dst := range required {
		v, err := queryInt64(r, name)
		if err != nil || v == nil {
			writeError(w, http.StatusBadRequest, name+" is required")
			return
		}
		*dst = *v
	}
	var err error
	if q.VehicleBrandID, err = queryInt64(r, "vehicle_brand_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle_brand_id")
		return
	}
	if q.VehicleModelID, err = queryInt64(r, "vehicle_model_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle_model_id")
		return
	}

	rule, tier, err := h.pricing.Lookup(r.Context(), tc, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rule":       rule,
		"price":      rule.Price,
		"match_tier": tier,
	})
}

// List handles GET /pricing-rules?service_id=.
func (h *PricingHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	serviceID, err := queryInt64(r, "service_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service_id")
		return
	}
	limit, offset := paging(r)

	rules, err := h.pricing.ListRules(r.Context(), tc, serviceID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list pricing rules", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// Create handles POST /pricing-rules.
func (h *PricingHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req pricingRuleRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := h.pricing.CreateRule(r.Context(), tc, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// Show handles GET /pricing-rules/{id}.
func (h *PricingHandlers) Show(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rule, err := h.pricing.GetRule(r.Context(), tc, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Update handles PUT /pricing-rules/{id}.
func (h *PricingHandlers) Update(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req pricingRuleRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := h.pricing.UpdateRule(r.Context(), tc, id, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Destroy handles DELETE /pricing-rules/{id}.
func (h *PricingHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.pricing.DeleteRule(r.Context(), tc, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
