package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
)

// CatalogHandlers serves the vehicle catalog: types, brands and models.
// Catalog rows are org-wide, so only the org check applies.
type CatalogHandlers struct {
	catalog *repository.CatalogRepository
	logger  *zap.Logger
}

// NewCatalogHandlers returns handler.
func NewCatalogHandlers(catalog *repository.CatalogRepository, logger *zap.Logger) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, logger: logger}
}

// ListTypes handles GET /vehicle-types.
func (h *CatalogHandlers) ListTypes(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	types, err := h.catalog.ListTypes(r.Context(), tc.OrgID)
	if err != nil {
		h.logger.Error("failed to list vehicle types", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// CreateType handles POST /vehicle-types.
func (h *CatalogHandlers) CreateType(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := &models.VehicleType{OrgID: tc.OrgID, Name: req.Name}
	if err := h.catalog.CreateType(r.Context(), t); err != nil {
		h.logger.Error("failed to create vehicle type", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// DestroyType handles DELETE /vehicle-types/{id}.
func (h *CatalogHandlers) DestroyType(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	t, err := h.catalog.GetTypeByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(t.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}
	if err := h.catalog.DeleteType(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ListBrands handles GET /vehicle-brands?vehicle_type_id=.
func (h *CatalogHandlers) ListBrands(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	typeID, err := queryInt64(r, "vehicle_type_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle_type_id")
		return
	}
	brands, err := h.catalog.ListBrands(r.Context(), tc.OrgID, typeID)
	if err != nil {
		h.logger.Error("failed to list vehicle brands", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// CreateBrand handles POST /vehicle-brands.
func (h *CatalogHandlers) CreateBrand(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		VehicleTypeID int64  `json:"vehicle_type_id" validate:"required"`
		Name          string `json:"name" validate:"required"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parent, err := h.catalog.GetTypeByID(r.Context(), req.VehicleTypeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(parent.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	b := &models.VehicleBrand{OrgID: tc.OrgID, VehicleTypeID: req.VehicleTypeID, Name: req.Name}
	if err := h.catalog.CreateBrand(r.Context(), b); err != nil {
		h.logger.Error("failed to create vehicle brand", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// DestroyBrand handles DELETE /vehicle-brands/{id}.
func (h *CatalogHandlers) DestroyBrand(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	b, err := h.catalog.GetBrandByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(b.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}
	if err := h.catalog.DeleteBrand(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ListModels handles GET /vehicle-models?vehicle_brand_id=.
func (h *CatalogHandlers) ListModels(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	brandID, err := queryInt64(r, "vehicle_brand_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle_brand_id")
		return
	}
	list, err := h.catalog.ListModels(r.Context(), tc.OrgID, brandID)
	if err != nil {
		h.logger.Error("failed to list vehicle models", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateModel handles POST /vehicle-models.
func (h *CatalogHandlers) CreateModel(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		VehicleBrandID int64  `json:"vehicle_brand_id" validate:"required"`
		Name           string `json:"name" validate:"required"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	parent, err := h.catalog.GetBrandByID(r.Context(), req.VehicleBrandID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(parent.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	m := &models.VehicleModel{OrgID: tc.OrgID, VehicleBrandID: req.VehicleBrandID, Name: req.Name}
	if err := h.catalog.CreateModel(r.Context(), m); err != nil {
		h.logger.Error("failed to create vehicle model", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// DestroyModel handles DELETE /vehicle-models/{id}.
func (h *CatalogHandlers) DestroyModel(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	m, err := h.catalog.GetModelByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.AllowsOrg(m.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}
	if err := h.catalog.DeleteModel(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
