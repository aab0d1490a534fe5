package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
)

// ServiceHandlers serves the org's catalog of offered services.
type ServiceHandlers struct {
	services *repository.ServiceRepository
	logger   *zap.Logger
}

// NewServiceHandlers returns handler.
func NewServiceHandlers(services *repository.ServiceRepository, logger *zap.Logger) *ServiceHandlers {
	return &ServiceHandlers{services: services, logger: logger}
}

type serviceRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gt=0"`
	IsActive        bool   `json:"is_active"`
}

// List handles GET /services.
func (h *ServiceHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	limit, offset := paging(r)

	services, err := h.services.ListByOrg(r.Context(), tc.OrgID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// Create handles POST /services.
func (h *ServiceHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc := &models.Service{
		OrgID:           tc.OrgID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
	}
	if err := h.services.Create(r.Context(), svc); err != nil {
		h.logger.Error("failed to create service", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// Show handles GET /services/{id}.
func (h *ServiceHandlers) Show(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Update handles PUT /services/{id}.
func (h *ServiceHandlers) Update(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc.Name = req.Name
	svc.Description = req.Description
	svc.DurationMinutes = req.DurationMinutes
	svc.IsActive = req.IsActive
	if err := h.services.Update(r.Context(), svc); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Destroy handles DELETE /services/{id}.
func (h *ServiceHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.services.SoftDelete(r.Context(), svc.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *ServiceHandlers) authorize(w http.ResponseWriter, r *http.Request) (*models.Service, bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	svc, err := h.services.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !tc.AllowsOrg(svc.OrgID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return nil, false
	}
	return svc, true
}
