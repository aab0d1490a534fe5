package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/repository"
)

// OrganizationHandlers serves the caller's own organization.
type OrganizationHandlers struct {
	orgs   *repository.OrganizationRepository
	logger *zap.Logger
}

// NewOrganizationHandlers returns handler.
func NewOrganizationHandlers(orgs *repository.OrganizationRepository, logger *zap.Logger) *OrganizationHandlers {
	return &OrganizationHandlers{orgs: orgs, logger: logger}
}

// Show handles GET /organization.
func (h *OrganizationHandlers) Show(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	org, err := h.orgs.GetByID(r.Context(), tc.OrgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.logger.Error("failed to load organization", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// Update handles PUT /organization.
func (h *OrganizationHandlers) Update(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name" validate:"required"`
		Phone    string `json:"phone"`
		IsActive bool   `json:"is_active"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := h.orgs.GetByID(r.Context(), tc.OrgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	org.Name = req.Name
	org.Phone = req.Phone
	org.IsActive = req.IsActive

	if err := h.orgs.Update(r.Context(), org); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}
