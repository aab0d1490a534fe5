package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
)

// BranchHandlers serves branch CRUD. Branches have no branch column of
// their own: a branch-scoped caller may read its org's branches but only
// mutate its own.
type BranchHandlers struct {
	branches *repository.BranchRepository
	logger   *zap.Logger
}

// NewBranchHandlers returns handler.
func NewBranchHandlers(branches *repository.BranchRepository, logger *zap.Logger) *BranchHandlers {
	return &BranchHandlers{branches: branches, logger: logger}
}

type branchRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

// List handles GET /branches.
func (h *BranchHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	limit, offset := paging(r)

	if tc.IsBranchScoped() {
		branch, err := h.branches.GetByID(r.Context(), *tc.BranchID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []interface{}{branch})
		return
	}

	branches, err := h.branches.ListByOrg(r.Context(), tc.OrgID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list branches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

// Create handles POST /branches.
func (h *BranchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	if tc.IsBranchScoped() {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	var req branchRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	branch := &models.Branch{
		OrgID:    tc.OrgID,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
	if err := h.branches.Create(r.Context(), branch); err != nil {
		h.logger.Error("failed to create branch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, branch)
}

// Show handles GET /branches/{id}.
func (h *BranchHandlers) Show(w http.ResponseWriter, r *http.Request) {
	branch, ok := h.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

// Update handles PUT /branches/{id}.
func (h *BranchHandlers) Update(w http.ResponseWriter, r *http.Request) {
	branch, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req branchRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	branch.Name = req.Name
	branch.Address = req.Address
	branch.Phone = req.Phone
	branch.IsActive = req.IsActive
	if err := h.branches.Update(r.Context(), branch); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

// Destroy handles DELETE /branches/{id}.
func (h *BranchHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	branch, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.branches.SoftDelete(r.Context(), branch.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// authorize loads the addressed branch and checks it against the tenant
// scope: same org always, same branch for branch-scoped callers.
func (h *BranchHandlers) authorize(w http.ResponseWriter, r *http.Request) (*models.Branch, bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	branch, err := h.branches.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !tc.AllowsBranch(branch.OrgID, branch.ID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return nil, false
	}
	return branch, true
}
