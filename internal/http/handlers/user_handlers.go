package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/password"
	"washhub/internal/repository"
)

// UserHandlers serves staff-user CRUD within the caller's tenant.
type UserHandlers struct {
	users  *repository.UserRepository
	hasher password.Hasher
	logger *zap.Logger
}

// NewUserHandlers returns handler.
func NewUserHandlers(users *repository.UserRepository, hasher password.Hasher, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{users: users, hasher: hasher, logger: logger}
}

// List handles GET /users.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	limit, offset := paging(r)

	users, err := h.users.List(r.Context(), tc, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /users.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=admin manager staff"`
		BranchID *int64 `json:"branch_id"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// A branch-scoped caller can only create users in its own branch.
	if tc.IsBranchScoped() && (req.BranchID == nil || *req.BranchID != *tc.BranchID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &models.User{
		OrgID:        tc.OrgID,
		BranchID:     req.BranchID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Show handles GET /users/{id}.
func (h *UserHandlers) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /users/{id}.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"full_name"`
		Role     string `json:"role" validate:"required,oneof=admin manager staff"`
		BranchID *int64 `json:"branch_id"`
		Password string `json:"password" validate:"omitempty,min=8"`
		IsActive bool   `json:"is_active"`
	}
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user.FullName = req.FullName
	user.Role = req.Role
	user.BranchID = req.BranchID
	user.IsActive = req.IsActive
	user.PasswordHash = ""
	if req.Password != "" {
		hash, err := h.hasher.Hash(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Destroy handles DELETE /users/{id}.
func (h *UserHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.users.SoftDelete(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *UserHandlers) authorize(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !tc.Allows(user.OrgID, user.BranchID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return nil, false
	}
	return user, true
}
