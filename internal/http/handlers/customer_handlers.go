package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
)

// CustomerHandlers serves customer CRUD within the caller's tenant.
type CustomerHandlers struct {
	customers *repository.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerHandlers returns handler.
func NewCustomerHandlers(customers *repository.CustomerRepository, logger *zap.Logger) *CustomerHandlers {
	return &CustomerHandlers{customers: customers, logger: logger}
}

type customerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Notes    string `json:"notes"`
	BranchID *int64 `json:"branch_id"`
}

// List handles GET /customers.
func (h *CustomerHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	limit, offset := paging(r)

	customers, err := h.customers.List(r.Context(), tc, limit, offset)
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// Create handles POST /customers.
func (h *CustomerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req customerRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	branchID := req.BranchID
	if tc.IsBranchScoped() {
		branchID = tc.BranchID
	}

	customer := &models.Customer{
		OrgID:    tc.OrgID,
		BranchID: branchID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
	}
	if err := h.customers.Create(r.Context(), customer); err != nil {
		h.logger.Error("failed to create customer", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// Show handles GET /customers/{id}.
func (h *CustomerHandlers) Show(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update handles PUT /customers/{id}.
func (h *CustomerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req customerRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer.FullName = req.FullName
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Notes = req.Notes
	if err := h.customers.Update(r.Context(), customer); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Destroy handles DELETE /customers/{id}.
func (h *CustomerHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.customers.SoftDelete(r.Context(), customer.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *CustomerHandlers) authorize(w http.ResponseWriter, r *http.Request) (*models.Customer, bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	customer, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !tc.Allows(customer.OrgID, customer.BranchID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return nil, false
	}
	return customer, true
}
