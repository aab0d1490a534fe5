package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/repository"
)

// VehicleHandlers serves vehicle CRUD within the caller's tenant.
type VehicleHandlers struct {
	vehicles  *repository.VehicleRepository
	customers *repository.CustomerRepository
	logger    *zap.Logger
}

// NewVehicleHandlers returns handler.
func NewVehicleHandlers(vehicles *repository.VehicleRepository, customers *repository.CustomerRepository, logger *zap.Logger) *VehicleHandlers {
	return &VehicleHandlers{vehicles: vehicles, customers: customers, logger: logger}
}

type vehicleRequest struct {
	CustomerID     int64  `json:"customer_id" validate:"required"`
	VehicleTypeID  int64  `json:"vehicle_type_id" validate:"required"`
	VehicleBrandID *int64 `json:"vehicle_brand_id"`
	VehicleModelID *int64 `json:"vehicle_model_id"`
	PlateNumber    string `json:"plate_number" validate:"required"`
	Color          string `json:"color"`
	Year           int    `json:"year" validate:"omitempty,gte=1900"`
}

// List handles GET /vehicles?customer_id=.
func (h *VehicleHandlers) List(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	customerID, err := queryInt64(r, "customer_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer_id")
		return
	}
	limit, offset := paging(r)

	vehicles, err := h.vehicles.List(r.Context(), tc, customerID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list vehicles", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create handles POST /vehicles. The vehicle inherits org and branch from
// its owning customer.
func (h *VehicleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req vehicleRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VehicleModelID != nil && req.VehicleBrandID == nil {
		writeError(w, http.StatusUnprocessableEntity, "vehicle_model_id requires vehicle_brand_id")
		return
	}

	customer, err := h.customers.GetByID(r.Context(), req.CustomerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !tc.Allows(customer.OrgID, customer.BranchID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return
	}

	vehicle := &models.Vehicle{
		OrgID:          customer.OrgID,
		BranchID:       customer.BranchID,
		CustomerID:     customer.ID,
		VehicleTypeID:  req.VehicleTypeID,
		VehicleBrandID: req.VehicleBrandID,
		VehicleModelID: req.VehicleModelID,
		PlateNumber:    req.PlateNumber,
		Color:          req.Color,
		Year:           req.Year,
	}
	if err := h.vehicles.Create(r.Context(), vehicle); err != nil {
		h.logger.Error("failed to create vehicle", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// Show handles GET /vehicles/{id}.
func (h *VehicleHandlers) Show(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.authorize(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update handles PUT /vehicles/{id}.
func (h *VehicleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req vehicleRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VehicleModelID != nil && req.VehicleBrandID == nil {
		writeError(w, http.StatusUnprocessableEntity, "vehicle_model_id requires vehicle_brand_id")
		return
	}

	vehicle.VehicleTypeID = req.VehicleTypeID
	vehicle.VehicleBrandID = req.VehicleBrandID
	vehicle.VehicleModelID = req.VehicleModelID
	vehicle.PlateNumber = req.PlateNumber
	vehicle.Color = req.Color
	vehicle.Year = req.Year
	if err := h.vehicles.Update(r.Context(), vehicle); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Destroy handles DELETE /vehicles/{id}.
func (h *VehicleHandlers) Destroy(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.vehicles.SoftDelete(r.Context(), vehicle.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *VehicleHandlers) authorize(w http.ResponseWriter, r *http.Request) (*models.Vehicle, bool) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !tc.Allows(vehicle.OrgID, vehicle.BranchID) {
		writeError(w, http.StatusForbidden, "outside tenant scope")
		return nil, false
	}
	return vehicle, true
}
