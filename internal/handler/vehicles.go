package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// RegisterVehicle handles POST /vehicles
func (h *ParkingHandler) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	v, err := h.vehicles.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// FindVehicle handles GET /vehicles?plate=
func (h *ParkingHandler) FindVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.vehicles.FindByPlate(r.Context(), r.URL.Query().Get("plate"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GetVehicle handles GET /vehicles/{id}
func (h *ParkingHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.vehicles.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
