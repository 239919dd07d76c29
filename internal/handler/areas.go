package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// CreateArea handles POST /areas
func (h *ParkingHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAreaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	area, err := h.areas.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

// ListAreas handles GET /areas
func (h *ParkingHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.areas.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if areas == nil {
		areas = []model.ParkingArea{}
	}
	writeJSON(w, http.StatusOK, areas)
}

// GetArea handles GET /areas/{id}
func (h *ParkingHandler) GetArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	area, err := h.areas.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

// UpdateArea handles PUT /areas/{id}
func (h *ParkingHandler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateAreaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	area, err := h.areas.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

// AreaOccupancy handles GET /areas/{id}/occupancy
// Returns the area together with its occupied and available slot counts.
func (h *ParkingHandler) AreaOccupancy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	status, err := h.parking.AreaStatus(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
