package handler

import (
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// CreateTariff handles POST /areas/{id}/tariffs
// Adds a rule to the area's catalog; overlapping active rules are refused.
func (h *ParkingHandler) CreateTariff(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.CreateTariffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rule, err := h.tariffs.Create(r.Context(), areaID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// ListTariffs handles GET /areas/{id}/tariffs
func (h *ParkingHandler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rules, err := h.tariffs.List(r.Context(), areaID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if rules == nil {
		rules = []model.TariffRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

// GetTariff handles GET /tariffs/{id}
func (h *ParkingHandler) GetTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rule, err := h.tariffs.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// UpdateTariff handles PATCH /tariffs/{id}
// Only the active flag can change; rules are never edited or deleted.
func (h *ParkingHandler) UpdateTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateTariffRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rule, err := h.tariffs.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// QuoteTariff handles GET /tariffs/{id}/quote?minutes=N
func (h *ParkingHandler) QuoteTariff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	minutes, err := strconv.ParseInt(r.URL.Query().Get("minutes"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "minutes must be an integer")
		return
	}

	quote, err := h.tariffs.Quote(r.Context(), id, minutes)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
