package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/parking-lot/internal/auth"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// CheckIn handles POST /areas/{id}/check-in
// Admits a vehicle and returns the ongoing transaction. The actor is the
// staff member identified by the bearer token.
func (h *ParkingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.CheckInRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	actorID, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor")
		return
	}

	tr, err := h.parking.CheckIn(r.Context(), areaID, req.VehicleID, actorID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

// CheckOut handles PUT /check-out
func (h *ParkingHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req model.CheckOutRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	tr, err := h.parking.CheckOut(r.Context(), req.TransactionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// ScanCheckOut handles PUT /check-out/scan
// Checks out the transaction encoded in a scanned receipt barcode.
func (h *ParkingHandler) ScanCheckOut(w http.ResponseWriter, r *http.Request) {
	var req model.ScanRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	tr, err := h.parking.CheckOutByToken(r.Context(), req.Barcode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// ListTransactions handles GET /areas/{id}/transactions?status=
func (h *ParkingHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	status := model.Status(r.URL.Query().Get("status"))

	list, err := h.parking.ListTransactions(r.Context(), areaID, status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetTransaction handles GET /transactions/{id}
func (h *ParkingHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tr, err := h.parking.GetTransaction(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// TransactionBarcode handles GET /transactions/{id}/barcode
// Returns the payload printed on the entry receipt.
func (h *ParkingHandler) TransactionBarcode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	code, err := h.parking.Barcode(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *ParkingHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.parking.DeleteTransaction(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
