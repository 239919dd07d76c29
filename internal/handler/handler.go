// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/service"
)

// ParkingHandler holds all HTTP handlers for the parking API.
type ParkingHandler struct {
	parking  *service.ParkingService
	tariffs  *service.TariffService
	areas    *service.AreaService
	vehicles *service.VehicleService
	log      logging.Logger
}

// NewParkingHandler constructs a ParkingHandler.
func NewParkingHandler(
	parking *service.ParkingService,
	tariffs *service.TariffService,
	areas *service.AreaService,
	vehicles *service.VehicleService,
	log logging.Logger,
) *ParkingHandler {
	return &ParkingHandler{parking: parking, tariffs: tariffs, areas: areas, vehicles: vehicles, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeRequest decodes the body and runs the request's validation tags.
// On failure it has already written the 400 response.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := service.Validate(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter. On failure it has already
// written the 400 response.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrAreaNotFound),
		errors.Is(err, model.ErrVehicleNotFound),
		errors.Is(err, model.ErrTariffNotFound),
		errors.Is(err, model.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrVehicleAlreadyParked),
		errors.Is(err, model.ErrAreaFull),
		errors.Is(err, model.ErrAreaInactive),
		errors.Is(err, model.ErrAlreadyCompleted),
		errors.Is(err, model.ErrAmbiguousTariff),
		errors.Is(err, model.ErrDuplicatePlate):
		return http.StatusConflict
	case errors.Is(err, model.ErrNoTariffFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidBarcode),
		errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports a service failure. Unexpected errors are logged
// and hidden behind a generic message.
func (h *ParkingHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
