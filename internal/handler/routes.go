package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
)

// NewRouter builds the API router. Reads are open; every write needs a staff
// bearer token. feed serves the occupancy websocket.
func NewRouter(h *ParkingHandler, feed http.Handler, secretKey []byte, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	r.Get("/ws/occupancy", feed.ServeHTTP)

	// Reads
	r.Get("/areas", h.ListAreas)
	r.Get("/areas/{id}", h.GetArea)
	r.Get("/areas/{id}/occupancy", h.AreaOccupancy)
	r.Get("/areas/{id}/transactions", h.ListTransactions)
	r.Get("/areas/{id}/tariffs", h.ListTariffs)
	r.Get("/tariffs/{id}", h.GetTariff)
	r.Get("/tariffs/{id}/quote", h.QuoteTariff)
	r.Get("/vehicles", h.FindVehicle)
	r.Get("/vehicles/{id}", h.GetVehicle)
	r.Get("/transactions/{id}", h.GetTransaction)
	r.Get("/transactions/{id}/barcode", h.TransactionBarcode)

	// Staff operations
	r.Group(func(r chi.Router) {
		r.Use(RequireActor(secretKey))

		r.Post("/areas", h.CreateArea)
		r.Put("/areas/{id}", h.UpdateArea)
		r.Post("/areas/{id}/check-in", h.CheckIn)
		r.Post("/areas/{id}/tariffs", h.CreateTariff)
		r.Patch("/tariffs/{id}", h.UpdateTariff)
		r.Post("/vehicles", h.RegisterVehicle)
		r.Delete("/transactions/{id}", h.DeleteTransaction)
		r.Put("/check-out", h.CheckOut)
		r.Put("/check-out/scan", h.ScanCheckOut)
	})

	return r
}
