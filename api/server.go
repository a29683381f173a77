/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RequestLogger: Structured request logging (logrus)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: handler implementations
  - logging.go: request logging middleware
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, log *logrus.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Shift lifecycle
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/open", h.OpenShift)
			r.Get("/{id}", h.GetShift)
			r.Post("/{id}/close", h.CloseShift)
		})

		// Sales and stock movements
		r.Post("/sales", h.RecordSales)
		r.Post("/movements", h.RecordMovement)

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.SaveProduct)
			r.Get("/{id}/movements", h.ListMovements)
		})

		// Purchase orders
		r.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", h.ListPurchaseOrders)
			r.Post("/", h.CreatePurchaseOrder)
			r.Get("/{id}", h.GetPurchaseOrder)
			r.Post("/{id}/order", h.OrderPurchaseOrder)
			r.Post("/{id}/receive", h.ReceivePurchaseOrder)
			r.Post("/{id}/cancel", h.CancelPurchaseOrder)
		})

		// Reconciliation records
		r.Get("/reconciliations", h.ListReconciliations)

		// Loss workflow
		r.Route("/loss-reports", func(r chi.Router) {
			r.Get("/", h.ListLossReports)
			r.Get("/summary", h.GetLossSummary)
			r.Post("/{id}/resolve", h.ResolveLossReport)
		})

		// Manager dashboard
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
