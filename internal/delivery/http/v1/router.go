package v1

import "net/http"

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Quote   *QuoteHandler
	Carrier *CarrierHandler
	Import  *AdminImportHandler
	Health  *HealthHandler
	Metrics http.Handler
}

// RegisterRoutes mounts the public API, the admin import and the operational
// endpoints. admin wraps handlers that need an admin token.
func RegisterRoutes(mux *http.ServeMux, h Handlers, admin func(http.HandlerFunc) http.Handler) {
	// Rates (Public)
	mux.HandleFunc("GET /api/v1/rates/compare", h.Quote.Compare)
	mux.HandleFunc("GET /api/v1/rates/advice", h.Quote.Advice)
	mux.HandleFunc("GET /api/v1/services/{id}/quote", h.Quote.ServiceQuote)
	mux.HandleFunc("GET /api/v1/services/{id}/weight-ranges", h.Quote.WeightRanges)
	mux.HandleFunc("GET /api/v1/services/{id}/tiers", h.Quote.Tiers)

	// Carriers (Public)
	mux.HandleFunc("GET /api/v1/carriers", h.Carrier.ListCarriers)
	mux.HandleFunc("GET /api/v1/carriers/{id}", h.Carrier.GetCarrier)
	mux.HandleFunc("GET /api/v1/carriers/{id}/services", h.Carrier.ListServices)

	// Admin (Protected)
	mux.Handle("POST /api/v1/admin/import", admin(h.Import.Import))

	// Health Check
	mux.Handle("GET /api/v1/health", h.Health)
	mux.Handle("GET /health", h.Health) // Support root health check for Load Balancers

	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
}
