package api

import (
	"net/http"

	"github.com/pmsstreaming/storefront/internal/middleware"
)

// RouterConfig carries the handler groups the router mounts. LiveKit is
// optional; its routes are omitted when nil.
type RouterConfig struct {
	Payments  *PaymentHandlers
	Catalog   *CatalogHandlers
	Creators  *CreatorHandlers
	Purchases *PurchaseHandlers
	LiveKit   *LiveKitHandlers
	Health    *HealthHandlers
	Metrics   http.Handler
}

// NewRouter builds the HTTP route table.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Payment confirmation flow.
	mux.HandleFunc("POST /api/payments/initiate", cfg.Payments.InitiatePayment)
	mux.HandleFunc("POST /payments/webhook", cfg.Payments.Webhook)
	mux.HandleFunc("GET /payments/status/{reference}", cfg.Payments.PaymentStatus)
	mux.HandleFunc("POST /api/payment", cfg.Payments.CardPayment)

	// Catalog.
	mux.HandleFunc("GET /api/movies", cfg.Catalog.ListMovies)
	mux.HandleFunc("GET /api/movies/{id}", cfg.Catalog.GetMovie)
	mux.HandleFunc("POST /api/movies", cfg.Catalog.CreateMovie)

	// Creators.
	mux.HandleFunc("GET /api/creators", cfg.Creators.ListCreators)
	mux.HandleFunc("GET /api/creators/{id}", cfg.Creators.GetCreator)
	mux.HandleFunc("GET /api/creators/{id}/movies", cfg.Creators.ListCreatorMovies)
	mux.HandleFunc("POST /api/creators", cfg.Creators.CreateCreator)

	// Purchases.
	mux.HandleFunc("POST /api/purchases", cfg.Purchases.CreatePurchase)
	mux.HandleFunc("GET /api/purchases", cfg.Purchases.ListMyPurchases)
	mux.HandleFunc("GET /api/purchases/{reference}", cfg.Purchases.GetPurchase)

	// Live premieres.
	if cfg.LiveKit != nil {
		mux.HandleFunc("POST /api/live/token", cfg.LiveKit.Token)
		mux.HandleFunc("POST /api/live/rooms", cfg.LiveKit.CreateRoom)
		mux.HandleFunc("GET /api/live/rooms/{name}", cfg.LiveKit.GetRoom)
	}

	// Probes and metrics.
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Everything else is a structured 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "the requested resource was not found")
	})

	return mux
}
