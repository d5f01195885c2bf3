package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pmsstreaming/storefront/internal/catalog"
	"github.com/pmsstreaming/storefront/internal/middleware"
	"github.com/pmsstreaming/storefront/internal/purchase"
)

// PurchaseHandlers holds dependencies for order HTTP handlers.
type PurchaseHandlers struct {
	service *purchase.Service
	logger  *slog.Logger
}

// NewPurchaseHandlers creates a new PurchaseHandlers instance.
func NewPurchaseHandlers(service *purchase.Service, logger *slog.Logger) *PurchaseHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseHandlers{service: service, logger: logger}
}

// CreatePurchaseRequest represents the request body for recording a fulfilled
// order.
type CreatePurchaseRequest struct {
	Reference     string  `json:"reference"`
	MovieID       string  `json:"movieId"`
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	TransactionID string  `json:"transactionId,omitempty"`
}

// CreatePurchase records a fulfilled order for a confirmed payment. The call
// is idempotent on the payment reference, so fulfillment retries are safe.
// POST /api/purchases
func (h *PurchaseHandlers) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	p := &purchase.Purchase{
		Reference:     req.Reference,
		MovieID:       req.MovieID,
		UserID:        userID,
		Method:        req.Method,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TransactionID: req.TransactionID,
	}
	if err := p.Validate(); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	recorded, err := h.service.Record(ctx, p)
	if errors.Is(err, catalog.ErrMovieNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "movie not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record purchase",
			slog.String("reference", req.Reference),
			slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to record purchase")
		return
	}

	writeJSON(w, http.StatusCreated, recorded)
}

// GetPurchase returns the order recorded under a payment reference.
// GET /api/purchases/{reference}
func (h *PurchaseHandlers) GetPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.service.ByReference(ctx, r.PathValue("reference"))
	if errors.Is(err, purchase.ErrPurchaseNotFound) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "purchase not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get purchase", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to get purchase")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListMyPurchases returns the authenticated viewer's orders.
// GET /api/purchases
func (h *PurchaseHandlers) ListMyPurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeUnauthorized)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	purchases, err := h.service.ForUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list purchases", slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to list purchases")
		return
	}
	if purchases == nil {
		purchases = []*purchase.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}
