package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pmsstreaming/storefront/internal/middleware"
	"github.com/pmsstreaming/storefront/internal/payment"
	"github.com/pmsstreaming/storefront/internal/validate"
)

// DefaultPaymentCurrency is used when an initiation request omits a currency.
const DefaultPaymentCurrency = "USD"

// PaymentHandlers holds dependencies for payment-related HTTP handlers.
type PaymentHandlers struct {
	store        payment.StatusStore
	mobileClient payment.MobileMoneyClient
	cardClient   payment.CardClient
	metrics      *payment.Metrics
	newReference payment.ReferenceGenerator
	merchantCode string
	callbackURL  string
	logger       *slog.Logger
}

// PaymentHandlersConfig configures the payment handlers.
type PaymentHandlersConfig struct {
	Store        payment.StatusStore
	MobileClient payment.MobileMoneyClient
	CardClient   payment.CardClient
	Metrics      *payment.Metrics
	NewReference payment.ReferenceGenerator
	MerchantCode string
	CallbackURL  string
	Logger       *slog.Logger
}

// NewPaymentHandlers creates a new PaymentHandlers instance.
func NewPaymentHandlers(cfg PaymentHandlersConfig) *PaymentHandlers {
	if cfg.NewReference == nil {
		cfg.NewReference = payment.TimestampReference
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PaymentHandlers{
		store:        cfg.Store,
		mobileClient: cfg.MobileClient,
		cardClient:   cfg.CardClient,
		metrics:      cfg.Metrics,
		newReference: cfg.NewReference,
		merchantCode: cfg.MerchantCode,
		callbackURL:  cfg.CallbackURL,
		logger:       cfg.Logger,
	}
}

// InitiatePaymentRequest represents the request body for starting a mobile
// money payment.
type InitiatePaymentRequest struct {
	MobileNumber string  `json:"mobileNumber"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// InitiatePaymentResponse represents the response for a successfully started
// mobile money payment.
type InitiatePaymentResponse struct {
	Reference        string         `json:"reference"`
	TransactionID    string         `json:"transactionId"`
	ProviderResponse map[string]any `json:"providerResponse"`
}

// InitiatePayment starts a mobile money payment: it asks the provider to push
// a confirmation prompt to the subscriber's phone, then records a pending
// status under a fresh reference.
// POST /api/payments/initiate
func (h *PaymentHandlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.IncInitiations("bad_request")
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if req.MobileNumber == "" || req.Amount <= 0 {
		h.metrics.IncInitiations("validation_error")
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "missing required fields: mobileNumber and amount")
		return
	}

	if !validate.IsValidDRCMobileNumber(req.MobileNumber) {
		h.metrics.IncInitiations("validation_error")
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "invalid mobile number")
		return
	}
	mobileNumber := validate.FormatMobileNumber(req.MobileNumber)

	currency := req.Currency
	if currency == "" {
		currency = DefaultPaymentCurrency
	}
	description := req.Description
	if description == "" {
		description = "Movie purchase"
	}

	reference := h.newReference()

	h.logger.InfoContext(ctx, "initiating mobile money payment",
		slog.String("reference", reference),
		slog.String("mobile_number", validate.MaskMobileNumber(mobileNumber)),
		slog.String("operator", validate.MobileOperator(mobileNumber)),
		slog.Float64("amount", req.Amount))

	resp, err := h.mobileClient.Initiate(ctx, &payment.InitiationRequest{
		MerchantCode: h.merchantCode,
		MobileNumber: mobileNumber,
		Reference:    reference,
		Amount:       req.Amount,
		Currency:     currency,
		Description:  description,
		CallbackURL:  h.callbackURL,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "payment initiation failed",
			slog.String("reference", reference),
			slog.String("error", err.Error()))

		status := http.StatusBadGateway
		if errors.Is(err, payment.ErrProviderLogic) {
			status = http.StatusUnprocessableEntity
		}
		h.metrics.IncInitiations("provider_error")
		ctx = middleware.SetErrorCode(ctx, ErrCodeProviderError)
		WriteError(w, ctx, status, ErrCodeProviderError, "payment provider request failed")
		return
	}

	// Seed only after the provider accepted: a failed initiation leaves no
	// entry, so a status probe for its reference reads the pending default.
	seed := make(payment.Record, len(resp.Raw)+3)
	for k, v := range resp.Raw {
		seed[k] = v
	}
	seed[payment.FieldReference] = reference
	seed[payment.FieldTransactionID] = resp.TransactionID
	seed[payment.FieldStatus] = payment.StatusPending

	if err := h.store.Put(ctx, reference, seed); err != nil {
		h.metrics.IncInitiations("store_error")
		h.logger.ErrorContext(ctx, "failed to seed payment status",
			slog.String("reference", reference),
			slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to record payment")
		return
	}

	h.metrics.IncInitiations("success")
	writeJSON(w, http.StatusOK, InitiatePaymentResponse{
		Reference:        reference,
		TransactionID:    resp.TransactionID,
		ProviderResponse: resp.Raw,
	})
}

// Webhook receives provider callbacks carrying payment status updates.
// The provider delivers at least once, so replays are expected; updates merge
// into the stored record and the endpoint always acknowledges with 200 once
// the payload parses.
// POST /payments/webhook
func (h *PaymentHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.metrics.IncWebhooks("bad_request")
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid webhook payload")
		return
	}

	reference, _ := payload[payment.FieldReference].(string)
	if reference == "" {
		// Unidentifiable updates are dropped; a non-2xx answer would only
		// make the provider retry a payload that can never be applied.
		h.metrics.IncWebhooks("missing_reference")
		h.logger.WarnContext(ctx, "webhook payload without reference dropped")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	record, err := h.store.Merge(ctx, reference, payload)
	if err != nil {
		h.metrics.IncWebhooks("store_error")
		h.logger.ErrorContext(ctx, "failed to merge webhook update",
			slog.String("reference", reference),
			slog.String("error", err.Error()))
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "failed to record update")
		return
	}

	h.metrics.IncWebhooks("applied")
	h.logger.InfoContext(ctx, "webhook update applied",
		slog.String("reference", reference),
		slog.String("status", record.Status()))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// PaymentStatus reports the latest known status for a reference. Unknown
// references read as pending rather than erroring: the client may poll before
// the initiation write or first webhook lands.
// GET /payments/status/{reference}
func (h *PaymentHandlers) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reference := r.PathValue("reference")
	if reference == "" {
		h.metrics.IncStatusQueries("bad_request")
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "reference is required")
		return
	}

	record, found, err := h.store.Get(ctx, reference)
	if err != nil {
		// A degraded status store must not break the polling loop; the
		// client sees pending and keeps polling.
		h.logger.ErrorContext(ctx, "status lookup failed, answering pending",
			slog.String("reference", reference),
			slog.String("error", err.Error()))
		h.metrics.IncStatusQueries("store_error")
		writeJSON(w, http.StatusOK, payment.PendingRecord())
		return
	}
	if !found {
		h.metrics.IncStatusQueries("pending_default")
		writeJSON(w, http.StatusOK, payment.PendingRecord())
		return
	}

	h.metrics.IncStatusQueries("found")
	writeJSON(w, http.StatusOK, record)
}

// CardPaymentRequest represents the request body for a card charge.
type CardPaymentRequest struct {
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency,omitempty"`
	Description     string  `json:"description,omitempty"`
	PaymentMethodID string  `json:"paymentMethodId"`
}

// CardPaymentResponse represents the result of a card charge.
type CardPaymentResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId,omitempty"`
}

// CardPayment charges a card synchronously. Unlike the mobile money flow
// there is no polling: the charge confirms or fails within the request.
// POST /api/payment
func (h *PaymentHandlers) CardPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CardPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.IncCardCharges("bad_request")
		ctx = middleware.SetErrorCode(ctx, ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if req.Amount <= 0 || req.PaymentMethodID == "" {
		h.metrics.IncCardCharges("validation_error")
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "missing required fields: amount and paymentMethodId")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultPaymentCurrency
	}

	start := time.Now()
	intent, err := h.cardClient.Charge(&payment.CardCharge{
		Amount:          int64(req.Amount * 100),
		Currency:        currency,
		Description:     req.Description,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		h.metrics.IncCardCharges("failure")
		h.logger.ErrorContext(ctx, "card charge failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		middleware.UpdateResponseContext(w, middleware.SetErrorCode(ctx, ErrCodeProviderError))
		writeJSON(w, http.StatusPaymentRequired, CardPaymentResponse{
			Success: false,
			Message: "payment failed",
		})
		return
	}

	h.metrics.IncCardCharges("success")
	writeJSON(w, http.StatusOK, CardPaymentResponse{
		Success:       true,
		Message:       "payment successful",
		TransactionID: intent.ID,
	})
}
