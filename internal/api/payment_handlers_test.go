package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pmsstreaming/storefront/internal/payment"
	"github.com/stripe/stripe-go/v81"
)

// mockMobileClient is a MobileMoneyClient with pluggable behavior.
type mockMobileClient struct {
	initiateFunc func(ctx context.Context, req *payment.InitiationRequest) (*payment.InitiationResponse, error)
	calls        int
}

func (m *mockMobileClient) Initiate(ctx context.Context, req *payment.InitiationRequest) (*payment.InitiationResponse, error) {
	m.calls++
	if m.initiateFunc != nil {
		return m.initiateFunc(ctx, req)
	}
	return &payment.InitiationResponse{
		TransactionID: "T1",
		Raw:           map[string]any{"transactionid": "T1", "code": "0", "description": "accepted"},
	}, nil
}

// mockCardClient is a CardClient with pluggable behavior.
type mockCardClient struct {
	chargeFunc func(charge *payment.CardCharge) (*stripe.PaymentIntent, error)
}

func (m *mockCardClient) Charge(charge *payment.CardCharge) (*stripe.PaymentIntent, error) {
	if m.chargeFunc != nil {
		return m.chargeFunc(charge)
	}
	return &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded}, nil
}

func newTestPaymentHandlers(mobile *mockMobileClient, card *mockCardClient) (*PaymentHandlers, *payment.InMemoryStatusStore) {
	store := payment.NewInMemoryStatusStore()
	var refs atomic.Int64
	h := NewPaymentHandlers(PaymentHandlersConfig{
		Store:        store,
		MobileClient: mobile,
		CardClient:   card,
		Metrics:      payment.NewMetrics(),
		NewReference: func() string {
			return fmt.Sprintf("REF%d", refs.Add(1))
		},
		MerchantCode: "PMS001",
		CallbackURL:  "https://api.example.com/payments/webhook",
	})
	return h, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v, body: %s", err, rr.Body.String())
	}
}

func TestInitiatePayment_Success(t *testing.T) {
	mobile := &mockMobileClient{}
	h, store := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "243810000000",
		"amount":       12.50,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp InitiatePaymentResponse
	decodeBody(t, rr, &resp)

	if !regexp.MustCompile(`^REF\d+$`).MatchString(resp.Reference) {
		t.Errorf("reference %q does not match REF + digits", resp.Reference)
	}
	if resp.TransactionID != "T1" {
		t.Errorf("expected transaction id T1, got %q", resp.TransactionID)
	}
	if mobile.calls != 1 {
		t.Errorf("expected one provider call, got %d", mobile.calls)
	}

	// The pending record exists before any webhook arrives.
	record, found, err := store.Get(context.Background(), resp.Reference)
	if err != nil || !found {
		t.Fatalf("expected a seeded status record, found=%v err=%v", found, err)
	}
	if record.Status() != payment.StatusPending {
		t.Errorf("expected seeded status PENDING, got %s", record.Status())
	}
	if record.TransactionID() != "T1" {
		t.Errorf("expected seeded transaction id T1, got %q", record.TransactionID())
	}
}

func TestInitiatePayment_NationalNumberIsFormatted(t *testing.T) {
	var gotNumber string
	mobile := &mockMobileClient{
		initiateFunc: func(_ context.Context, req *payment.InitiationRequest) (*payment.InitiationResponse, error) {
			gotNumber = req.MobileNumber
			return &payment.InitiationResponse{TransactionID: "T1", Raw: map[string]any{"code": "0"}}, nil
		},
	}
	h, _ := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "0810000000",
		"amount":       5,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotNumber != "243810000000" {
		t.Errorf("expected international format 243810000000, got %q", gotNumber)
	}
}

func TestInitiatePayment_MissingFields(t *testing.T) {
	mobile := &mockMobileClient{}
	h, _ := newTestPaymentHandlers(mobile, &mockCardClient{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing number", map[string]any{"amount": 10}},
		{"missing amount", map[string]any{"mobileNumber": "243810000000"}},
		{"zero amount", map[string]any{"mobileNumber": "243810000000", "amount": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
			var errResp ErrorResponse
			decodeBody(t, rr, &errResp)
			if errResp.Error.Code != ErrCodeValidation {
				t.Errorf("expected code %s, got %s", ErrCodeValidation, errResp.Error.Code)
			}
		})
	}
	if mobile.calls != 0 {
		t.Errorf("provider must not be called for invalid input, got %d calls", mobile.calls)
	}
}

func TestInitiatePayment_InvalidNumber(t *testing.T) {
	mobile := &mockMobileClient{}
	h, _ := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "12345",
		"amount":       10,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	if mobile.calls != 0 {
		t.Error("provider must not be called for an invalid number")
	}
}

func TestInitiatePayment_ProviderTransportError(t *testing.T) {
	mobile := &mockMobileClient{
		initiateFunc: func(context.Context, *payment.InitiationRequest) (*payment.InitiationResponse, error) {
			return nil, fmt.Errorf("%w: connection refused", payment.ErrProviderTransport)
		},
	}
	h, store := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "243810000000",
		"amount":       10,
	})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for a transport failure, got %d", rr.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Error.Code != ErrCodeProviderError {
		t.Errorf("expected code %s, got %s", ErrCodeProviderError, errResp.Error.Code)
	}

	// A failed initiation leaves no status entry behind.
	if _, found, _ := store.Get(context.Background(), "REF1"); found {
		t.Error("expected no seeded record after a failed initiation")
	}
}

func TestInitiatePayment_ProviderLogicError(t *testing.T) {
	mobile := &mockMobileClient{
		initiateFunc: func(context.Context, *payment.InitiationRequest) (*payment.InitiationResponse, error) {
			return nil, fmt.Errorf("%w: response missing transactionid", payment.ErrProviderLogic)
		},
	}
	h, _ := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "243810000000",
		"amount":       10,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a provider logic failure, got %d", rr.Code)
	}
}

func TestWebhook_ConfirmsPayment(t *testing.T) {
	h, store := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})
	ctx := context.Background()

	// Initiation seeded the reference.
	if err := store.Put(ctx, "REF1", payment.PendingRecord()); err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}

	rr := postJSON(t, h.Webhook, "/payments/webhook", map[string]any{
		"reference":     "REF1",
		"code":          "0",
		"transactionid": "T1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "OK" {
		t.Errorf("expected body OK, got %q", body)
	}

	record, found, err := store.Get(ctx, "REF1")
	if err != nil || !found {
		t.Fatalf("expected a stored record, found=%v err=%v", found, err)
	}
	if record.Status() != payment.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", record.Status())
	}
	if record.TransactionID() != "T1" {
		t.Errorf("expected transaction id T1, got %q", record.TransactionID())
	}
}

func TestWebhook_ReplayIsIdempotent(t *testing.T) {
	h, store := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})
	ctx := context.Background()

	update := map[string]any{"reference": "REF1", "code": "0", "transactionid": "T1"}
	for i := 0; i < 3; i++ {
		rr := postJSON(t, h.Webhook, "/payments/webhook", update)
		if rr.Code != http.StatusOK {
			t.Fatalf("replay %d: expected 200, got %d", i, rr.Code)
		}
	}

	record, _, err := store.Get(ctx, "REF1")
	if err != nil {
		t.Fatalf("failed to read record: %v", err)
	}
	if record.Status() != payment.StatusConfirmed {
		t.Errorf("expected CONFIRMED after replays, got %s", record.Status())
	}
}

func TestWebhook_MissingReferenceAcknowledged(t *testing.T) {
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})

	rr := postJSON(t, h.Webhook, "/payments/webhook", map[string]any{
		"code": "0",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for an unidentifiable update, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "OK" {
		t.Errorf("expected body OK, got %q", body)
	}
}

func TestWebhook_MalformedBody(t *testing.T) {
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Webhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rr.Code)
	}
}

func getStatus(t *testing.T, h *PaymentHandlers, reference string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/payments/status/"+reference, nil)
	req.SetPathValue("reference", reference)
	rr := httptest.NewRecorder()
	h.PaymentStatus(rr, req)
	return rr
}

func TestPaymentStatus_UnknownReferenceIsPending(t *testing.T) {
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})

	rr := getStatus(t, h, "REF_UNKNOWN")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var record payment.Record
	decodeBody(t, rr, &record)
	if record.Status() != payment.StatusPending {
		t.Errorf("expected PENDING for an unknown reference, got %s", record.Status())
	}
}

func TestPaymentStatus_ReturnsStoredRecord(t *testing.T) {
	h, store := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})

	if _, err := store.Merge(context.Background(), "REF2", map[string]any{
		"reference": "REF2", "code": "1", "description": "insufficient balance",
	}); err != nil {
		t.Fatalf("failed to merge record: %v", err)
	}

	rr := getStatus(t, h, "REF2")
	var record payment.Record
	decodeBody(t, rr, &record)
	if record.Status() != payment.StatusFailed {
		t.Errorf("expected FAILED, got %s", record.Status())
	}
	if record.Description() != "insufficient balance" {
		t.Errorf("expected provider description, got %q", record.Description())
	}
}

func TestPaymentStatus_StatusAfterFailedInitiationStaysPending(t *testing.T) {
	mobile := &mockMobileClient{
		initiateFunc: func(context.Context, *payment.InitiationRequest) (*payment.InitiationResponse, error) {
			return nil, fmt.Errorf("%w: connection refused", payment.ErrProviderTransport)
		},
	}
	h, _ := newTestPaymentHandlers(mobile, &mockCardClient{})

	rr := postJSON(t, h.InitiatePayment, "/api/payments/initiate", map[string]any{
		"mobileNumber": "", "amount": 10,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// No reference was issued, so any probe still reads pending.
	statusRR := getStatus(t, h, "REF_NEVER_ISSUED")
	var record payment.Record
	decodeBody(t, statusRR, &record)
	if record.Status() != payment.StatusPending {
		t.Errorf("expected PENDING, got %s", record.Status())
	}
}

func TestCardPayment_Success(t *testing.T) {
	var gotAmount int64
	card := &mockCardClient{
		chargeFunc: func(charge *payment.CardCharge) (*stripe.PaymentIntent, error) {
			gotAmount = charge.Amount
			return &stripe.PaymentIntent{ID: "pi_123"}, nil
		},
	}
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, card)

	rr := postJSON(t, h.CardPayment, "/api/payment", map[string]any{
		"amount":          12.50,
		"paymentMethodId": "pm_123",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp CardPaymentResponse
	decodeBody(t, rr, &resp)
	if !resp.Success {
		t.Error("expected success true")
	}
	if resp.TransactionID != "pi_123" {
		t.Errorf("expected transaction id pi_123, got %q", resp.TransactionID)
	}
	if gotAmount != 1250 {
		t.Errorf("expected amount 1250 cents, got %d", gotAmount)
	}
}

func TestCardPayment_Failure(t *testing.T) {
	card := &mockCardClient{
		chargeFunc: func(*payment.CardCharge) (*stripe.PaymentIntent, error) {
			return nil, fmt.Errorf("card declined")
		},
	}
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, card)

	rr := postJSON(t, h.CardPayment, "/api/payment", map[string]any{
		"amount":          10,
		"paymentMethodId": "pm_123",
	})
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rr.Code)
	}

	var resp CardPaymentResponse
	decodeBody(t, rr, &resp)
	if resp.Success {
		t.Error("expected success false")
	}
}

func TestCardPayment_Validation(t *testing.T) {
	h, _ := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})

	rr := postJSON(t, h.CardPayment, "/api/payment", map[string]any{"amount": 10})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a payment method, got %d", rr.Code)
	}
}
