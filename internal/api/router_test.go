package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pmsstreaming/storefront/internal/catalog"
	"github.com/pmsstreaming/storefront/internal/creator"
	"github.com/pmsstreaming/storefront/internal/purchase"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	movies := catalog.NewInMemoryRepository()
	payments, _ := newTestPaymentHandlers(&mockMobileClient{}, &mockCardClient{})
	return NewRouter(RouterConfig{
		Payments:  payments,
		Catalog:   NewCatalogHandlers(movies, nil),
		Creators:  NewCreatorHandlers(creator.NewInMemoryRepository(), movies, nil),
		Purchases: NewPurchaseHandlers(purchase.NewService(purchase.NewInMemoryRepository(), movies, nil), nil),
		Health:    NewHealthHandlers(HealthHandlersConfig{}),
	})
}

func TestRouter_Dispatch(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/movies", http.StatusOK},
		{http.MethodGet, "/api/creators", http.StatusOK},
		{http.MethodGet, "/payments/status/REF1", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodDelete, "/api/movies", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/live/token", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rr.Code)
		}
	}
}

func TestRouter_NotFoundIsStructured(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, errResp.Error.Code)
	}
}
