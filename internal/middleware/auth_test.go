package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pmsstreaming/storefront/internal/auth"
)

func TestAuthenticate_ValidToken(t *testing.T) {
	svc := auth.NewJWTService("test-secret")
	token, err := svc.GenerateAccessToken("user-42", "viewer")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var seen string
	handler := Authenticate(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "user-42" {
		t.Errorf("expected user-42 in context, got %q", seen)
	}
}

func TestAuthenticate_NoToken(t *testing.T) {
	svc := auth.NewJWTService("test-secret")

	var seen string
	handler := Authenticate(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "" {
		t.Errorf("expected empty user ID, got %q", seen)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc := auth.NewJWTService("test-secret")

	var seen string
	handler := Authenticate(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "" {
		t.Errorf("expected empty user ID for invalid token, got %q", seen)
	}
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	svc := auth.NewJWTService("test-secret")
	token, err := svc.GenerateRefreshToken("user-42")
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	var seen string
	handler := Authenticate(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "" {
		t.Errorf("refresh tokens must not authenticate requests, got user %q", seen)
	}
}
