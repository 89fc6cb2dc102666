package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/foodcart/pkg/auth"
	"github.com/angelmondragon/foodcart/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "identity.test"}

func mintTestToken(t *testing.T, cfg config.JWTConfig, payload auth.IdentityPayload) string {
	t.Helper()
	token, err := auth.MintIdentityToken(cfg, time.Now(), time.Hour, payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func captureCustomer(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	captured := "unset"
	handler := OptionalAuth(testJWT, nil)(captureCustomer(&captured))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != "" {
		t.Fatalf("expected anonymous request, got customer %q", captured)
	}
}

func TestOptionalAuthRejectsInvalidToken(t *testing.T) {
	captured := ""
	handler := OptionalAuth(testJWT, nil)(captureCustomer(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOptionalAuthRejectsForeignIssuer(t *testing.T) {
	token := mintTestToken(t, config.JWTConfig{Secret: testJWT.Secret, Issuer: "elsewhere"}, auth.IdentityPayload{Email: "a@example.com"})
	captured := ""
	handler := OptionalAuth(testJWT, nil)(captureCustomer(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOptionalAuthResolvesCustomer(t *testing.T) {
	tests := []struct {
		name    string
		payload auth.IdentityPayload
		want    string
	}{
		{name: "email wins", payload: auth.IdentityPayload{Email: "shopper@example.com", Subject: "user-1"}, want: "shopper@example.com"},
		{name: "subject fallback", payload: auth.IdentityPayload{Subject: "user-1"}, want: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := mintTestToken(t, testJWT, tt.payload)
			captured := ""
			handler := OptionalAuth(testJWT, nil)(captureCustomer(&captured))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", resp.Code)
			}
			if captured != tt.want {
				t.Fatalf("expected customer %q got %q", tt.want, captured)
			}
		})
	}
}

func TestRequireCustomer(t *testing.T) {
	called := false
	handler := RequireCustomer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))
	if resp.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected anonymous request to be rejected, got %d called=%v", resp.Code, called)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(WithCustomerID(req.Context(), "shopper@example.com"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected signed-in request to pass, got %d", resp.Code)
	}
}
