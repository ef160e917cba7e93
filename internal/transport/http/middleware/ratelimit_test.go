package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"perfeval/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func asCaller(req *http.Request, userID string) *http.Request {
	caller := auth.Context{UserID: userID, OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}
	return req.WithContext(context.WithValue(req.Context(), ctxKeyCaller, caller))
}

func TestRateLimitPerActor(t *testing.T) {
	handler := RateLimit(2, time.Minute)(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, asCaller(httptest.NewRequest(http.MethodGet, "/goals", nil), "u1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asCaller(httptest.NewRequest(http.MethodGet, "/goals", nil), "u1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on 429")
	}

	// A different actor has its own budget.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, asCaller(httptest.NewRequest(http.MethodGet, "/goals", nil), "u2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected separate budget per actor, got %d", rec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/goals", nil)
	first.RemoteAddr = "10.1.1.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/goals", nil)
	second.RemoteAddr = "10.1.1.1:4001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same-host requests to share a bucket, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/goals", nil)
	other.RemoteAddr = "10.2.2.2:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a different host to pass, got %d", rec.Code)
	}
}

func TestRateLimitExposesRemainingHeaders(t *testing.T) {
	handler := RateLimit(3, time.Minute)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, asCaller(httptest.NewRequest(http.MethodGet, "/goals", nil), "u1"))

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Fatalf("expected limit header 3, got %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("expected remaining header 2, got %q", got)
	}
}

func TestSensitiveRateScopes(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{http.MethodPost, "/api/v1/auth/login", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/permissions/batch", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/goals/abc/submit", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/goals/abc/remand", sensitiveScopeActor},
		{http.MethodPut, "/api/v1/goals/abc/rating", sensitiveScopeActor},
		{http.MethodPut, "/api/v1/roles/manager/permissions", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/roles/manager/clone", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/goals", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/periods", sensitiveScopeNone},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := sensitiveRateScope(req); got != tc.want {
			t.Errorf("%s %s: expected scope %q, got %q", tc.method, tc.path, tc.want, got)
		}
	}
}

func TestSensitiveLoginKeyedByEmail(t *testing.T) {
	handler := SensitiveMutationRateLimit(4, time.Minute)(okHandler())

	send := func(email, addr string) int {
		body := strings.NewReader(`{"email":"` + email + `","password":"x"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// baseLimit/4 leaves one attempt per email per window.
	if code := send("a@example.com", "10.0.0.1:1"); code != http.StatusOK {
		t.Fatalf("first attempt should pass, got %d", code)
	}
	if code := send("a@example.com", "10.0.0.2:1"); code != http.StatusTooManyRequests {
		t.Fatalf("same email from a new address must share the budget, got %d", code)
	}
	if code := send("b@example.com", "10.0.0.3:1"); code != http.StatusOK {
		t.Fatalf("different email should have its own budget, got %d", code)
	}
}
