// internal/middleware/ratelimit_test.go

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fire(h http.Handler, remote string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = remote
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if rec := fire(h, "10.0.0.1:5555"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, rec.Code)
		}
	}

	rec := fire(h, "10.0.0.1:5555")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		fire(h, "10.0.0.1:1")
	}
	if rec := fire(h, "10.0.0.1:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first client not limited: %d", rec.Code)
	}
	if rec := fire(h, "10.0.0.2:1"); rec.Code != http.StatusOK {
		t.Errorf("second client limited by first client's traffic: %d", rec.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	if ok, _, _ := rl.Allow("k"); !ok {
		t.Fatal("first hit denied")
	}
	if ok, _, _ := rl.Allow("k"); ok {
		t.Fatal("second hit inside window allowed")
	}
	time.Sleep(40 * time.Millisecond)
	if ok, _, _ := rl.Allow("k"); !ok {
		t.Error("hit after window rollover denied")
	}
}

func TestRateLimiter_UsesForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1" // shared proxy address
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d, 192.0.2.1", i+1))
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("distinct forwarded clients shared a bucket: request %d got %d", i+1, rec.Code)
		}
	}
}
