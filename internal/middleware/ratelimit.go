// internal/middleware/ratelimit.go
//
// Fixed-window per-client rate limiter for the JSON API.
//
// Notes
// -----
// Windows are keyed by client IP and reset wholesale when the window
// rolls over.  The map is bounded only by distinct client count within a
// window, which matches the traffic profile of the sites (thousands of
// IPs, sixty-second windows).
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guncelgiris/platform/internal/metrics"
)

// RateLimiter counts requests per client in fixed windows.
type RateLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	started time.Time
	limit   int
	window  time.Duration
}

// NewRateLimiter allows limit requests per window per client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		counts:  make(map[string]int),
		started: time.Now(),
		limit:   limit,
		window:  window,
	}
}

// Allow records one hit for key and reports whether it is within budget,
// along with the remaining quota and seconds until reset.
func (rl *RateLimiter) Allow(key string) (ok bool, remaining, retryAfter int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.started) >= rl.window {
		rl.counts = make(map[string]int)
		rl.started = now
	}
	rl.counts[key]++
	n := rl.counts[key]

	retryAfter = int(rl.window.Seconds() - now.Sub(rl.started).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	if n > rl.limit {
		return false, 0, retryAfter
	}
	return true, rl.limit - n, retryAfter
}

// Handler enforces the limit, answering 429 with Retry-After when a
// client exhausts its window.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, retryAfter := rl.Allow(clientKey(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"rate limit exceeded","retry_after":%d}`, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
