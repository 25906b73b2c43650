// Per-IP rate limiter for the transaction endpoints.
package api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per IP per window.
type RateLimiter struct {
	mu      sync.Mutex
	seen    map[string]*window
	maxRate int
	span    time.Duration
}

type window struct {
	count   int
	started time.Time
}

// NewRateLimiter creates a limiter allowing maxRate requests per span.
func NewRateLimiter(maxRate int, span time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:    make(map[string]*window),
		maxRate: maxRate,
		span:    span,
	}
}

// Allow reports whether the given IP may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.seen[ip]
	if !ok || now.Sub(w.started) >= rl.span {
		// Window reset doubles as cleanup: stale IPs get fresh windows
		// instead of accumulating.
		rl.seen[ip] = &window{count: 1, started: now}
		return true
	}

	if w.count < rl.maxRate {
		w.count++
		return true
	}
	return false
}

// RateLimitMiddleware rejects over-limit requests with 429.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.Allow(ip) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
