package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware throttles requests per client IP. It fronts the login
// verification endpoint, where unthrottled retries would let a caller guess
// device bindings by brute force.
type Middleware struct {
	limiter    *KeyedLimiter
	retryAfter time.Duration
}

// NewMiddleware creates a per-IP limiter allowing bursts of capacity
// requests and perMinute sustained requests per minute
func NewMiddleware(capacity int, perMinute float64) *Middleware {
	return &Middleware{
		limiter:    NewKeyedLimiter(capacity, perMinute/60.0, time.Hour),
		retryAfter: time.Minute,
	}
}

// Handler enforces the limit and rejects over-limit requests with 429
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !m.limiter.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(m.retryAfter.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status":"error","message":"Too many requests, try again later"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the originating IP, honoring proxy headers
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
