package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketBurstThenRefill(t *testing.T) {
	bucket := NewTokenBucket(3, 100)

	for i := 0; i < 3; i++ {
		assert.True(t, bucket.Allow(), "burst request %d", i)
	}
	assert.False(t, bucket.Allow(), "bucket must be empty after the burst")

	// 100 tokens/s refills one within 10ms
	time.Sleep(20 * time.Millisecond)
	assert.True(t, bucket.Allow())
}

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	limiter := NewKeyedLimiter(1, 0.001, 0)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"), "keys must not share buckets")
	assert.Equal(t, 2, limiter.Len())
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	m := NewMiddleware(2, 0.001)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-login", nil)
		req.RemoteAddr = ip + ":52431"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// another client is unaffected
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestMiddlewareHonorsForwardedFor(t *testing.T) {
	m := NewMiddleware(1, 0.001)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-login", nil)
		req.RemoteAddr = "127.0.0.1:52431"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("203.0.113.7, 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, send("203.0.113.8").Code)
}
