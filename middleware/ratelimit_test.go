package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiterWrap(t *testing.T) {
	limiter := NewIPRateLimiter(3)
	handler := limiter.Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v0/agents/register", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	// The burst admits perMinute requests; the next one is throttled.
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, do("203.0.113.7:4242"))
	}
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7:4242"))

	// Another client keeps its own bucket.
	assert.Equal(t, http.StatusCreated, do("198.51.100.9:4242"))

	// A RemoteAddr without a port still maps to a stable bucket.
	limiter2 := NewIPRateLimiter(1)
	handler2 := limiter2.Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	req := httptest.NewRequest(http.MethodPost, "/v0/agents/register", nil)
	req.RemoteAddr = "203.0.113.7"
	rec := httptest.NewRecorder()
	handler2(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = httptest.NewRecorder()
	handler2(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
