package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSMiddlewareHeaders(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})

	handler := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})

	called := false
	handler := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/tryon", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called, "preflight should not reach the handler")
}

func TestCORSMiddlewareCustomOrigin(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})
	s.corsOrigin = "https://app.example.com"

	handler := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})
	s.rateLimiter = nil

	called := 0
	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called++
	})

	for range 10 {
		req := httptest.NewRequest(http.MethodPost, "/v1/tryon", nil)
		handler(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 10, called)
}

func TestRateLimitMiddlewareEnforced(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})
	s.rateLimiter = NewRateLimiter(2, 0, 0, 0)

	called := 0
	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called++
	})

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/tryon", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		handler(last, req)
	}

	assert.Equal(t, 2, called)
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "requests_per_minute", last.Header().Get("X-RateLimit-Type"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])
}

func TestRateLimitMiddlewareQuotaResponse(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})
	s.rateLimiter = NewRateLimiter(0, 0, 1, 0)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {})

	var last *httptest.ResponseRecorder
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/v1/tryon", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		last = httptest.NewRecorder()
		handler(last, req)
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "max_requests_per_day", last.Header().Get("X-Quota-Type"))
	assert.Equal(t, "1", last.Header().Get("X-Quota-Limit"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, "quota_exceeded", body["error"])
}

func TestRateLimitMiddlewareSeparateClients(t *testing.T) {
	s := newTestServer(&mockTryOnPipeline{})
	s.rateLimiter = NewRateLimiter(1, 0, 0, 0)

	called := 0
	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called++
	})

	for i, addr := range []string{"10.0.1.1:80", "10.0.1.2:80", "10.0.1.3:80"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/tryon", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "client %d", i)
	}
	assert.Equal(t, 3, called)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.168.1.10:54321",
			want:       "192.168.1.10",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:       "203.0.113.5",
		},
		{
			name:       "x-forwarded-for chain takes first",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 70.41.3.18, 150.172.238.178"},
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-forwarded-for wins over x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.5",
				"X-Real-IP":       "198.51.100.7",
			},
			want: "203.0.113.5",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.1.10",
			want:       "192.168.1.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
