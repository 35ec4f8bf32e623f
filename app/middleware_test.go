package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBareApplication() *application {
	cfg := &Config{Environment: "test"}
	cfg.Limiter.RPS = 2
	cfg.Limiter.Burst = 4
	cfg.Limiter.Enabled = true

	return &application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "lowercase scheme",
			header:   "bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:     "capitalized scheme",
			header:   "Bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:     "uppercase scheme",
			header:   "BEARER ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:     "wrong scheme",
			header:   "Basic dXNlcjpwYXNz",
			expected: "",
		},
		{
			name:     "missing token",
			header:   "bearer",
			expected: "",
		},
		{
			name:     "too many parts",
			header:   "bearer one two",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTokenFromHeader(tc.header))
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := newBareApplication()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := app.rateLimit(next)

	// burst of 4 allowed, fifth immediate request rejected
	for i := 0; i < 4; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	app := newBareApplication()
	app.config.Limiter.Enabled = false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := app.rateLimit(next)

	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	app.recoverPanic(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}
