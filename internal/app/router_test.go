package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/kafka-order-processor/internal/adapter/httpserver"
	"github.com/fairyhunter13/kafka-order-processor/internal/app"
	"github.com/fairyhunter13/kafka-order-processor/internal/config"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example", []string{"https://a.example"}},
		{" https://a.example , https://b.example ", []string{"https://a.example", "https://b.example"}},
		{" , ", []string{"*"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, app.ParseOrigins(tc.in), "input %q", tc.in)
	}
}

func newOpsHandler() http.Handler {
	cfg := config.Config{
		AdminAddr:        ":8080",
		CORSAllowOrigins: "*",
		RateLimitPerMin:  30,
	}
	srv := httpserver.NewServer(cfg, nil, nil, nil, nil, nil)
	return app.BuildRouter(cfg, srv)
}

func TestBuildRouter_Healthz(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rw.Result().StatusCode)
}

func TestBuildRouter_Metrics(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "go_goroutines")
}

func TestBuildRouter_Readyz(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	// No checks wired in this fixture, so readiness trivially passes.
	assert.Equal(t, http.StatusOK, rw.Result().StatusCode)
}

func TestBuildRouter_SecurityAndRequestHeaders(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rw.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rw.Header().Get("X-Request-Id"))
	assert.Len(t, rw.Header().Get("X-Trace-Id"), 32)
}

func TestBuildRouter_AdminCaches(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/admin/caches", nil))
	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "caches")
}

func TestBuildRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	h := newOpsHandler()
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rw.Result().StatusCode)
}
