package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/kafka-order-processor/internal/adapter/httpserver"
	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/config"
)

func opsServer(caches []cache.Store, checks ...func(context.Context) error) *httpserver.Server {
	var db, mongo, kafka, redis func(context.Context) error
	if len(checks) > 0 {
		db = checks[0]
	}
	if len(checks) > 1 {
		mongo = checks[1]
	}
	if len(checks) > 2 {
		kafka = checks[2]
	}
	if len(checks) > 3 {
		redis = checks[3]
	}
	return httpserver.NewServer(config.Config{AdminAddr: ":8080"}, caches, db, mongo, kafka, redis)
}

func TestReadyzHandler_AllOK(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	s := opsServer(nil, ok, ok, ok, ok)

	rw := httptest.NewRecorder()
	s.ReadyzHandler()(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)

	var body struct {
		Checks []struct {
			Name string `json:"name"`
			OK   bool   `json:"ok"`
		} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&body))
	require.Len(t, body.Checks, 4)
	for _, c := range body.Checks {
		assert.True(t, c.OK, "check %s", c.Name)
	}
}

func TestReadyzHandler_FailingDependency(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	bad := func(context.Context) error { return context.DeadlineExceeded }
	s := opsServer(nil, ok, bad, ok, nil)

	rw := httptest.NewRecorder()
	s.ReadyzHandler()(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "mongodb")
}

func TestReadyzHandler_NilChecksSkipped(t *testing.T) {
	t.Parallel()

	s := opsServer(nil, func(context.Context) error { return nil })

	rw := httptest.NewRecorder()
	s.ReadyzHandler()(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	var body struct {
		Checks []json.RawMessage `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&body))
	assert.Len(t, body.Checks, 1)
}

func TestCachesHandler_ReportsStats(t *testing.T) {
	t.Parallel()

	data := cache.New[string]("data", 10, time.Minute)
	partner := cache.New[string]("partner", 10, time.Minute)
	data.Set("k", "v")
	data.Get("k")
	data.Get("absent")

	s := opsServer([]cache.Store{data, partner})
	rw := httptest.NewRecorder()
	s.CachesHandler()(rw, httptest.NewRequest(http.MethodGet, "/admin/caches", nil))

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)

	var body struct {
		Caches map[string]map[string]any `json:"caches"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&body))
	require.Contains(t, body.Caches, "data")
	require.Contains(t, body.Caches, "partner")
	assert.EqualValues(t, 1, body.Caches["data"]["hit_count"])
	assert.EqualValues(t, 1, body.Caches["data"]["miss_count"])
	assert.EqualValues(t, 1, body.Caches["data"]["cache_size"])
}

func TestInvalidateCaches_All(t *testing.T) {
	t.Parallel()

	data := cache.New[string]("data", 10, time.Minute)
	partner := cache.New[string]("partner", 10, time.Minute)
	data.Set("k", "v")
	partner.Set("k", "v")

	s := opsServer([]cache.Store{data, partner})
	rw := httptest.NewRecorder()
	s.InvalidateCachesHandler()(rw, httptest.NewRequest(http.MethodPost, "/admin/caches/invalidate", nil))

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	assert.Equal(t, 0, data.Len())
	assert.Equal(t, 0, partner.Len())

	var body struct {
		Invalidated []string `json:"invalidated"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&body))
	assert.ElementsMatch(t, []string{"data", "partner"}, body.Invalidated)
}

func TestInvalidateCaches_Selected(t *testing.T) {
	t.Parallel()

	data := cache.New[string]("data", 10, time.Minute)
	partner := cache.New[string]("partner", 10, time.Minute)
	data.Set("k", "v")
	partner.Set("k", "v")

	s := opsServer([]cache.Store{data, partner})
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/caches/invalidate", strings.NewReader(`{"caches":["data"]}`))
	s.InvalidateCachesHandler()(rw, req)

	require.Equal(t, http.StatusOK, rw.Result().StatusCode)
	assert.Equal(t, 0, data.Len())
	assert.Equal(t, 1, partner.Len())
}

func TestInvalidateCaches_UnknownName(t *testing.T) {
	t.Parallel()

	s := opsServer([]cache.Store{cache.New[string]("data", 10, time.Minute)})
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/caches/invalidate", strings.NewReader(`{"caches":["bogus"]}`))
	s.InvalidateCachesHandler()(rw, req)

	assert.Equal(t, http.StatusNotFound, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "NOT_FOUND")
}

func TestInvalidateCaches_BadJSON(t *testing.T) {
	t.Parallel()

	s := opsServer(nil)
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/caches/invalidate", strings.NewReader(`{`))
	s.InvalidateCachesHandler()(rw, req)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "INVALID_EVENT")
}

func TestInvalidateCaches_BadName(t *testing.T) {
	t.Parallel()

	s := opsServer(nil)
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/caches/invalidate", strings.NewReader(`{"caches":["no spaces allowed"]}`))
	s.InvalidateCachesHandler()(rw, req)

	assert.Equal(t, http.StatusBadRequest, rw.Result().StatusCode)
	assert.Contains(t, rw.Body.String(), "INVALID_FORMAT")
}
