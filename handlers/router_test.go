package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	log := quietLogger()

	healthy := NewRouter(Routes{Health: Health(func(context.Context) error { return nil }, log), Sessions: &stubSessions{}, Log: log})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewRouter(Routes{Health: Health(func(context.Context) error { return errors.New("db gone") }, log), Sessions: &stubSessions{}, Log: log})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestMetricsExposeRequestCounts(t *testing.T) {
	env := newTestEnv(t)
	m := env.createModel(t, "counted")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/models/"+m.ID, "").Code)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agency_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/models/{id}`)
}

func TestCORSPreflight(t *testing.T) {
	log := quietLogger()
	router := NewRouter(Routes{
		Models:      NewModelHandler(failingModels{}, Pagination{DefaultLimit: 10, MaxLimit: 100}, log),
		Sessions:    &stubSessions{},
		CORSOrigins: []string{"http://localhost:3000"},
		Log:         log,
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/models", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
