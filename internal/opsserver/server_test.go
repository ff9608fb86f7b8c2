package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func get(t *testing.T, h http.Handler, path string) (int, []byte) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	h := NewRouter(Options{DB: pingerFunc(func(context.Context) error { return nil })})
	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)

	var got health
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "ok", got.Store)
	assert.NotEmpty(t, got.Build.Version)
}

func TestHealthzStoreDown(t *testing.T) {
	h := NewRouter(Options{DB: pingerFunc(func(context.Context) error { return errors.New("connection refused") })})
	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	var got health
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "degraded", got.Status)
	assert.Equal(t, "connection refused", got.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "ops_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	code, body := get(t, NewRouter(Options{Gatherer: reg}), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "ops_test_total 1")
}

func TestStartDisabledAndShutdown(t *testing.T) {
	s, err := Start(Options{})
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, s.Shutdown(context.Background()))

	s, err = Start(Options{Listen: "127.0.0.1:0"})
	require.NoError(t, err)
	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, s.Shutdown(context.Background()))
}
