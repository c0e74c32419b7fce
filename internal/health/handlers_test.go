package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/health"
)

func okPinger() health.Pinger {
	return health.PingerFunc(func(context.Context) error { return nil })
}

func failPinger(msg string) health.Pinger {
	return health.PingerFunc(func(context.Context) error { return errors.New(msg) })
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	health.Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestReadyAllHealthy(t *testing.T) {
	h := health.Handler{DB: okPinger(), Redis: okPinger()}
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "ok", status["db"])
	require.Equal(t, "ok", status["redis"])
}

func TestReadyDegraded(t *testing.T) {
	h := health.Handler{DB: failPinger("connection refused"), Redis: okPinger()}
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "connection refused", status["db"])
	require.Equal(t, "ok", status["redis"])
}
