package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/service"
)

func TestMetricsHandlerHealth(t *testing.T) {
	h := NewMetricsHandler(nil, nil)
	c, w := newGinContext(http.MethodGet, "/health", nil)

	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok, "redis": ok})
		c, w := newGinContext(http.MethodGet, "/ready", nil)

		h.Ready(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok","redis":"ok"}}`, w.Body.String())
	})

	t.Run("one check fails", func(t *testing.T) {
		h := NewMetricsHandler(nil, map[string]ReadinessCheck{
			"postgres": ok,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		c, w := newGinContext(http.MethodGet, "/ready", nil)

		h.Ready(c)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
	})
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordBalanceApplied()
	h := NewMetricsHandler(metrics, nil)
	c, w := newGinContext(http.MethodGet, "/metrics", nil)

	h.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leave_balance_applications_total 1")

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
