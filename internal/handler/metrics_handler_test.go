package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]Pinger
		status int
	}{
		{name: "all healthy", checks: map[string]Pinger{"postgres": ok, "redis": ok}, status: http.StatusOK},
		{name: "redis down", checks: map[string]Pinger{"postgres": ok, "redis": down}, status: http.StatusServiceUnavailable},
		{name: "no checks", status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewMetricsHandler(service.NewMetricsService(), tc.checks)
			c, rec := newTestContext(http.MethodGet, "/ready", nil, nil)

			handler.Ready(c)

			require.Equal(t, tc.status, rec.Code)
			var body struct {
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Checks, len(tc.checks))
		})
	}
}

func TestMetricsHandlerSnapshot(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordRateLimitRejection("create_bug")
	handler := NewMetricsHandler(metrics, nil)
	c, rec := newTestContext(http.MethodGet, "/metrics/summary", nil, managerClaims)

	handler.Snapshot(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Data["rate_limit_rejections"])
}
