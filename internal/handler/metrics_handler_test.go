package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/task-tracker-api/internal/service"
)

type pingerStub struct{ err error }

func (p pingerStub) PingContext(context.Context) error { return p.err }

func TestMetricsHandlerHealth(t *testing.T) {
	c, w := newGinContext(http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, pingerStub{}).Health(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, pingerStub{err: errors.New("refused")}).Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordSubmission("created")

	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(metrics, nil).Prometheus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tracker_submissions_total")

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
