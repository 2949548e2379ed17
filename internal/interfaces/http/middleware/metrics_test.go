package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func newMeteredRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server")))
	router.GET("/api/v1/documents/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.POST("/api/v1/documents/generate", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return router, reader
}

func TestHTTPMetrics_DisabledProvider(t *testing.T) {
	tests := []struct {
		name string
		mp   func(t *testing.T) *telemetry.MeterProvider
	}{
		{"nil provider", func(*testing.T) *telemetry.MeterProvider { return nil }},
		{"disabled provider", func(t *testing.T) *telemetry.MeterProvider {
			mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
			require.NoError(t, err)
			return mp
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(HTTPMetrics(tt.mp(t)))
			router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHTTPMetricsWithMeter_RequestCounter(t *testing.T) {
	router, reader := newMeteredRouter(t)

	for _, id := range []string{"a", "b", "missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil))
	}

	rm := collectMetrics(t, reader)
	metric := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)

	byStatus := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		assert.Equal(t, "/api/v1/documents/:id", route.AsString())
		status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
		byStatus[status.AsInt64()] = dp.Value
	}
	assert.Equal(t, map[int64]int64{200: 2, 404: 1}, byStatus)
}

func TestHTTPMetricsWithMeter_DurationAndSizes(t *testing.T) {
	router, reader := newMeteredRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/generate", strings.NewReader(`{"document_type":"invoice"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	rm := collectMetrics(t, reader)
	for _, name := range []string{
		"http_server_request_duration_seconds",
		"http_server_request_size_bytes",
		"http_server_response_size_bytes",
	} {
		metric := findMetricByName(rm, name)
		require.NotNil(t, metric, name)
		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, name)
		require.Len(t, hist.DataPoints, 1, name)
		assert.Equal(t, uint64(1), hist.DataPoints[0].Count, name)
		method, _ := hist.DataPoints[0].Attributes.Value(telemetry.AttrHTTPMethod)
		assert.Equal(t, http.MethodPost, method.AsString())
	}
}

func TestHTTPMetricsWithMeter_ActiveRequestsSettle(t *testing.T) {
	router, reader := newMeteredRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/documents/a", nil))

	metric := findMetricByName(collectMetrics(t, reader), "http_server_active_requests")
	require.NotNil(t, metric)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value)
}

func TestHTTPMetricsWithMeter_UnmatchedRoute(t *testing.T) {
	router, reader := newMeteredRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	metric := findMetricByName(collectMetrics(t, reader), "http_server_request_total")
	require.NotNil(t, metric)
	sum := metric.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	route, _ := sum.DataPoints[0].Attributes.Value(telemetry.AttrHTTPRoute)
	assert.Equal(t, "unknown", route.AsString())
}
