package middleware

import (
	"time"

	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// request bodies are JSON documents of a few dozen line items
var requestSizeBuckets = []float64{256, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20}

type httpInstruments struct {
	requests  *telemetry.Counter
	latency   *telemetry.Histogram
	reqBytes  *telemetry.Histogram
	respBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}

	histograms := []struct {
		dst  **telemetry.Histogram
		opts telemetry.HistogramOpts
	}{
		{&in.latency, telemetry.HistogramOpts{
			Name: "http_server_request_duration_seconds", Description: "HTTP request latency",
			Unit: "s", Boundaries: telemetry.HTTPDurationBuckets,
		}},
		{&in.reqBytes, telemetry.HistogramOpts{
			Name: "http_server_request_size_bytes", Description: "HTTP request body size",
			Unit: "By", Boundaries: requestSizeBuckets,
		}},
		// PDF downloads fill the upper buckets
		{&in.respBytes, telemetry.HistogramOpts{
			Name: "http_server_response_size_bytes", Description: "HTTP response body size",
			Unit: "By", Boundaries: telemetry.SizeBuckets,
		}},
	}
	for _, h := range histograms {
		if *h.dst, err = telemetry.NewHistogram(meter, h.opts); err != nil {
			return nil, err
		}
	}

	if in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return &in, nil
}

func passThrough(c *gin.Context) { c.Next() }

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. A nil or disabled provider yields a pass-through middleware.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"))
}

// HTTPMetricsWithMeter records HTTP metrics on meter
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		in.inFlight.Add(ctx, 1)
		c.Next()
		in.inFlight.Add(ctx, -1)

		attrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		in.requests.Inc(ctx, append(attrs, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
		in.latency.RecordDuration(ctx, time.Since(start), attrs...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqBytes.Record(ctx, float64(n), attrs...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respBytes.Record(ctx, float64(n), attrs...)
		}
	}
}

// routePattern returns the matched route ("/api/v1/documents/:id"), never the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
