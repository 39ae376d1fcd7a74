package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Scan metrics
	scanRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrscan_scan_requests_total",
			Help: "Total number of scan requests",
		},
		[]string{"type", "status"}, // type: image, raw, pdf, websocket; status: found, not_found, error
	)

	scanProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrscan_scan_processing_duration_seconds",
			Help:    "Scan processing duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"type"},
	)

	scanStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrscan_scan_stage_total",
			Help: "Finished scans by path and terminal stage",
		},
		[]string{"path", "stage"},
	)

	scanAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrscan_scan_detector_attempts",
			Help:    "Detector invocations per scan",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrscan_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrscan_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrscan_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrscan_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// observeScan is installed as the pipeline observer.
func observeScan(path pipeline.Path, res pipeline.Result) {
	scanStageTotal.WithLabelValues(string(path), string(res.Stage)).Inc()
	scanAttempts.Observe(float64(res.Attempts))
}

func scanStatus(res pipeline.Result) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Found:
		return "found"
	default:
		return "not_found"
	}
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
