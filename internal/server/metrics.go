package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nailtry_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nailtry_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Try-on processing metrics
	tryonRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nailtry_tryon_requests_total",
			Help: "Total number of try-on requests",
		},
		[]string{"type", "status"}, // type: extract, tryon
	)

	tryonProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nailtry_tryon_processing_duration_seconds",
			Help:    "Try-on processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"type"}, // type: extract, tryon
	)

	fingersProcessed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nailtry_fingers_processed",
			Help:    "Number of fingers extracted or composited per request",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"stage"}, // stage: extract, composite
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nailtry_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: requests_per_minute, requests_per_hour, max_requests_per_day, max_data_per_day
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nailtry_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nailtry_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nailtry_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
