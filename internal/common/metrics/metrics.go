// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dashboard_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route"},
	)

	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_dataset_loads_total",
			Help: "Dataset loads by dataset and result (loaded, cached, failed)",
		},
		[]string{"dataset", "result"},
	)

	ContextCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_chat_context_lookups_total",
			Help: "Chat context cache lookups by result (hit, miss, error)",
		},
		[]string{"backend", "result"},
	)

	ChatReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_chat_replies_total",
			Help: "Chat replies by outcome (model, fallback)",
		},
		[]string{"outcome"},
	)
)
