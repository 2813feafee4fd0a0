// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RepliesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_replies_extracted_total",
			Help: "Total assistant replies by extraction outcome",
		},
		[]string{"outcome"},
	)

	TripsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_payloads_mapped_total",
			Help: "Total trip payloads by mapping outcome",
		},
		[]string{"outcome"},
	)

	TripsValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_payloads_validated_total",
			Help: "Total mapped trips by validation outcome",
		},
		[]string{"outcome"},
	)

	BudgetScaleFactor = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trip_budget_scale_factor",
			Help:    "Scale factor applied during budget reconciliation",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 5, 10},
		},
	)

	AssistantPollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_poll_attempts",
			Help:    "Poll attempts before an assistant reply arrived",
			Buckets: prometheus.LinearBuckets(1, 2, 15),
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "method", "status"},
	)
)
