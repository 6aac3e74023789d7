package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TrackingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_total",
			Help: "Total number of assembled tracking events by name and status (count)",
		},
		[]string{"event", "status"},
	)

	TrackingBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracking_build_duration_ms",
			Help:    "Event payload build duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"event"},
	)

	PriceCalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_price_calculations_total",
			Help: "Total number of variation price calculations by outcome (count)",
		},
		[]string{"status"},
	)

	SinkQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracking_sink_queue_depth",
			Help: "Number of events currently held by the in-memory sink (count)",
		},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_rate_limit_requests_total",
			Help: "Total number of requests seen by the rate limiter (count)",
		},
		[]string{"status"},
	)
)

func RegisterTrackingMetrics() {
	prometheus.MustRegister(
		TrackingEventsTotal,
		TrackingBuildDuration,
		PriceCalculationsTotal,
		SinkQueueDepth,
	)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}
