package geocoding

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback reasons.
const (
	reasonUnconfigured = "unconfigured"
	reasonCredentials  = "credentials"
	reasonTimeout      = "timeout"
	reasonCircuitOpen  = "circuit_open"
	reasonCanceled     = "canceled"
	reasonError        = "error"
)

var (
	geocodeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propsearch_geocode_fallbacks_total",
			Help: "Geocode lookups that degraded to zero candidates, by reason",
		},
		[]string{"reason"},
	)

	geocodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "propsearch_geocode_duration_seconds",
			Help:    "Geocode lookup latency including cache",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	geocodeCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propsearch_geocode_cache_requests_total",
			Help: "Geocode cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
