package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback paths recorded on SearchRequests.
const (
	FallbackNone    = "none"
	FallbackCountry = "country"
	FallbackOpen    = "open"
)

// Conversion outcomes recorded on CurrencyConversions.
const (
	ConversionOK       = "ok"
	ConversionSame     = "same_currency"
	ConversionFallback = "fallback"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bringalong_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bringalong_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bringalong_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bringalong_trip_search_requests_total",
			Help: "Trip searches by fallback path taken",
		},
		[]string{"fallback"},
	)

	SearchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bringalong_trip_search_results_total",
			Help: "Trips returned by search, by match tier",
		},
		[]string{"tier"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bringalong_trip_search_duration_seconds",
			Help:    "Trip search latency including fallback queries",
			Buckets: prometheus.DefBuckets,
		},
	)

	CurrencyConversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bringalong_currency_conversions_total",
			Help: "Fee conversions by outcome",
		},
		[]string{"outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bringalong_cache_lookups_total",
			Help: "Rate and geolocation cache lookups",
		},
		[]string{"kind", "result"},
	)
)
