// Package metrics provides Prometheus collectors for the site generation API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sitegen"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// HTTPRateLimited counts requests rejected by the per-client limiter.
	HTTPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)

// Generation metrics
var (
	// GenerationsTotal counts generations by provider, kind (initial|revision) and outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total site generations by provider, kind and outcome",
		},
		[]string{"provider", "kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Time spent streaming a site from the model",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
		[]string{"provider", "kind"},
	)

	GenerationOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "output_bytes",
			Help:      "Size of the stored HTML document",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 10),
		},
		[]string{"provider"},
	)

	// GenerationFallbacks counts outputs that had to be wrapped in the fallback skeleton.
	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "fallback_wrapped_total",
			Help:      "Generated outputs wrapped in the fallback HTML skeleton",
		},
		[]string{"provider"},
	)
)

// Deployment metrics
var (
	DeploymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deploy",
			Name:      "requests_total",
			Help:      "Total deployments by target and outcome",
		},
		[]string{"target", "outcome"},
	)

	DeploymentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "deploy",
			Name:      "duration_seconds",
			Help:      "Time spent publishing a site",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"target"},
	)
)
