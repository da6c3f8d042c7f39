// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

// Package metrics exposes Prometheus instrumentation for the Solara API.
//
// The /metrics endpoint serves the default registry; counters below are
// incremented by the HTTP middleware and the security event log.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solara",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "solara",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// AuthFailuresTotal counts rejected authentication attempts by reason.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solara",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total authentication failures by reason (bad_credentials, invalid_token, revoked_token)",
		},
		[]string{"reason"},
	)

	// SecurityEventsTotal counts security events recorded by the in-memory log.
	SecurityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solara",
			Subsystem: "security",
			Name:      "events_total",
			Help:      "Total security events recorded, by event type and severity",
		},
		[]string{"type", "severity"},
	)
)

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
