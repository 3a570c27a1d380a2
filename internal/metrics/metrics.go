// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_tenants",
			Help: "Number of tenant sites currently loaded in memory.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenant sites successfully loaded.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant load errors.",
		})

	TenantEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_evict_total",
			Help: "Cumulative number of tenants evicted from the cache.",
		})

	GateDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_denied_total",
			Help: "Admin gate denials, labelled by reason.",
		},
		[]string{"reason"}, // domain, no_token, verify_failed
	)

	GateVerifyErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_verify_errors_total",
			Help: "Session verifications that failed on error rather than rejection.",
		})

	TrackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track_events_total",
			Help: "Accepted tracking events by type.",
		},
		[]string{"type"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveTenants,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantEvictTotal,
		GateDeniedTotal,
		GateVerifyErrorsTotal,
		TrackEventsTotal,
		RateLimitedTotal,
	)
}
