package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "bookplus"

// Registry bundles the process collectors. A fresh Registry per process keeps
// tests free of the global default registerer.
type Registry struct {
	reg *prometheus.Registry

	Classifications  *prometheus.CounterVec
	VariantFallbacks prometheus.Counter
	UnitLoadFailures *prometheus.CounterVec
	PatternFailures  prometheus.Counter
	SnapshotWrites   prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Closed dwell intervals classified, by reading speed.",
		}, []string{"speed"}),
		VariantFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variant_fallbacks_total",
			Help:      "Adaptive variant fetches replaced by the full-text fallback.",
		}),
		UnitLoadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_load_failures_total",
			Help:      "Unit pipeline failures, by stage.",
		}, []string{"stage"}),
		PatternFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_pattern_failures_total",
			Help:      "Reading pattern writes that failed.",
		}),
		SnapshotWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Periodic session snapshots written.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests, by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		r.Classifications,
		r.VariantFallbacks,
		r.UnitLoadFailures,
		r.PatternFailures,
		r.SnapshotWrites,
		r.HTTPRequests,
	)
	return r
}

// Gatherer exposes the registry to promhttp.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
