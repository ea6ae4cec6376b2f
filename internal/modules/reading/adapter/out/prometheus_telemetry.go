package out

import (
	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	"bookplus/internal/platform/metrics"
)

type PrometheusTelemetry struct {
	registry *metrics.Registry
}

func NewPrometheusTelemetry(registry *metrics.Registry) readingout.Telemetry {
	return &PrometheusTelemetry{registry: registry}
}

func (t *PrometheusTelemetry) Classified(speed domain.Speed) {
	t.registry.Classifications.WithLabelValues(speed.String()).Inc()
}

func (t *PrometheusTelemetry) VariantFallback() {
	t.registry.VariantFallbacks.Inc()
}

func (t *PrometheusTelemetry) UnitLoadFailed(stage string) {
	t.registry.UnitLoadFailures.WithLabelValues(stage).Inc()
}

func (t *PrometheusTelemetry) PatternFailed() {
	t.registry.PatternFailures.Inc()
}

func (t *PrometheusTelemetry) SnapshotWritten() {
	t.registry.SnapshotWrites.Inc()
}
