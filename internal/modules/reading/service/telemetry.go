package service

import (
	"context"
	"sync"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
)

type nopTelemetry struct{}

func (nopTelemetry) Classified(domain.Speed) {}
func (nopTelemetry) VariantFallback()        {}
func (nopTelemetry) UnitLoadFailed(string)   {}
func (nopTelemetry) PatternFailed()          {}
func (nopTelemetry) SnapshotWritten()        {}

func telemetryOrNop(t readingout.Telemetry) readingout.Telemetry {
	if t == nil {
		return nopTelemetry{}
	}
	return t
}

// Dispatcher runs one-way background writes. Nothing waits for them except
// Wait, which the surface calls on close.
type Dispatcher struct {
	ctx context.Context
	wg  sync.WaitGroup
}

// NewDispatcher detaches tasks from ctx cancellation; only its values are kept.
func NewDispatcher(ctx context.Context) *Dispatcher {
	return &Dispatcher{ctx: context.WithoutCancel(ctx)}
}

func (d *Dispatcher) Go(task func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		task(d.ctx)
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
