package service

import (
	"context"
	"fmt"
	"sync"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
)

// Loader appends units one at a time as the reader approaches the end of the
// loaded content.
type Loader struct {
	units      *UnitStore
	content    readingout.ContentSource
	reconciler *Reconciler
	telemetry  readingout.Telemetry
	logger     hclog.Logger

	mu       sync.Mutex
	total    int
	inFlight bool
}

func NewLoader(units *UnitStore, content readingout.ContentSource, reconciler *Reconciler, telemetry readingout.Telemetry, logger hclog.Logger) *Loader {
	return &Loader{
		units:      units,
		content:    content,
		reconciler: reconciler,
		telemetry:  telemetryOrNop(telemetry),
		logger:     logging.OrDiscard(logger),
		total:      -1,
	}
}

func (l *Loader) Init(ctx context.Context) error {
	total, err := l.content.UnitCount(ctx)
	if err != nil {
		return fmt.Errorf("fetch unit count: %w", err)
	}
	if total < 0 {
		total = 0
	}
	l.mu.Lock()
	l.total = total
	l.mu.Unlock()
	return nil
}

// Total returns the unit count; ok is false before Init succeeded.
func (l *Loader) Total() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, l.total >= 0
}

// CanLoad reports whether Reserve would hand out a placeholder.
func (l *Loader) CanLoad() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total >= 0 && !l.inFlight && l.units.Len() < l.total
}

// Reserve appends the next pending placeholder. It reports false when the
// count is unknown, a load is in flight or every unit is allocated.
func (l *Loader) Reserve() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total < 0 || l.inFlight || l.units.Len() >= l.total {
		return -1, false
	}
	l.inFlight = true
	return l.units.AppendPending(), true
}

// Resolve runs the pipeline for a reserved unit and releases the reservation.
func (l *Loader) Resolve(ctx context.Context, index int) error {
	defer func() {
		l.mu.Lock()
		l.inFlight = false
		l.mu.Unlock()
	}()
	return l.run(ctx, index)
}

func (l *Loader) LoadNext(ctx context.Context) (int, bool, error) {
	index, ok := l.Reserve()
	if !ok {
		return -1, false, nil
	}
	return index, true, l.Resolve(ctx, index)
}

// Retry re-runs the pipeline for a failed unit.
func (l *Loader) Retry(ctx context.Context, index int) error {
	unit, ok := l.units.Get(index)
	if !ok {
		return fmt.Errorf("retry unit %d: %w", index, apperrors.ErrOutOfRange)
	}
	if unit.Status != domain.UnitFailed {
		return fmt.Errorf("retry unit %d in status %s: %w", index, unit.Status, apperrors.ErrInvalidInput)
	}
	if _, err := l.units.Update(index, func(u domain.Unit) domain.Unit {
		u.Status = domain.UnitPending
		u.Err = ""
		return u
	}); err != nil {
		return err
	}
	return l.run(ctx, index)
}

func (l *Loader) run(ctx context.Context, index int) error {
	text, err := l.content.UnitText(ctx, index)
	if err != nil {
		l.telemetry.UnitLoadFailed("text")
		l.logger.Warn("unit text fetch failed", "unit", index, "error", err)
		_, _ = l.units.Update(index, func(u domain.Unit) domain.Unit { return u.WithFailure(err) })
		return fmt.Errorf("fetch unit %d text: %w", index, err)
	}

	analysis, err := l.content.UnitAnalysis(ctx, index)
	if err != nil {
		l.telemetry.UnitLoadFailed("analysis")
		l.logger.Warn("unit analysis failed, loading without it", "unit", index, "error", err)
		analysis = domain.Analysis{PrimaryType: domain.UnknownContentType}
	}
	if analysis.PrimaryType == "" {
		analysis.PrimaryType = domain.UnknownContentType
	}

	version := l.reconciler.Version()
	content := l.reconciler.Resolve(ctx, index, text, analysis.PrimaryType, version)
	if _, err := l.units.Update(index, func(u domain.Unit) domain.Unit {
		return u.WithAnalysis(text, analysis, content)
	}); err != nil {
		return err
	}
	if l.reconciler.Version() != version {
		if err := l.reconciler.ReconcileUnit(ctx, index); err != nil {
			l.logger.Debug("late reconcile failed", "unit", index, "error", err)
		}
	}
	return nil
}
