package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

type ReconcilerOptions struct {
	Version      domain.ContentVersion
	Concurrency  int
	DiscardStale bool
}

// Reconciler keeps every loaded unit's adaptive content in line with the
// global content version. Responses are applied as they arrive; with
// DiscardStale only responses of the latest reconciliation are applied.
type Reconciler struct {
	units        *UnitStore
	content      readingout.ContentSource
	telemetry    readingout.Telemetry
	logger       hclog.Logger
	concurrency  int
	discardStale bool

	mu      sync.RWMutex
	version domain.ContentVersion
	epoch   atomic.Uint64
}

func NewReconciler(units *UnitStore, content readingout.ContentSource, telemetry readingout.Telemetry, logger hclog.Logger, opts ReconcilerOptions) *Reconciler {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		units:        units,
		content:      content,
		telemetry:    telemetryOrNop(telemetry),
		logger:       logging.OrDiscard(logger),
		concurrency:  concurrency,
		discardStale: opts.DiscardStale,
		version:      opts.Version,
	}
}

func (r *Reconciler) Version() domain.ContentVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// SetVersion stores v and re-fetches every loaded unit, pinned ones included.
func (r *Reconciler) SetVersion(ctx context.Context, v domain.ContentVersion) error {
	r.mu.Lock()
	r.version = v
	epoch := r.epoch.Add(1)
	r.mu.Unlock()
	return r.reconcile(ctx, v, epoch, true)
}

// ReconcileAll re-fetches loaded units for the current version, leaving
// pinned units alone.
func (r *Reconciler) ReconcileAll(ctx context.Context) error {
	r.mu.RLock()
	v, epoch := r.version, r.epoch.Load()
	r.mu.RUnlock()
	return r.reconcile(ctx, v, epoch, false)
}

// ReconcileUnit re-fetches a single loaded unit for the current version.
func (r *Reconciler) ReconcileUnit(ctx context.Context, index int) error {
	r.mu.RLock()
	v, epoch := r.version, r.epoch.Load()
	r.mu.RUnlock()
	unit, ok := r.units.Get(index)
	if !ok {
		return fmt.Errorf("reconcile unit %d: %w", index, apperrors.ErrOutOfRange)
	}
	if unit.Status != domain.UnitLoaded {
		return fmt.Errorf("reconcile unit %d: %w", index, apperrors.ErrUnitNotLoaded)
	}
	content, err := r.fetch(ctx, unit, v)
	if err != nil {
		return err
	}
	r.apply(index, epoch, content)
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, v domain.ContentVersion, epoch uint64, includePinned bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, unit := range r.units.Snapshot() {
		if unit.Status != domain.UnitLoaded {
			continue
		}
		if !includePinned && unit.Adaptive != nil && unit.Adaptive.Pinned {
			continue
		}
		g.Go(func() error {
			content, err := r.fetch(gctx, unit, v)
			if err != nil {
				return err
			}
			r.apply(unit.Index, epoch, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reconcile %s: %w", v, err)
	}
	return nil
}

// Resolve fetches the variant for a unit that is about to be marked loaded.
// It never fails: a failed fetch yields the full-text fallback.
func (r *Reconciler) Resolve(ctx context.Context, index int, text, primaryType string, v domain.ContentVersion) domain.AdaptiveContent {
	content, err := r.fetch(ctx, domain.Unit{Index: index, Text: text, PrimaryType: primaryType}, v)
	if err != nil {
		return domain.FullContent(text, primaryType, false)
	}
	return content
}

// fetch only fails when ctx is done. On a collaborator error a unit already
// showing fetched content for v keeps it; any other unit gets the fallback.
func (r *Reconciler) fetch(ctx context.Context, unit domain.Unit, v domain.ContentVersion) (domain.AdaptiveContent, error) {
	content, err := r.content.AdaptiveVariant(ctx, unit.Index, v)
	if err == nil {
		content.Fetched, content.Version = true, v
		return content, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.AdaptiveContent{}, ctxErr
	}
	if unit.Adaptive.Holds(v) {
		r.logger.Debug("variant fetch failed, keeping current content", "unit", unit.Index, "version", v.String(), "error", err)
		return *unit.Adaptive, nil
	}
	r.telemetry.VariantFallback()
	r.logger.Debug("variant fetch failed, showing full text", "unit", unit.Index, "version", v.String(), "error", err)
	return domain.FullContent(unit.Text, unit.PrimaryType, false), nil
}

func (r *Reconciler) apply(index int, epoch uint64, content domain.AdaptiveContent) {
	_, _ = r.units.Update(index, func(u domain.Unit) domain.Unit {
		if u.Status != domain.UnitLoaded {
			return u
		}
		if r.discardStale && epoch != r.epoch.Load() {
			return u
		}
		return u.WithAdaptive(content)
	})
}

// PinFull shows the raw text of a loaded unit regardless of the global
// version until the next SetVersion.
func (r *Reconciler) PinFull(index int) error {
	unit, ok := r.units.Get(index)
	if !ok {
		return fmt.Errorf("pin unit %d: %w", index, apperrors.ErrOutOfRange)
	}
	if unit.Status != domain.UnitLoaded {
		return fmt.Errorf("pin unit %d: %w", index, apperrors.ErrUnitNotLoaded)
	}
	_, err := r.units.Update(index, func(u domain.Unit) domain.Unit {
		return u.WithAdaptive(domain.FullContent(u.Text, u.PrimaryType, true))
	})
	return err
}
