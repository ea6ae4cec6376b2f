package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/service"
	apperrors "bookplus/internal/platform/errors"
)

func loadedStore(t *testing.T, content *memoryContent, opts service.ReconcilerOptions) (*service.UnitStore, *service.Reconciler, *service.Loader) {
	t.Helper()
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, nil, nil, opts)
	loader := service.NewLoader(units, content, reconciler, nil, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	for {
		_, ok, err := loader.LoadNext(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !ok {
			return units, reconciler, loader
		}
	}
}

func TestReconcilerSetVersionUpdatesEveryLoadedUnit(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second", "third")
	units, reconciler, _ := loadedStore(t, content, service.ReconcilerOptions{Concurrency: 2})

	if err := reconciler.SetVersion(context.Background(), domain.VersionCondensed); err != nil {
		t.Fatalf("set version: %v", err)
	}
	for _, unit := range units.Snapshot() {
		if unit.Adaptive == nil || unit.Adaptive.Variant != domain.VariantCondensed {
			t.Fatalf("unit %d not condensed: %+v", unit.Index, unit.Adaptive)
		}
		if unit.Adaptive.Text != "condensed:"+unit.Text {
			t.Fatalf("unit %d has text %q", unit.Index, unit.Adaptive.Text)
		}
	}
}

func TestReconcilerFallbackOnVariantFailure(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	telemetry := newCountingTelemetry()
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, telemetry, nil, service.ReconcilerOptions{})
	loader := service.NewLoader(units, content, reconciler, telemetry, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	content.setFailVariant(1, true)
	for i := 0; i < 2; i++ {
		if _, _, err := loader.LoadNext(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	unit, _ := units.Get(1)
	if unit.Adaptive == nil {
		t.Fatalf("loaded unit must carry adaptive content")
	}
	want := domain.FullContent("second", "narrative", false)
	if unit.Adaptive.Variant != want.Variant || unit.Adaptive.Text != want.Text || unit.Adaptive.Emphasis != want.Emphasis || len(unit.Adaptive.Highlights) != 0 {
		t.Fatalf("unexpected fallback %+v", unit.Adaptive)
	}

	if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
		t.Fatalf("set version: %v", err)
	}
	unit, _ = units.Get(1)
	if unit.Adaptive.Variant != domain.VariantFull || unit.Adaptive.Text != "second" {
		t.Fatalf("failed variant should fall back to full text, got %+v", unit.Adaptive)
	}
	other, _ := units.Get(0)
	if other.Adaptive.Variant != domain.VariantSummary {
		t.Fatalf("sibling unit should still reconcile, got %+v", other.Adaptive)
	}
	if telemetry.fallbacks != 2 {
		t.Fatalf("expected two counted fallbacks, got %d", telemetry.fallbacks)
	}
}

func TestReconcilerSkipsPendingAndFailedUnits(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second", "third")
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, nil, nil, service.ReconcilerOptions{})
	loader := service.NewLoader(units, content, reconciler, nil, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	content.setFailText(1, true)
	_, _, _ = loader.LoadNext(context.Background())
	_, _, _ = loader.LoadNext(context.Background())
	pending, ok := loader.Reserve()
	if !ok {
		t.Fatalf("expected a reservation")
	}

	if err := reconciler.SetVersion(context.Background(), domain.VersionCondensed); err != nil {
		t.Fatalf("set version: %v", err)
	}
	failed, _ := units.Get(1)
	if failed.Status != domain.UnitFailed || failed.Adaptive != nil {
		t.Fatalf("failed unit should be untouched, got %+v", failed)
	}
	placeholder, _ := units.Get(pending)
	if placeholder.Status != domain.UnitPending || placeholder.Adaptive != nil {
		t.Fatalf("pending unit should be untouched, got %+v", placeholder)
	}
}

func TestReconcilerIsIdempotent(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	units, reconciler, _ := loadedStore(t, content, service.ReconcilerOptions{})

	if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
		t.Fatalf("set version: %v", err)
	}
	first := units.Snapshot()
	for i := 0; i < 3; i++ {
		if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
			t.Fatalf("set version: %v", err)
		}
	}
	again := units.Snapshot()
	for i := range first {
		if first[i].Adaptive.Text != again[i].Adaptive.Text || first[i].Adaptive.Variant != again[i].Adaptive.Variant {
			t.Fatalf("unit %d changed: %+v vs %+v", i, first[i].Adaptive, again[i].Adaptive)
		}
	}
}

func TestReconcilerPinFullClearedBySetVersion(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	units, reconciler, _ := loadedStore(t, content, service.ReconcilerOptions{Version: domain.VersionSummary})

	if err := reconciler.PinFull(1); err != nil {
		t.Fatalf("pin: %v", err)
	}
	unit, _ := units.Get(1)
	if !unit.Adaptive.Pinned || unit.Adaptive.Text != "second" || unit.Adaptive.Variant != domain.VariantFull {
		t.Fatalf("unexpected pinned content %+v", unit.Adaptive)
	}

	if err := reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("reconcile all: %v", err)
	}
	unit, _ = units.Get(1)
	if !unit.Adaptive.Pinned {
		t.Fatalf("reconcile all should keep the pin")
	}

	if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
		t.Fatalf("set version: %v", err)
	}
	unit, _ = units.Get(1)
	if unit.Adaptive.Pinned || unit.Adaptive.Text != "summary:second" {
		t.Fatalf("set version should clear the pin, got %+v", unit.Adaptive)
	}
}

func TestReconcilerPinFullRejectsUnloadedUnits(t *testing.T) {
	t.Parallel()
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, newMemoryContent("x"), nil, nil, service.ReconcilerOptions{})
	if err := reconciler.PinFull(0); !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	units.AppendPending()
	if err := reconciler.PinFull(0); !errors.Is(err, apperrors.ErrUnitNotLoaded) {
		t.Fatalf("expected not loaded, got %v", err)
	}
}

// gatedContent blocks summary variants until released so a later
// reconciliation can overtake an earlier one.
type gatedContent struct {
	*memoryContent
	gate    chan struct{}
	waiting sync.WaitGroup
}

func (g *gatedContent) AdaptiveVariant(ctx context.Context, index int, version domain.ContentVersion) (domain.AdaptiveContent, error) {
	if version == domain.VersionSummary {
		g.waiting.Done()
		<-g.gate
	}
	return g.memoryContent.AdaptiveVariant(ctx, index, version)
}

func TestReconcilerDiscardsStaleResponsesWhenEnabled(t *testing.T) {
	t.Parallel()
	for _, discard := range []bool{false, true} {
		content := &gatedContent{memoryContent: newMemoryContent("only"), gate: make(chan struct{})}
		units, reconciler, _ := loadedStore(t, content.memoryContent, service.ReconcilerOptions{DiscardStale: discard})
		reconciler = service.NewReconciler(units, content, nil, nil, service.ReconcilerOptions{DiscardStale: discard})

		content.waiting.Add(1)
		done := make(chan error, 1)
		go func() { done <- reconciler.SetVersion(context.Background(), domain.VersionSummary) }()
		content.waiting.Wait()
		if err := reconciler.SetVersion(context.Background(), domain.VersionCondensed); err != nil {
			t.Fatalf("set condensed: %v", err)
		}
		close(content.gate)
		if err := <-done; err != nil {
			t.Fatalf("set summary: %v", err)
		}

		unit, _ := units.Get(0)
		want := "summary:only"
		if discard {
			want = "condensed:only"
		}
		if unit.Adaptive.Text != want {
			t.Fatalf("discard=%v: expected %q, got %q", discard, want, unit.Adaptive.Text)
		}
	}
}

func TestReconcilerKeepsFetchedVariantWhenRepeatFetchFails(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("alpha beta")
	units, reconciler, _ := loadedStore(t, content, service.ReconcilerOptions{})

	if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
		t.Fatalf("set version: %v", err)
	}
	content.setFailVariant(0, true)
	if err := reconciler.SetVersion(context.Background(), domain.VersionSummary); err != nil {
		t.Fatalf("repeat set version: %v", err)
	}
	unit, _ := units.Get(0)
	if unit.Adaptive.Text != "summary:alpha beta" || unit.Adaptive.Variant != domain.VariantSummary {
		t.Fatalf("summary should survive a failed repeat fetch, got %+v", unit.Adaptive)
	}

	if err := reconciler.SetVersion(context.Background(), domain.VersionCondensed); err != nil {
		t.Fatalf("set version: %v", err)
	}
	unit, _ = units.Get(0)
	if unit.Adaptive.Text != "alpha beta" || unit.Adaptive.Variant != domain.VariantFull || unit.Adaptive.Fetched {
		t.Fatalf("a new version with no variant should fall back to full text, got %+v", unit.Adaptive)
	}
}

func TestReconcilerReconcileAllReplacesFallbacks(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, nil, nil, service.ReconcilerOptions{Version: domain.VersionCondensed})
	loader := service.NewLoader(units, content, reconciler, nil, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	content.setFailVariant(1, true)
	for i := 0; i < 2; i++ {
		if _, _, err := loader.LoadNext(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if unit, _ := units.Get(1); unit.Adaptive.Text != "second" {
		t.Fatalf("expected the fallback first, got %+v", unit.Adaptive)
	}

	content.setFailVariant(1, false)
	if err := reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("reconcile all: %v", err)
	}
	unit, _ := units.Get(1)
	if unit.Adaptive.Text != "condensed:second" || !unit.Adaptive.Fetched || unit.Adaptive.Version != domain.VersionCondensed {
		t.Fatalf("reconcile all should fetch the real variant, got %+v", unit.Adaptive)
	}
}
