package service_test

import (
	"context"
	"errors"
	"testing"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/service"
	apperrors "bookplus/internal/platform/errors"
)

func newLoader(t *testing.T, content *memoryContent, telemetry *countingTelemetry) (*service.UnitStore, *service.Loader) {
	t.Helper()
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, telemetry, nil, service.ReconcilerOptions{})
	loader := service.NewLoader(units, content, reconciler, telemetry, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return units, loader
}

func TestLoaderMarksTextFailureAndRetries(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second", "third")
	telemetry := newCountingTelemetry()
	units, loader := newLoader(t, content, telemetry)

	content.setFailText(1, true)
	for i := 0; i < 3; i++ {
		_, ok, err := loader.LoadNext(context.Background())
		if !ok {
			t.Fatalf("load %d should start", i)
		}
		if i == 1 && !errors.Is(err, errUnavailable) {
			t.Fatalf("expected text failure for unit 1, got %v", err)
		}
	}

	failed, _ := units.Get(1)
	if failed.Status != domain.UnitFailed || failed.Err == "" {
		t.Fatalf("unit 1 should be failed with an error, got %+v", failed)
	}
	for _, index := range []int{0, 2} {
		if unit, _ := units.Get(index); unit.Status != domain.UnitLoaded {
			t.Fatalf("sibling unit %d should load, got %s", index, unit.Status)
		}
	}
	if telemetry.loadFailures["text"] != 1 {
		t.Fatalf("expected one text failure, got %d", telemetry.loadFailures["text"])
	}

	content.setFailText(1, false)
	if err := loader.Retry(context.Background(), 1); err != nil {
		t.Fatalf("retry: %v", err)
	}
	retried, _ := units.Get(1)
	if retried.Status != domain.UnitLoaded || retried.Text != "second" || retried.Err != "" {
		t.Fatalf("retry should load unit 1, got %+v", retried)
	}
	if err := loader.Retry(context.Background(), 1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("retry of loaded unit should be rejected, got %v", err)
	}
}

func TestLoaderIsolatesAnalysisFailure(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("words without analysis")
	content.failAnalysis[0] = true
	telemetry := newCountingTelemetry()
	units, loader := newLoader(t, content, telemetry)

	if _, _, err := loader.LoadNext(context.Background()); err != nil {
		t.Fatalf("analysis failure should not fail the load: %v", err)
	}
	unit, _ := units.Get(0)
	if unit.Status != domain.UnitLoaded || unit.PrimaryType != domain.UnknownContentType || unit.Importance != 0 {
		t.Fatalf("unexpected unit %+v", unit)
	}
	if unit.Adaptive == nil {
		t.Fatalf("unit should still carry adaptive content")
	}
	if telemetry.loadFailures["analysis"] != 1 {
		t.Fatalf("expected one analysis failure, got %d", telemetry.loadFailures["analysis"])
	}
}

func TestLoaderGuardsInFlightAndTotal(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	units, loader := newLoader(t, content, nil)

	index, ok := loader.Reserve()
	if !ok || index != 0 {
		t.Fatalf("expected reservation 0, got %d %v", index, ok)
	}
	if _, ok := loader.Reserve(); ok {
		t.Fatalf("second reservation while one is in flight")
	}
	if unit, _ := units.Get(0); unit.Status != domain.UnitPending {
		t.Fatalf("reserved unit should be pending, got %s", unit.Status)
	}
	if err := loader.Resolve(context.Background(), index); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok, _ := loader.LoadNext(context.Background()); !ok {
		t.Fatalf("second unit should load")
	}
	if _, ok, _ := loader.LoadNext(context.Background()); ok {
		t.Fatalf("no load past the total")
	}
	if total, known := loader.Total(); !known || total != 2 {
		t.Fatalf("unexpected total %d %v", total, known)
	}
}

func TestLoaderNeedsInit(t *testing.T) {
	t.Parallel()
	units := service.NewUnitStore()
	content := newMemoryContent("first")
	loader := service.NewLoader(units, content, service.NewReconciler(units, content, nil, nil, service.ReconcilerOptions{}), nil, nil)
	if _, ok := loader.Reserve(); ok {
		t.Fatalf("reserve before init should fail")
	}
	if _, known := loader.Total(); known {
		t.Fatalf("total should be unknown before init")
	}
}

func TestLoaderAppliesCurrentVersionToNewUnits(t *testing.T) {
	t.Parallel()
	content := newMemoryContent("first", "second")
	units := service.NewUnitStore()
	reconciler := service.NewReconciler(units, content, nil, nil, service.ReconcilerOptions{Version: domain.VersionCondensed})
	loader := service.NewLoader(units, content, reconciler, nil, nil)
	if err := loader.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, _, err := loader.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	unit, _ := units.Get(0)
	if unit.Adaptive.Text != "condensed:first" {
		t.Fatalf("new unit should use the global version, got %q", unit.Adaptive.Text)
	}
}
