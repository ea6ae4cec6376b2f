package service_test

import (
	"context"
	"errors"
	"testing"

	"bookplus/internal/modules/content/domain"
	"bookplus/internal/modules/content/service"
	apperrors "bookplus/internal/platform/errors"
)

type fakeBooks map[string]domain.BookRef

func (f fakeBooks) Resolve(_ context.Context, bookID string) (domain.BookRef, error) {
	ref, ok := f[bookID]
	if !ok {
		return domain.BookRef{}, apperrors.ErrNotFound
	}
	return ref, nil
}

type countingLoader struct {
	units []string
	loads int
}

func (l *countingLoader) Load(_ context.Context, book domain.BookRef) (domain.Document, error) {
	l.loads++
	return domain.Document{Title: book.Title, Units: l.units}, nil
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string) (domain.Analysis, error) {
	return domain.Analysis{}, errors.New("analyzer down")
}

func (failingAnalyzer) Adapt(context.Context, string, domain.Analysis, domain.Version) (domain.Variant, error) {
	return domain.Variant{}, errors.New("analyzer down")
}

func newService(loader *countingLoader) *service.ContentService {
	books := fakeBooks{
		"b1":    {ID: "b1", Title: "Walden", FilePath: "/books/walden.md", Format: "markdown"},
		"empty": {ID: "empty", Title: "No File"},
	}
	return service.NewContentService(books, loader, service.NewHeuristicAnalyzer(), nil)
}

func TestContentServiceCachesDocuments(t *testing.T) {
	t.Parallel()
	loader := &countingLoader{units: []string{"# Economy", "I went to the woods because I wished to live deliberately."}}
	svc := newService(loader)
	ctx := context.Background()

	total, err := svc.UnitCount(ctx, "b1")
	if err != nil {
		t.Fatalf("unit count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 units, got %d", total)
	}
	text, err := svc.UnitText(ctx, "b1", 1)
	if err != nil {
		t.Fatalf("unit text: %v", err)
	}
	if text != loader.units[1] {
		t.Fatalf("unexpected text %q", text)
	}
	if loader.loads != 1 {
		t.Fatalf("expected one load, got %d", loader.loads)
	}

	svc.Invalidate("b1")
	if _, err := svc.UnitCount(ctx, "b1"); err != nil {
		t.Fatalf("unit count after invalidate: %v", err)
	}
	if loader.loads != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", loader.loads)
	}
}

func TestContentServiceAnalysisAndVariants(t *testing.T) {
	t.Parallel()
	svc := newService(&countingLoader{units: []string{"# Economy", "I went to the woods because I wished to live deliberately."}})
	ctx := context.Background()

	heading, err := svc.UnitAnalysis(ctx, "b1", 0)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if heading.PrimaryType != domain.TypeHeading {
		t.Fatalf("expected heading, got %s", heading.PrimaryType)
	}

	variant, err := svc.AdaptiveVariant(ctx, "b1", 0, "auto")
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	if variant.Version != domain.VersionFull {
		t.Fatalf("important heading should resolve auto to full, got %s", variant.Version)
	}
	if variant.HighlightedSentences == nil {
		t.Fatalf("highlights must never be nil")
	}

	if _, err := svc.AdaptiveVariant(ctx, "b1", 1, "tiny"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid version error, got %v", err)
	}
}

func TestContentServiceErrors(t *testing.T) {
	t.Parallel()
	svc := newService(&countingLoader{units: []string{"only"}})
	ctx := context.Background()

	if _, err := svc.UnitText(ctx, "b1", 5); !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := svc.UnitCount(ctx, "empty"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for book without file, got %v", err)
	}
	if _, err := svc.UnitCount(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	broken := service.NewContentService(fakeBooks{"b1": {ID: "b1", FilePath: "/x.md", Format: "markdown"}}, &countingLoader{units: []string{"text"}}, failingAnalyzer{}, nil)
	if _, err := broken.UnitAnalysis(ctx, "b1", 0); err == nil {
		t.Fatalf("expected analyzer error to surface")
	}
}
