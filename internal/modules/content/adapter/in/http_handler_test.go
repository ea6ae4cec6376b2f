package in

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookplus/internal/modules/content/dto"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/httpapi"

	"github.com/labstack/echo/v4"
)

type stubContent struct {
	units       []string
	lastVersion string
}

func (s *stubContent) UnitCount(_ context.Context, bookID string) (dto.UnitCountOutput, error) {
	if bookID != "b1" {
		return dto.UnitCountOutput{}, apperrors.ErrNotFound
	}
	return dto.UnitCountOutput{BookID: bookID, Total: len(s.units)}, nil
}

func (s *stubContent) UnitText(_ context.Context, _ string, index int) (dto.UnitTextOutput, error) {
	if index >= len(s.units) {
		return dto.UnitTextOutput{}, fmt.Errorf("%w: unit %d", apperrors.ErrOutOfRange, index)
	}
	return dto.UnitTextOutput{Index: index, Text: s.units[index]}, nil
}

func (s *stubContent) UnitAnalysis(_ context.Context, _ string, index int) (dto.AnalysisOutput, error) {
	return dto.AnalysisOutput{
		Segments:        []dto.SegmentOutput{{Text: s.units[index], Kind: "narrative"}},
		ImportanceScore: 0.5,
		PrimaryType:     "narrative",
	}, nil
}

func (s *stubContent) AdaptiveVariant(_ context.Context, input dto.VariantInput) (dto.VariantOutput, error) {
	s.lastVersion = input.Version
	return dto.VariantOutput{Version: "summary", Text: "short", HighlightedSentences: []string{}}, nil
}

func (s *stubContent) Invalidate(string) {}

func newContentServer() (*echo.Echo, *stubContent) {
	stub := &stubContent{units: []string{"It was a bright cold day in April."}}
	e := echo.New()
	e.HTTPErrorHandler = httpapi.ErrorHandler(nil)
	NewHTTPHandler(stub).Register(e.Group("/api"))
	return e, stub
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestUnitEndpoints(t *testing.T) {
	t.Parallel()
	e, stub := newContentServer()

	rec := get(e, "/api/books/b1/units")
	if rec.Code != http.StatusOK {
		t.Fatalf("count status %d", rec.Code)
	}
	var count dto.UnitCountOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil || count.Total != 1 {
		t.Fatalf("unexpected count %s (%v)", rec.Body.String(), err)
	}

	rec = get(e, "/api/books/b1/units/0")
	var text dto.UnitTextOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &text); err != nil || text.Text != stub.units[0] {
		t.Fatalf("unexpected text %s (%v)", rec.Body.String(), err)
	}

	rec = get(e, "/api/books/b1/units/0/analysis")
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	for _, key := range []string{"segments", "reading_difficulty", "importance_score", "primary_type"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("analysis body missing %q: %s", key, rec.Body.String())
		}
	}

	rec = get(e, "/api/books/b1/units/0/adaptive?version=auto")
	if rec.Code != http.StatusOK || stub.lastVersion != "auto" {
		t.Fatalf("adaptive status %d version %q", rec.Code, stub.lastVersion)
	}
	raw = map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode variant: %v", err)
	}
	if _, ok := raw["highlighted_sentences"]; !ok {
		t.Fatalf("variant body missing highlights: %s", rec.Body.String())
	}
}

func TestUnitEndpointErrors(t *testing.T) {
	t.Parallel()
	e, _ := newContentServer()

	if rec := get(e, "/api/books/nope/units"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := get(e, "/api/books/b1/units/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", rec.Code)
	}
	if rec := get(e, "/api/books/b1/units/9"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range index, got %d", rec.Code)
	}
}
