package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	readingout "bookplus/internal/modules/reading/adapter/out"
	"bookplus/internal/modules/reading/domain"
	apperrors "bookplus/internal/platform/errors"
)

func newRemoteServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var posted []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/b1/units", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"book_id":"b1","total":2}`))
	})
	mux.HandleFunc("GET /api/books/b1/units/{index}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("index") == "7" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"unit 7 out of range"}`))
			return
		}
		_, _ = w.Write([]byte(`{"index":0,"text":"Call me Ishmael."}`))
	})
	mux.HandleFunc("GET /api/books/b1/units/{index}/analysis", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"segments":[{"text":"Call me Ishmael.","kind":"narrative"}],"reading_difficulty":0.2,"importance_score":0.6,"primary_type":"narrative"}`))
	})
	mux.HandleFunc("GET /api/books/b1/units/{index}/adaptive", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("version") != "condensed" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"version":"condensed","text":"Ishmael.","highlighted_sentences":null}`))
	})
	mux.HandleFunc("POST /api/users/{user}/reading-patterns", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["user"] = r.PathValue("user")
		posted = append(posted, body)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/users/{user}/baseline", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"normalWpm":220}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &posted
}

func TestRemoteContentSource(t *testing.T) {
	t.Parallel()
	server, _ := newRemoteServer(t)
	client, err := readingout.NewRemoteClient(server.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if _, err := client.ForBook(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown book, got %v", err)
	}
	source, err := client.ForBook(ctx, "b1")
	if err != nil {
		t.Fatalf("for book: %v", err)
	}
	total, err := source.UnitCount(ctx)
	if err != nil || total != 2 {
		t.Fatalf("unit count = %d, %v", total, err)
	}
	text, err := source.UnitText(ctx, 0)
	if err != nil || text != "Call me Ishmael." {
		t.Fatalf("unit text = %q, %v", text, err)
	}
	if _, err := source.UnitText(ctx, 7); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected 400 mapped to invalid input, got %v", err)
	}
	analysis, err := source.UnitAnalysis(ctx, 0)
	if err != nil || analysis.PrimaryType != "narrative" || len(analysis.Segments) != 1 {
		t.Fatalf("analysis = %+v, %v", analysis, err)
	}
	variant, err := source.AdaptiveVariant(ctx, 0, domain.VersionCondensed)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	if variant.Variant != domain.VariantCondensed || variant.Highlights == nil {
		t.Fatalf("unexpected variant %+v", variant)
	}
	if _, err := source.AdaptiveVariant(ctx, 0, domain.VersionSummary); err == nil {
		t.Fatalf("expected server error to surface")
	}
}

func TestRemotePatternsAndBaseline(t *testing.T) {
	t.Parallel()
	server, posted := newRemoteServer(t)
	client, err := readingout.NewRemoteClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	err = client.PostReadingPattern(ctx, "ada", domain.ReadingPattern{ContentType: "dialogue", WPM: 240, DwellTimeSeconds: 6.5})
	if err != nil {
		t.Fatalf("post pattern: %v", err)
	}
	if len(*posted) != 1 || (*posted)[0]["user"] != "ada" || (*posted)[0]["wpm"] != float64(240) {
		t.Fatalf("unexpected posted body %+v", *posted)
	}

	baseline, err := client.LoadBaseline(ctx, "ada")
	if err != nil {
		t.Fatalf("load baseline: %v", err)
	}
	if baseline.NormalWPM == nil || *baseline.NormalWPM != 220 || baseline.SkimWPM != nil || baseline.Complete() {
		t.Fatalf("unexpected baseline %+v", baseline)
	}
}

func TestRemoteClientRequiresURL(t *testing.T) {
	t.Parallel()
	if _, err := readingout.NewRemoteClient("  ", 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
