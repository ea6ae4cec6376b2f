package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	contentout "bookplus/internal/modules/content/adapter/out"
	contentservice "bookplus/internal/modules/content/service"
	contentusecase "bookplus/internal/modules/content/usecase"
	libraryout "bookplus/internal/modules/library/adapter/out"
	librarydto "bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
	libraryservice "bookplus/internal/modules/library/service"
	libraryusecase "bookplus/internal/modules/library/usecase"
	profileout "bookplus/internal/modules/profile/adapter/out"
	profilein "bookplus/internal/modules/profile/port/in"
	profileservice "bookplus/internal/modules/profile/service"
	profileusecase "bookplus/internal/modules/profile/usecase"
	readingout "bookplus/internal/modules/reading/adapter/out"
	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/dto"
	readingin "bookplus/internal/modules/reading/port/in"
	"bookplus/internal/modules/reading/usecase"
	sessionout "bookplus/internal/modules/session/adapter/out"
	sessionin "bookplus/internal/modules/session/port/in"
	sessionservice "bookplus/internal/modules/session/service"
	sessionusecase "bookplus/internal/modules/session/usecase"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/id"
	"bookplus/internal/platform/metrics"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stack struct {
	vault    string
	clock    *manualClock
	library  libraryin.Usecase
	profile  profilein.Usecase
	sessions sessionin.Usecase
	reading  readingin.Usecase
	metrics  *metrics.Registry
}

func newStack(t *testing.T, version string) *stack {
	t.Helper()
	vault := t.TempDir()
	dbPath := filepath.Join(vault, ".bookplus", "bookplus.db")
	clk := &manualClock{now: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)}

	projector, err := libraryout.NewSQLiteBookProjector(dbPath)
	if err != nil {
		t.Fatalf("projector: %v", err)
	}
	library := libraryusecase.NewInteractor(libraryservice.NewBookService(clk, id.RandomHex{}, libraryout.NewVaultBookStore(vault), projector))

	content := contentusecase.NewInteractor(contentservice.NewContentService(
		contentout.NewLibraryBookResolver(library),
		contentout.NewFileDocumentLoader(),
		contentservice.NewHeuristicAnalyzer(),
		nil,
	))

	profileStore, err := profileout.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("profile store: %v", err)
	}
	profile := profileusecase.NewInteractor(profileservice.NewProfileService(clk, profileStore))

	sessions := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, id.UUID{}, sessionout.NewVaultSessionStore(vault)),
		library,
		sessionout.NewFileActiveSessionStore(vault),
	)

	snapshots, err := readingout.NewSQLiteSnapshotStore(dbPath, clk)
	if err != nil {
		t.Fatalf("snapshot store: %v", err)
	}
	registry := metrics.New()
	profileBridge := readingout.NewProfileBridge(profile)
	reading := usecase.NewInteractor(usecase.Dependencies{
		Content:   readingout.NewContentBridge(content),
		Patterns:  profileBridge,
		Baselines: profileBridge,
		Snapshots: snapshots,
		Reports:   readingout.NewFileReportWriter(filepath.Join(vault, ".bookplus", "reports")),
		Sessions:  readingout.NewSessionTracker(sessions),
		Telemetry: readingout.NewPrometheusTelemetry(registry),
	}, clk, id.UUID{}, nil, usecase.Options{UserKey: "ada", Version: version, Concurrency: 2})

	return &stack{vault: vault, clock: clk, library: library, profile: profile, sessions: sessions, reading: reading, metrics: registry}
}

func (s *stack) addBook(t *testing.T) librarydto.BookOutput {
	t.Helper()
	path := filepath.Join(s.vault, "keeper.md")
	body := "# The Keeper\n\n" +
		"The keeper climbed the stairs each evening and lit the great lamp above the bay.\n\n" +
		"\"Will the ships come tonight?\" asked the boy. \"They always do,\" said the keeper.\n\n" +
		"Storms rolled in from the west while the light turned slowly over the dark water.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write book: %v", err)
	}
	book, err := s.library.AddBook(context.Background(), librarydto.AddBookInput{BookInput: librarydto.BookInput{
		Title: "The Keeper", Author: "A. Writer", Path: path,
	}})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	return book
}

func TestReadingSessionEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStack(t, "full")
	book := s.addBook(t)

	surface, err := s.reading.Open(ctx, dto.OpenInput{BookID: book.ID, BookTitle: book.Title})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	active, err := s.sessions.GetActive(ctx)
	if err != nil || active.SessionID != surface.SessionID() {
		t.Fatalf("expected tracked active session, got %+v (%v)", active, err)
	}
	if err := surface.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if total, ok := surface.Total(); !ok || total != 4 {
		t.Fatalf("expected 4 units, got %d (%v)", total, ok)
	}
	for {
		_, ok, err := surface.LoadNext(ctx)
		if err != nil {
			t.Fatalf("load next: %v", err)
		}
		if !ok {
			break
		}
	}
	units := surface.Units()
	if len(units) != 4 || units[0].PrimaryType != "heading" || units[2].PrimaryType != "dialogue" {
		t.Fatalf("unexpected units %+v", units)
	}

	surface.Observe(1, domain.Region{Top: 0, Height: 10})
	surface.Evaluate(domain.Viewport{Offset: 0, Height: 10})
	s.clock.Advance(4 * time.Second)
	surface.Evaluate(domain.Viewport{Offset: 500, Height: 10})

	if err := surface.SetVersion(ctx, domain.VersionSummary); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if got := surface.Units()[3].Adaptive; got == nil || got.Variant != domain.VariantSummary {
		t.Fatalf("expected summary variant after switch, got %+v", got)
	}

	closed, err := surface.Close(ctx)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Summary.TotalSections != 1 || closed.ReportPath == "" {
		t.Fatalf("unexpected close output %+v", closed)
	}
	raw, err := os.ReadFile(closed.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SessionID != surface.SessionID() || len(report.SectionAnalytics) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	patterns, err := s.profile.ListPatterns(ctx, "ada", 0)
	if err != nil || len(patterns) != 1 || patterns[0].DwellTimeSeconds != 4 {
		t.Fatalf("expected one recorded pattern, got %+v (%v)", patterns, err)
	}

	snapshot, err := s.reading.LoadSnapshot(ctx, surface.SessionID())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snapshot.Snapshot.TotalSections != 1 || snapshot.Key != domain.SnapshotKey(surface.SessionID()) {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	if _, err := s.sessions.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected session ended, got %v", err)
	}
	stamped, err := s.library.GetBook(ctx, book.ID)
	if err != nil || stamped.LastSessionID != surface.SessionID() {
		t.Fatalf("expected book stamped with session, got %+v (%v)", stamped, err)
	}
	notes, _ := filepath.Glob(filepath.Join(s.vault, "sessions", "2026", "04", "02", "*.md"))
	if len(notes) != 1 {
		t.Fatalf("expected one session note, got %v", notes)
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStack(t, "full")

	if _, err := s.reading.Open(ctx, dto.OpenInput{BookID: " "}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank book, got %v", err)
	}
	if _, err := s.reading.Open(ctx, dto.OpenInput{BookID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown book, got %v", err)
	}
	if _, err := s.reading.LoadSnapshot(ctx, "unknown"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected missing snapshot, got %v", err)
	}

	bad := newStack(t, "abridged")
	book := bad.addBook(t)
	if _, err := bad.reading.Open(ctx, dto.OpenInput{BookID: book.ID}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid version to be rejected, got %v", err)
	}
}
