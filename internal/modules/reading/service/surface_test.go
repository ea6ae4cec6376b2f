package service_test

import (
	"context"
	"testing"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/service"
)

type surfaceFixture struct {
	clock     *manualClock
	content   *memoryContent
	sink      *recordingSink
	telemetry *countingTelemetry
	snapshots *memorySnapshots
	reports   *memoryReports
	sessions  *recordingSessions
	surface   *service.Surface
}

func newSurfaceFixture(t *testing.T, texts ...string) *surfaceFixture {
	t.Helper()
	f := &surfaceFixture{
		clock:     newManualClock(1_000),
		content:   newMemoryContent(texts...),
		sink:      &recordingSink{},
		telemetry: newCountingTelemetry(),
		snapshots: newMemorySnapshots(),
		reports:   &memoryReports{},
		sessions:  &recordingSessions{},
	}
	f.surface = service.NewSurface(context.Background(), domain.NewReadingSession("sess-1", "book-1", 1_000), service.SurfaceDeps{
		Clock:     f.clock,
		Content:   f.content,
		Patterns:  f.sink,
		Snapshots: f.snapshots,
		Reports:   f.reports,
		Sessions:  f.sessions,
		Telemetry: f.telemetry,
	}, service.SurfaceOptions{UserKey: "reader-1", Concurrency: 2})
	if err := f.surface.Init(context.Background()); err != nil {
		t.Fatalf("init surface: %v", err)
	}
	return f
}

func (f *surfaceFixture) loadAll(t *testing.T) {
	t.Helper()
	for {
		_, ok, err := f.surface.LoadNext(context.Background())
		if err != nil {
			t.Fatalf("load next: %v", err)
		}
		if !ok {
			return
		}
	}
}

// show lays unit index out alone in a ten-line viewport and evaluates it.
func (f *surfaceFixture) show(index int) {
	f.surface.Observe(index, domain.Region{Top: index * 10, Height: 10})
	f.surface.Evaluate(domain.Viewport{Offset: index * 10, Height: 10})
}

func (f *surfaceFixture) hideAll() {
	f.surface.Evaluate(domain.Viewport{Offset: 10_000, Height: 10})
}

func TestSurfaceClassifiesClosedIntervalAndPostsPattern(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "one two three four five six")
	f.loadAll(t)

	f.clock.Set(10_000)
	f.show(0)
	f.clock.Set(11_200)
	f.hideAll()

	unit := f.surface.Units()[0]
	if unit.Speed == nil || *unit.Speed != domain.SpeedSkim {
		t.Fatalf("expected skim classification, got %+v", unit.Speed)
	}
	section, ok := f.surface.Session().Section(0)
	if !ok || section.TotalTime != 1200 || section.IsVisible {
		t.Fatalf("unexpected section %+v", section)
	}

	if _, err := f.surface.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	posts := f.sink.all()
	if len(posts) != 1 {
		t.Fatalf("expected one pattern, got %d", len(posts))
	}
	want := domain.ReadingPattern{ContentType: "narrative", WPM: 300, DwellTimeSeconds: 1.2}
	if posts[0].userKey != "reader-1" || posts[0].pattern != want {
		t.Fatalf("unexpected pattern %+v", posts[0])
	}
}

func TestSurfaceAccumulatesIntervalsAndClassifiesEach(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "alpha beta gamma delta")
	f.loadAll(t)

	f.clock.Set(2_000)
	f.show(0)
	f.clock.Set(2_500)
	f.hideAll()
	f.clock.Set(5_000)
	f.show(0)
	f.clock.Set(5_500)
	f.hideAll()

	section, _ := f.surface.Session().Section(0)
	if section.TotalTime != 1000 || section.ViewportDwellTime != 1000 {
		t.Fatalf("expected 1000ms total, got %+v", section)
	}
	if _, err := f.surface.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	posts := f.sink.all()
	if len(posts) != 2 {
		t.Fatalf("expected two classifications, got %d", len(posts))
	}
	for _, post := range posts {
		if post.pattern.WPM != 480 || post.pattern.DwellTimeSeconds != 0.5 {
			t.Fatalf("each interval should use its own dwell, got %+v", post.pattern)
		}
	}
}

func TestSurfaceUsesBaselineWhenPresent(t *testing.T) {
	t.Parallel()
	words := "w w w w w w w w w w w w w"
	f := newSurfaceFixture(t, words)
	f.surface.Classifier().SetBaseline(domain.NewBaseline(200, 400))
	f.loadAll(t)

	// 13 words over 1200ms is 650 wpm.
	f.clock.Set(20_000)
	f.show(0)
	f.clock.Set(21_200)
	f.hideAll()

	unit := f.surface.Units()[0]
	if unit.Speed == nil || *unit.Speed != domain.SpeedFastSkim {
		t.Fatalf("expected fast-skim, got %+v", unit.Speed)
	}
}

func TestSurfaceZeroDwellIsNotClassified(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "short text")
	f.loadAll(t)

	f.clock.Set(3_000)
	f.show(0)
	f.hideAll()

	if unit := f.surface.Units()[0]; unit.Speed != nil {
		t.Fatalf("zero dwell must not classify, got %s", *unit.Speed)
	}
	if len(f.sink.all()) != 0 {
		t.Fatalf("zero dwell must not post a pattern")
	}
}

func TestSurfaceLeaveWithoutEnterIsNoop(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "text")
	f.loadAll(t)

	f.surface.Unobserve(0)
	f.hideAll()
	if got := len(f.surface.Session().Sections); got != 0 {
		t.Fatalf("leave without enter created %d sections", got)
	}
}

func TestSurfaceUnobserveVisibleUnitClosesInterval(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "one two three")
	f.loadAll(t)

	f.clock.Set(4_000)
	f.show(0)
	f.clock.Set(5_000)
	f.surface.Unobserve(0)

	section, _ := f.surface.Session().Section(0)
	if section.IsVisible || section.TotalTime != 1000 {
		t.Fatalf("unobserve should close the interval, got %+v", section)
	}
}

func TestSurfaceScrollTriggersPaginationUntilExhausted(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "a", "b")

	if !f.surface.Scroll(90, 100, 10) {
		t.Fatalf("expected pagination near the end")
	}
	if f.surface.Scroll(10, 100, 10) {
		t.Fatalf("no pagination far from the end")
	}
	f.loadAll(t)
	if f.surface.Scroll(90, 100, 10) {
		t.Fatalf("no pagination once every unit is allocated")
	}
	if got := len(f.surface.Session().Samples); got != 3 {
		t.Fatalf("expected three scroll samples, got %d", got)
	}
}

func TestSurfacePaginateRecordsNoSample(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "a", "b")

	if !f.surface.Paginate(90, 100, 10) || f.surface.Paginate(10, 100, 10) {
		t.Fatalf("paginate should follow the 0.8 threshold")
	}
	if got := len(f.surface.Session().Samples); got != 0 {
		t.Fatalf("paginate must not record samples, got %d", got)
	}
}

func TestSurfaceCloseWritesFinalArtifactsOnce(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "one two three four five six")
	f.loadAll(t)

	f.clock.Set(10_000)
	f.show(0)
	f.clock.Set(11_200)

	out, err := f.surface.Close(context.Background())
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.surface.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if out.ReportPath != "/reports/sess-1.json" || out.Summary.TotalSections != 1 {
		t.Fatalf("unexpected close output %+v", out)
	}
	if len(f.reports.written) != 1 || len(f.sessions.ended) != 1 {
		t.Fatalf("expected one report and one ended session, got %d and %d", len(f.reports.written), len(f.sessions.ended))
	}
	if section, _ := f.surface.Session().Section(0); section.IsVisible || section.TotalTime != 1200 {
		t.Fatalf("close should end the open interval, got %+v", section)
	}
	if _, ok := f.snapshots.puts[domain.SnapshotKey("sess-1")]; !ok {
		t.Fatalf("close should write the final snapshot")
	}
}

func TestSurfacePatternFailureKeepsLocalState(t *testing.T) {
	t.Parallel()
	f := newSurfaceFixture(t, "one two three four five six")
	f.sink.err = errUnavailable
	f.loadAll(t)

	f.clock.Set(10_000)
	f.show(0)
	f.clock.Set(11_200)
	f.hideAll()
	if _, err := f.surface.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if unit := f.surface.Units()[0]; unit.Speed == nil || *unit.Speed != domain.SpeedSkim {
		t.Fatalf("local classification must survive sink failure")
	}
	if f.telemetry.patternFailures != 1 {
		t.Fatalf("expected one counted pattern failure, got %d", f.telemetry.patternFailures)
	}
}
