package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/dto"
	readingout "bookplus/internal/modules/reading/port/out"
	"bookplus/internal/platform/clock"
	"bookplus/internal/platform/logging"
	"bookplus/internal/platform/state"

	hclog "github.com/hashicorp/go-hclog"
)

type SurfaceOptions struct {
	UserKey          string
	Version          domain.ContentVersion
	Concurrency      int
	DiscardStale     bool
	SnapshotInterval time.Duration
}

type SurfaceDeps struct {
	Clock     clock.Clock
	Content   readingout.ContentSource
	Patterns  readingout.PatternSink
	Snapshots readingout.SnapshotStore
	Reports   readingout.ReportWriter
	Sessions  readingout.SessionTracker
	Telemetry readingout.Telemetry
	Logger    hclog.Logger
}

// Surface wires the engine for one reading session. The unit store and the
// reading session are the only shared state; every component reads and
// replaces them through their cells.
type Surface struct {
	bookID   string
	clock    clock.Clock
	interval time.Duration
	reports  readingout.ReportWriter
	sessions readingout.SessionTracker
	logger   hclog.Logger

	units      *UnitStore
	session    *state.Cell[domain.ReadingSession]
	ledger     *TimingLedger
	scroll     *ScrollTracker
	visibility *VisibilityTracker
	classifier *Classifier
	reconciler *Reconciler
	loader     *Loader
	exporter   *Exporter
	autosaver  *Autosaver
	dispatcher *Dispatcher

	closeOnce sync.Once
	closed    dto.CloseOutput
	closeErr  error
}

func NewSurface(ctx context.Context, session domain.ReadingSession, deps SurfaceDeps, opts SurfaceOptions) *Surface {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	logger := logging.OrDiscard(deps.Logger)
	interval := opts.SnapshotInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	s := &Surface{
		bookID:     session.BookID,
		clock:      clk,
		interval:   interval,
		reports:    deps.Reports,
		sessions:   deps.Sessions,
		logger:     logger,
		units:      NewUnitStore(),
		session:    state.NewCell(session),
		exporter:   NewExporter(clk),
		dispatcher: NewDispatcher(ctx),
	}
	s.ledger = NewTimingLedger(s.session)
	s.scroll = NewScrollTracker(clk, s.session)
	s.classifier = NewClassifier(s.units, deps.Patterns, s.dispatcher, deps.Telemetry, logger.Named("classifier"), opts.UserKey)
	s.reconciler = NewReconciler(s.units, deps.Content, deps.Telemetry, logger.Named("reconciler"), ReconcilerOptions{
		Version:      opts.Version,
		Concurrency:  opts.Concurrency,
		DiscardStale: opts.DiscardStale,
	})
	s.loader = NewLoader(s.units, deps.Content, s.reconciler, deps.Telemetry, logger.Named("loader"))
	s.autosaver = NewAutosaver(s.ledger, s.units, s.classifier, s.exporter, deps.Snapshots, deps.Telemetry)
	s.visibility = NewVisibilityTracker(domain.VisibilityThreshold, surfaceTransitions{s})
	return s
}

// surfaceTransitions routes visibility transitions into the ledger and, for
// closed intervals with a positive dwell, the classifier.
type surfaceTransitions struct {
	s *Surface
}

func (t surfaceTransitions) Enter(index int) {
	t.s.ledger.Open(index, clock.NowMillis(t.s.clock))
}

func (t surfaceTransitions) Leave(index int) {
	closure, ok := t.s.ledger.CloseInterval(index, clock.NowMillis(t.s.clock))
	if !ok || closure.Dwell <= 0 {
		return
	}
	t.s.classifier.OnIntervalClosed(closure)
}

func (s *Surface) Classifier() *Classifier { return s.classifier }

func (s *Surface) SessionID() string { return s.session.Load().ID }

func (s *Surface) BookID() string { return s.bookID }

func (s *Surface) Init(ctx context.Context) error {
	return s.loader.Init(ctx)
}

func (s *Surface) Total() (int, bool) {
	return s.loader.Total()
}

func (s *Surface) Observe(index int, region domain.Region) {
	s.visibility.Observe(index, region)
}

func (s *Surface) Unobserve(index int) {
	s.visibility.Unobserve(index)
}

func (s *Surface) Evaluate(viewport domain.Viewport) []domain.Transition {
	return s.visibility.Evaluate(viewport)
}

// Scroll records a sample and reports whether the next unit should load.
func (s *Surface) Scroll(scrollTop, scrollHeight, clientHeight float64) bool {
	s.scroll.RecordSample(scrollTop)
	return s.Paginate(scrollTop, scrollHeight, clientHeight)
}

func (s *Surface) Paginate(scrollTop, scrollHeight, clientHeight float64) bool {
	return ShouldPaginate(scrollTop, scrollHeight, clientHeight) && s.loader.CanLoad()
}

func (s *Surface) Reserve() (int, bool) {
	return s.loader.Reserve()
}

func (s *Surface) Resolve(ctx context.Context, index int) error {
	return s.loader.Resolve(ctx, index)
}

func (s *Surface) LoadNext(ctx context.Context) (int, bool, error) {
	return s.loader.LoadNext(ctx)
}

func (s *Surface) Retry(ctx context.Context, index int) error {
	return s.loader.Retry(ctx, index)
}

func (s *Surface) Version() domain.ContentVersion {
	return s.reconciler.Version()
}

func (s *Surface) SetVersion(ctx context.Context, v domain.ContentVersion) error {
	return s.reconciler.SetVersion(ctx, v)
}

func (s *Surface) Refresh(ctx context.Context) error {
	return s.reconciler.ReconcileAll(ctx)
}

func (s *Surface) PinFull(index int) error {
	return s.reconciler.PinFull(index)
}

func (s *Surface) Units() []domain.Unit {
	return s.units.Snapshot()
}

func (s *Surface) Session() domain.ReadingSession {
	return s.session.Load()
}

func (s *Surface) Report() domain.Report {
	return s.exporter.BuildReport(s.session.Load(), s.units.Snapshot(), s.classifier.Baseline())
}

func (s *Surface) Snapshot() domain.Snapshot {
	return s.autosaver.Snapshot()
}

func (s *Surface) Export(ctx context.Context) (dto.ExportOutput, error) {
	report := s.Report()
	if s.reports == nil {
		return dto.ExportOutput{Report: report}, nil
	}
	path, err := s.reports.Write(ctx, report)
	if err != nil {
		return dto.ExportOutput{}, fmt.Errorf("export report: %w", err)
	}
	return dto.ExportOutput{Path: path, Report: report}, nil
}

func (s *Surface) Autosave(ctx context.Context) (bool, error) {
	return s.autosaver.SaveOnce(ctx)
}

func (s *Surface) AutosaveInterval() time.Duration {
	return s.interval
}

// Close ends the session once: open intervals are closed, pending pattern
// writes drain, then the final snapshot, report and session note are written.
func (s *Surface) Close(ctx context.Context) (dto.CloseOutput, error) {
	s.closeOnce.Do(func() {
		s.closed, s.closeErr = s.close(ctx)
	})
	return s.closed, s.closeErr
}

func (s *Surface) close(ctx context.Context) (dto.CloseOutput, error) {
	s.visibility.Disconnect()
	s.dispatcher.Wait()

	if _, err := s.autosaver.SaveOnce(ctx); err != nil {
		s.logger.Warn("final snapshot failed", "session", s.SessionID(), "error", err)
	}
	exported, err := s.Export(ctx)
	if err != nil {
		return dto.CloseOutput{}, err
	}
	out := dto.CloseOutput{
		SessionID:  s.SessionID(),
		ReportPath: exported.Path,
		Summary:    exported.Report.Summary,
	}
	if s.sessions != nil {
		if err := s.sessions.End(ctx, out.SessionID, out.Summary, out.ReportPath); err != nil {
			return out, fmt.Errorf("end session: %w", err)
		}
	}
	return out, nil
}
