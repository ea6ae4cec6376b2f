package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/dto"
	readingin "bookplus/internal/modules/reading/port/in"
	readingout "bookplus/internal/modules/reading/port/out"
	"bookplus/internal/modules/reading/service"
	"bookplus/internal/platform/clock"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/id"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
)

type Options struct {
	UserKey          string
	Version          string
	Concurrency      int
	DiscardStale     bool
	SnapshotInterval time.Duration
}

type Dependencies struct {
	Content   readingout.ContentResolver
	Patterns  readingout.PatternSink
	Baselines readingout.BaselineLoader
	Snapshots readingout.SnapshotStore
	Reports   readingout.ReportWriter
	Sessions  readingout.SessionTracker
	Telemetry readingout.Telemetry
}

type Interactor struct {
	deps   Dependencies
	clock  clock.Clock
	idGen  id.Generator
	logger hclog.Logger
	opts   Options
}

func NewInteractor(deps Dependencies, clk clock.Clock, idGen id.Generator, logger hclog.Logger, opts Options) readingin.Usecase {
	return &Interactor{deps: deps, clock: clk, idGen: idGen, logger: logging.OrDiscard(logger), opts: opts}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (readingin.Surface, error) {
	bookID := strings.TrimSpace(input.BookID)
	if bookID == "" {
		return nil, fmt.Errorf("book id is required: %w", apperrors.ErrInvalidInput)
	}
	version, err := domain.ParseContentVersion(i.opts.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if i.deps.Content == nil {
		return nil, fmt.Errorf("content source is not configured")
	}
	content, err := i.deps.Content.ForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("resolve book content: %w", err)
	}

	started, err := i.start(ctx, bookID, input.BookTitle)
	if err != nil {
		return nil, err
	}
	session := domain.NewReadingSession(started.ID, bookID, started.StartedAt.UnixMilli())

	logger := i.logger.With("session", started.ID, "book", bookID)
	surface := service.NewSurface(ctx, session, service.SurfaceDeps{
		Clock:     i.clock,
		Content:   content,
		Patterns:  i.deps.Patterns,
		Snapshots: i.deps.Snapshots,
		Reports:   i.deps.Reports,
		Sessions:  i.deps.Sessions,
		Telemetry: i.deps.Telemetry,
		Logger:    logger,
	}, service.SurfaceOptions{
		UserKey:          i.opts.UserKey,
		Version:          version,
		Concurrency:      i.opts.Concurrency,
		DiscardStale:     i.opts.DiscardStale,
		SnapshotInterval: i.opts.SnapshotInterval,
	})
	surface.Classifier().LoadBaseline(ctx, i.deps.Baselines)
	logger.Info("reading session opened", "version", version.String())
	return surface, nil
}

func (i *Interactor) start(ctx context.Context, bookID, title string) (readingout.StartedSession, error) {
	if i.deps.Sessions == nil {
		return readingout.StartedSession{ID: i.idGen.New(), StartedAt: i.clock.Now()}, nil
	}
	started, err := i.deps.Sessions.Start(ctx, bookID, title)
	if err != nil {
		return readingout.StartedSession{}, fmt.Errorf("start session: %w", err)
	}
	if started.StartedAt.IsZero() {
		started.StartedAt = i.clock.Now()
	}
	return started, nil
}

func (i *Interactor) LoadSnapshot(ctx context.Context, sessionID string) (dto.SnapshotOutput, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return dto.SnapshotOutput{}, fmt.Errorf("session id is required: %w", apperrors.ErrInvalidInput)
	}
	if i.deps.Snapshots == nil {
		return dto.SnapshotOutput{}, fmt.Errorf("snapshot store is not configured")
	}
	key := domain.SnapshotKey(sessionID)
	payload, err := i.deps.Snapshots.Get(ctx, key)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return dto.SnapshotOutput{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return dto.SnapshotOutput{Key: key, Snapshot: snapshot}, nil
}
