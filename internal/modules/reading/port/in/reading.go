package in

import (
	"context"
	"time"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/dto"
)

// Surface is one open reading session over one book. The host calls the
// visibility and scroll methods from its event loop; fetching methods block
// and belong in background commands.
type Surface interface {
	SessionID() string
	BookID() string

	Init(ctx context.Context) error
	Total() (int, bool)

	Observe(index int, region domain.Region)
	Unobserve(index int)
	Evaluate(viewport domain.Viewport) []domain.Transition
	// Scroll records one raw scroll tick and reports whether the next unit
	// should load. Paginate is the same check without recording a sample.
	Scroll(scrollTop, scrollHeight, clientHeight float64) bool
	Paginate(scrollTop, scrollHeight, clientHeight float64) bool

	Reserve() (int, bool)
	Resolve(ctx context.Context, index int) error
	LoadNext(ctx context.Context) (int, bool, error)
	Retry(ctx context.Context, index int) error

	Version() domain.ContentVersion
	SetVersion(ctx context.Context, v domain.ContentVersion) error
	// Refresh re-fetches variants for the current version, keeping pins.
	Refresh(ctx context.Context) error
	PinFull(index int) error

	Units() []domain.Unit
	Session() domain.ReadingSession
	Report() domain.Report
	Snapshot() domain.Snapshot
	Export(ctx context.Context) (dto.ExportOutput, error)
	Autosave(ctx context.Context) (bool, error)
	AutosaveInterval() time.Duration
	Close(ctx context.Context) (dto.CloseOutput, error)
}

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (Surface, error)
	LoadSnapshot(ctx context.Context, sessionID string) (dto.SnapshotOutput, error)
}
