package out

import (
	"context"
	"time"

	"bookplus/internal/modules/reading/domain"
)

// ContentSource answers the unit contracts for a single book.
type ContentSource interface {
	UnitCount(ctx context.Context) (int, error)
	UnitText(ctx context.Context, index int) (string, error)
	UnitAnalysis(ctx context.Context, index int) (domain.Analysis, error)
	AdaptiveVariant(ctx context.Context, index int, version domain.ContentVersion) (domain.AdaptiveContent, error)
}

type ContentResolver interface {
	ForBook(ctx context.Context, bookID string) (ContentSource, error)
}

type PatternSink interface {
	PostReadingPattern(ctx context.Context, userKey string, pattern domain.ReadingPattern) error
}

type BaselineLoader interface {
	LoadBaseline(ctx context.Context, userKey string) (domain.Baseline, error)
}

type SnapshotStore interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type ReportWriter interface {
	Write(ctx context.Context, report domain.Report) (string, error)
}

type Telemetry interface {
	Classified(speed domain.Speed)
	VariantFallback()
	UnitLoadFailed(stage string)
	PatternFailed()
	SnapshotWritten()
}

type StartedSession struct {
	ID        string
	StartedAt time.Time
}

// SessionTracker records the session lifecycle outside the engine.
type SessionTracker interface {
	Start(ctx context.Context, bookID, bookTitle string) (StartedSession, error)
	End(ctx context.Context, sessionID string, summary domain.Summary, reportPath string) error
}
