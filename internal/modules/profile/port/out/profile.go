package out

import (
	"context"

	"bookplus/internal/modules/profile/domain"
)

type Store interface {
	AppendPattern(ctx context.Context, pattern domain.ReadingPattern) error
	// ListPatterns returns the newest patterns first; limit <= 0 means all.
	ListPatterns(ctx context.Context, userKey string, limit int) ([]domain.ReadingPattern, error)
	LoadBaseline(ctx context.Context, userKey string) (domain.Baseline, bool, error)
	SaveBaseline(ctx context.Context, baseline domain.Baseline) error
}
