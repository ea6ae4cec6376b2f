package service

import (
	"context"
	"fmt"
	"strings"

	"bookplus/internal/modules/profile/domain"
	profileout "bookplus/internal/modules/profile/port/out"
	"bookplus/internal/platform/clock"
	apperrors "bookplus/internal/platform/errors"
)

type ProfileService struct {
	clock clock.Clock
	store profileout.Store
}

func NewProfileService(clock clock.Clock, store profileout.Store) *ProfileService {
	return &ProfileService{clock: clock, store: store}
}

func (s *ProfileService) RecordPattern(ctx context.Context, pattern domain.ReadingPattern) error {
	pattern.UserKey = strings.TrimSpace(pattern.UserKey)
	if pattern.ContentType == "" {
		pattern.ContentType = "unknown"
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if pattern.RecordedAt.IsZero() {
		pattern.RecordedAt = s.clock.Now()
	}
	return s.store.AppendPattern(ctx, pattern)
}

func (s *ProfileService) ListPatterns(ctx context.Context, userKey string, limit int) ([]domain.ReadingPattern, error) {
	if strings.TrimSpace(userKey) == "" {
		return nil, fmt.Errorf("%w: user key is required", apperrors.ErrInvalidInput)
	}
	return s.store.ListPatterns(ctx, userKey, limit)
}

// Baseline returns the stored baseline; a reader without one gets an empty
// baseline, which makes classification use the fixed thresholds.
func (s *ProfileService) Baseline(ctx context.Context, userKey string) (domain.Baseline, error) {
	if strings.TrimSpace(userKey) == "" {
		return domain.Baseline{}, fmt.Errorf("%w: user key is required", apperrors.ErrInvalidInput)
	}
	baseline, _, err := s.store.LoadBaseline(ctx, userKey)
	return baseline, err
}

func (s *ProfileService) SetBaseline(ctx context.Context, baseline domain.Baseline) (domain.Baseline, error) {
	baseline.UserKey = strings.TrimSpace(baseline.UserKey)
	if err := baseline.Validate(); err != nil {
		return domain.Baseline{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	baseline.UpdatedAt = s.clock.Now()
	if err := s.store.SaveBaseline(ctx, baseline); err != nil {
		return domain.Baseline{}, err
	}
	return baseline, nil
}

// LearnBaseline recomputes the baseline from the reader's full history and
// stores it when enough samples exist.
func (s *ProfileService) LearnBaseline(ctx context.Context, userKey string) (domain.Baseline, int, bool, error) {
	patterns, err := s.ListPatterns(ctx, userKey, 0)
	if err != nil {
		return domain.Baseline{}, 0, false, err
	}
	baseline, ok := domain.LearnBaseline(userKey, patterns, s.clock.Now())
	if !ok {
		current, err := s.Baseline(ctx, userKey)
		return current, len(patterns), false, err
	}
	if err := s.store.SaveBaseline(ctx, baseline); err != nil {
		return domain.Baseline{}, len(patterns), false, err
	}
	return baseline, len(patterns), true, nil
}
