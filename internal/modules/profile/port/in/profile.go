package in

import (
	"context"

	"bookplus/internal/modules/profile/dto"
)

type Usecase interface {
	RecordPattern(ctx context.Context, input dto.PatternInput) error
	ListPatterns(ctx context.Context, userKey string, limit int) ([]dto.PatternOutput, error)
	Baseline(ctx context.Context, userKey string) (dto.BaselineOutput, error)
	SetBaseline(ctx context.Context, input dto.BaselineInput) (dto.BaselineOutput, error)
	LearnBaseline(ctx context.Context, userKey string) (dto.LearnOutput, error)
}
