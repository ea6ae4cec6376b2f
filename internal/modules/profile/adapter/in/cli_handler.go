package in

import (
	"context"

	"bookplus/internal/modules/profile/dto"
	profilein "bookplus/internal/modules/profile/port/in"
)

type CLIHandler struct {
	usecase profilein.Usecase
}

func NewCLIHandler(usecase profilein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Baseline(ctx context.Context, userKey string) (dto.BaselineOutput, error) {
	return h.usecase.Baseline(ctx, userKey)
}

func (h CLIHandler) SetBaseline(ctx context.Context, userKey string, normal, skim *float64) (dto.BaselineOutput, error) {
	return h.usecase.SetBaseline(ctx, dto.BaselineInput{UserKey: userKey, NormalWPM: normal, SkimWPM: skim})
}

func (h CLIHandler) Learn(ctx context.Context, userKey string) (dto.LearnOutput, error) {
	return h.usecase.LearnBaseline(ctx, userKey)
}

func (h CLIHandler) Patterns(ctx context.Context, userKey string, limit int) ([]dto.PatternOutput, error) {
	return h.usecase.ListPatterns(ctx, userKey, limit)
}
