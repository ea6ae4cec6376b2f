package in

import (
	"context"

	"bookplus/internal/modules/plugin/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error)
	Adapt(ctx context.Context, input dto.AdaptInput) (dto.AdaptOutput, error)
}
