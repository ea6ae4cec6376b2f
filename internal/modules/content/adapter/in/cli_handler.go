package in

import (
	"context"

	"bookplus/internal/modules/content/dto"
	contentin "bookplus/internal/modules/content/port/in"
)

type CLIHandler struct {
	usecase contentin.Usecase
}

func NewCLIHandler(usecase contentin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) UnitCount(ctx context.Context, bookID string) (dto.UnitCountOutput, error) {
	return h.usecase.UnitCount(ctx, bookID)
}

func (h CLIHandler) UnitText(ctx context.Context, bookID string, index int) (dto.UnitTextOutput, error) {
	return h.usecase.UnitText(ctx, bookID, index)
}

func (h CLIHandler) Analysis(ctx context.Context, bookID string, index int) (dto.AnalysisOutput, error) {
	return h.usecase.UnitAnalysis(ctx, bookID, index)
}

func (h CLIHandler) Variant(ctx context.Context, bookID string, index int, version string) (dto.VariantOutput, error) {
	return h.usecase.AdaptiveVariant(ctx, dto.VariantInput{BookID: bookID, Index: index, Version: version})
}
