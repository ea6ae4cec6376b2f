package in

import (
	"context"

	"bookplus/internal/modules/content/dto"
)

type Usecase interface {
	UnitCount(ctx context.Context, bookID string) (dto.UnitCountOutput, error)
	UnitText(ctx context.Context, bookID string, index int) (dto.UnitTextOutput, error)
	UnitAnalysis(ctx context.Context, bookID string, index int) (dto.AnalysisOutput, error)
	AdaptiveVariant(ctx context.Context, input dto.VariantInput) (dto.VariantOutput, error)
	// Invalidate drops cached units for a book, e.g. after its file changed.
	Invalidate(bookID string)
}
