package usecase

import (
	"context"

	"bookplus/internal/modules/content/domain"
	"bookplus/internal/modules/content/dto"
	contentin "bookplus/internal/modules/content/port/in"
	"bookplus/internal/modules/content/service"
)

type Interactor struct {
	svc *service.ContentService
}

func NewInteractor(svc *service.ContentService) contentin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) UnitCount(ctx context.Context, bookID string) (dto.UnitCountOutput, error) {
	total, err := i.svc.UnitCount(ctx, bookID)
	if err != nil {
		return dto.UnitCountOutput{}, err
	}
	return dto.UnitCountOutput{BookID: bookID, Total: total}, nil
}

func (i *Interactor) UnitText(ctx context.Context, bookID string, index int) (dto.UnitTextOutput, error) {
	text, err := i.svc.UnitText(ctx, bookID, index)
	if err != nil {
		return dto.UnitTextOutput{}, err
	}
	return dto.UnitTextOutput{Index: index, Text: text}, nil
}

func (i *Interactor) UnitAnalysis(ctx context.Context, bookID string, index int) (dto.AnalysisOutput, error) {
	analysis, err := i.svc.UnitAnalysis(ctx, bookID, index)
	if err != nil {
		return dto.AnalysisOutput{}, err
	}
	return toAnalysisOutput(analysis), nil
}

func (i *Interactor) AdaptiveVariant(ctx context.Context, input dto.VariantInput) (dto.VariantOutput, error) {
	variant, err := i.svc.AdaptiveVariant(ctx, input.BookID, input.Index, input.Version)
	if err != nil {
		return dto.VariantOutput{}, err
	}
	return dto.VariantOutput{
		Version:              string(variant.Version),
		Text:                 variant.Text,
		HighlightedSentences: variant.HighlightedSentences,
		EmphasisType:         variant.EmphasisType,
	}, nil
}

func (i *Interactor) Invalidate(bookID string) {
	i.svc.Invalidate(bookID)
}

func toAnalysisOutput(analysis domain.Analysis) dto.AnalysisOutput {
	segments := make([]dto.SegmentOutput, 0, len(analysis.Segments))
	for _, segment := range analysis.Segments {
		segments = append(segments, dto.SegmentOutput{Text: segment.Text, Kind: string(segment.Kind)})
	}
	return dto.AnalysisOutput{
		Segments:          segments,
		ReadingDifficulty: analysis.ReadingDifficulty,
		ImportanceScore:   analysis.ImportanceScore,
		PrimaryType:       string(analysis.PrimaryType),
	}
}
