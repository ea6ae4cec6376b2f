package out

import (
	"context"
	"fmt"

	contentdto "bookplus/internal/modules/content/dto"
	contentin "bookplus/internal/modules/content/port/in"
	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
)

// ContentBridge serves reading units from the in-process content module.
type ContentBridge struct {
	content contentin.Usecase
}

func NewContentBridge(content contentin.Usecase) readingout.ContentResolver {
	return &ContentBridge{content: content}
}

func (b *ContentBridge) ForBook(ctx context.Context, bookID string) (readingout.ContentSource, error) {
	if _, err := b.content.UnitCount(ctx, bookID); err != nil {
		return nil, err
	}
	return &bookContent{content: b.content, bookID: bookID}, nil
}

type bookContent struct {
	content contentin.Usecase
	bookID  string
}

func (c *bookContent) UnitCount(ctx context.Context) (int, error) {
	out, err := c.content.UnitCount(ctx, c.bookID)
	if err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *bookContent) UnitText(ctx context.Context, index int) (string, error) {
	out, err := c.content.UnitText(ctx, c.bookID, index)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *bookContent) UnitAnalysis(ctx context.Context, index int) (domain.Analysis, error) {
	out, err := c.content.UnitAnalysis(ctx, c.bookID, index)
	if err != nil {
		return domain.Analysis{}, err
	}
	return toAnalysis(out), nil
}

func (c *bookContent) AdaptiveVariant(ctx context.Context, index int, version domain.ContentVersion) (domain.AdaptiveContent, error) {
	out, err := c.content.AdaptiveVariant(ctx, contentdto.VariantInput{BookID: c.bookID, Index: index, Version: version.String()})
	if err != nil {
		return domain.AdaptiveContent{}, err
	}
	return toAdaptive(out)
}

func toAnalysis(out contentdto.AnalysisOutput) domain.Analysis {
	segments := make([]domain.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, domain.Segment{Text: s.Text, Kind: s.Kind})
	}
	return domain.Analysis{
		Segments:          segments,
		ReadingDifficulty: out.ReadingDifficulty,
		ImportanceScore:   out.ImportanceScore,
		PrimaryType:       out.PrimaryType,
	}
}

// toAdaptive rejects responses naming a version outside the concrete set.
func toAdaptive(out contentdto.VariantOutput) (domain.AdaptiveContent, error) {
	variant, err := domain.ParseVariant(out.Version)
	if err != nil {
		return domain.AdaptiveContent{}, fmt.Errorf("decode adaptive variant: %w", err)
	}
	highlights := out.HighlightedSentences
	if highlights == nil {
		highlights = []string{}
	}
	return domain.AdaptiveContent{
		Variant:    variant,
		Text:       out.Text,
		Highlights: highlights,
		Emphasis:   out.EmphasisType,
	}, nil
}
