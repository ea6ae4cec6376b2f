package out

import (
	"context"

	"bookplus/internal/modules/content/domain"
	contentout "bookplus/internal/modules/content/port/out"
	"bookplus/internal/modules/plugin/dto"
	pluginin "bookplus/internal/modules/plugin/port/in"
)

// PluginAnalyzer delegates analysis and adaptation to a named analyzer
// plugin.
type PluginAnalyzer struct {
	plugins    pluginin.Usecase
	pluginName string
}

func NewPluginAnalyzer(plugins pluginin.Usecase, pluginName string) contentout.Analyzer {
	return &PluginAnalyzer{plugins: plugins, pluginName: pluginName}
}

func (a *PluginAnalyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	out, err := a.plugins.Analyze(ctx, dto.AnalyzeInput{PluginName: a.pluginName, Text: text})
	if err != nil {
		return domain.Analysis{}, err
	}
	segments := make([]domain.Segment, 0, len(out.Segments))
	for _, segment := range out.Segments {
		segments = append(segments, domain.Segment{Text: segment.Text, Kind: domain.ContentType(segment.Kind)})
	}
	return domain.Analysis{
		Segments:          segments,
		ReadingDifficulty: out.ReadingDifficulty,
		ImportanceScore:   out.ImportanceScore,
		PrimaryType:       domain.ContentType(out.PrimaryType),
	}, nil
}

func (a *PluginAnalyzer) Adapt(ctx context.Context, text string, analysis domain.Analysis, version domain.Version) (domain.Variant, error) {
	out, err := a.plugins.Adapt(ctx, dto.AdaptInput{
		PluginName:      a.pluginName,
		Text:            text,
		Version:         string(version.ResolveAuto(analysis.ImportanceScore)),
		PrimaryType:     string(analysis.PrimaryType),
		ImportanceScore: analysis.ImportanceScore,
	})
	if err != nil {
		return domain.Variant{}, err
	}
	return domain.Variant{
		Version:              domain.Version(out.Version),
		Text:                 out.Text,
		HighlightedSentences: out.HighlightedSentences,
		EmphasisType:         out.EmphasisType,
	}, nil
}
