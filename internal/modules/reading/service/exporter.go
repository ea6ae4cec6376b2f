package service

import (
	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/platform/clock"
)

const reportTimestampLayout = "2006-01-02T15:04:05.000Z"

// Exporter derives reports and snapshots from a session. Per-section numbers
// are recomputed from total time and the current word count of each unit.
type Exporter struct {
	clock clock.Clock
}

func NewExporter(clk clock.Clock) *Exporter {
	return &Exporter{clock: clk}
}

func (e *Exporter) BuildReport(session domain.ReadingSession, units []domain.Unit, baseline domain.Baseline) domain.Report {
	now := e.clock.Now()
	sections := e.sectionAnalytics(session, units, baseline)
	return domain.Report{
		SessionID:        session.ID,
		BookID:           session.BookID,
		SessionDuration:  now.UnixMilli() - session.StartTime,
		Timestamp:        now.UTC().Format(reportTimestampLayout),
		SectionAnalytics: sections,
		ScrollAnalytics:  scrollAnalytics(session.Samples),
		Summary:          summarize(sections),
	}
}

func (e *Exporter) BuildSnapshot(session domain.ReadingSession, units []domain.Unit, baseline domain.Baseline) domain.Snapshot {
	summary := summarize(e.sectionAnalytics(session, units, baseline))
	return domain.Snapshot{
		SessionID:          session.ID,
		TotalSections:      summary.TotalSections,
		AvgDwellTime:       summary.AvgDwellTime,
		AvgWPM:             summary.AvgWPM,
		RecentScrollEvents: session.RecentSamples(domain.RecentScrollEvents),
		LastUpdate:         e.clock.Now().UnixMilli(),
	}
}

func (e *Exporter) sectionAnalytics(session domain.ReadingSession, units []domain.Unit, baseline domain.Baseline) []domain.SectionAnalytics {
	out := make([]domain.SectionAnalytics, 0, len(session.Sections))
	for _, section := range session.Sections {
		var words int
		var contentType string
		if section.ParagraphIndex >= 0 && section.ParagraphIndex < len(units) {
			unit := units[section.ParagraphIndex]
			words = unit.WordCount()
			contentType = unit.PrimaryType
		}
		wpm := domain.WordsPerMinute(words, section.TotalTime)
		out = append(out, domain.SectionAnalytics{
			ParagraphIndex:    section.ParagraphIndex,
			StartTime:         section.StartTime,
			TotalTime:         section.TotalTime,
			IsVisible:         section.IsVisible,
			ViewportDwellTime: section.ViewportDwellTime,
			WPM:               wpm,
			Classification:    domain.Classify(wpm, baseline),
			WordCount:         words,
			ContentType:       contentType,
		})
	}
	return out
}

func scrollAnalytics(samples []domain.ScrollSample) domain.ScrollAnalytics {
	pattern := make([]domain.ScrollSample, len(samples))
	copy(pattern, samples)
	var total float64
	for _, s := range samples {
		total += s.Speed
	}
	avg := 0.0
	if len(samples) > 0 {
		avg = total / float64(len(samples))
	}
	return domain.ScrollAnalytics{
		TotalScrollEvents: len(samples),
		AvgScrollSpeed:    avg,
		ScrollPattern:     pattern,
	}
}

func summarize(sections []domain.SectionAnalytics) domain.Summary {
	if len(sections) == 0 {
		return domain.Summary{}
	}
	var dwell, wpm float64
	for _, s := range sections {
		dwell += float64(s.TotalTime)
		wpm += float64(s.WPM)
	}
	n := float64(len(sections))
	return domain.Summary{
		TotalSections: len(sections),
		AvgDwellTime:  dwell / n,
		AvgWPM:        wpm / n,
	}
}
