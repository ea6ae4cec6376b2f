package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MinLearnSamples is the number of patterns needed before a baseline is
// learned from history.
const MinLearnSamples = 10

// minLearnDwellSeconds drops glances too short to say anything about speed.
const minLearnDwellSeconds = 2.0

type ReadingPattern struct {
	UserKey          string
	ContentType      string
	WPM              int
	DwellTimeSeconds float64
	RecordedAt       time.Time
}

func (p ReadingPattern) Validate() error {
	if strings.TrimSpace(p.UserKey) == "" {
		return fmt.Errorf("user key is required")
	}
	if p.WPM < 0 {
		return fmt.Errorf("wpm must not be negative")
	}
	if p.DwellTimeSeconds < 0 {
		return fmt.Errorf("dwell time must not be negative")
	}
	return nil
}

// Baseline holds a reader's personal speeds. Either value may be unset.
type Baseline struct {
	UserKey   string
	NormalWPM *float64
	SkimWPM   *float64
	UpdatedAt time.Time
}

func (b Baseline) Validate() error {
	if strings.TrimSpace(b.UserKey) == "" {
		return fmt.Errorf("user key is required")
	}
	if b.NormalWPM != nil && *b.NormalWPM <= 0 {
		return fmt.Errorf("normal wpm must be positive")
	}
	if b.SkimWPM != nil && *b.SkimWPM <= 0 {
		return fmt.Errorf("skim wpm must be positive")
	}
	if b.NormalWPM != nil && b.SkimWPM != nil && *b.SkimWPM < *b.NormalWPM {
		return fmt.Errorf("skim wpm must not be below normal wpm")
	}
	return nil
}

// LearnBaseline derives a baseline from recorded patterns: normal is the
// median wpm and skim the 90th percentile, over patterns with a meaningful
// dwell. It reports false when there are fewer than MinLearnSamples.
func LearnBaseline(userKey string, patterns []ReadingPattern, now time.Time) (Baseline, bool) {
	speeds := make([]float64, 0, len(patterns))
	for _, p := range patterns {
		if p.WPM <= 0 || p.DwellTimeSeconds < minLearnDwellSeconds {
			continue
		}
		speeds = append(speeds, float64(p.WPM))
	}
	if len(speeds) < MinLearnSamples {
		return Baseline{}, false
	}
	sort.Float64s(speeds)
	normal := percentile(speeds, 0.5)
	skim := percentile(speeds, 0.9)
	if skim < normal {
		skim = normal
	}
	return Baseline{UserKey: userKey, NormalWPM: &normal, SkimWPM: &skim, UpdatedAt: now}, true
}

// percentile interpolates linearly between closest ranks of sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
