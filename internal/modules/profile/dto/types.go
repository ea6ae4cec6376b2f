package dto

import "time"

type PatternInput struct {
	UserKey          string  `json:"-"`
	ContentType      string  `json:"content_type"`
	WPM              int     `json:"wpm"`
	DwellTimeSeconds float64 `json:"dwell_time_seconds"`
}

type PatternOutput struct {
	ContentType      string    `json:"content_type"`
	WPM              int       `json:"wpm"`
	DwellTimeSeconds float64   `json:"dwell_time_seconds"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type BaselineInput struct {
	UserKey   string   `json:"-"`
	NormalWPM *float64 `json:"normalWpm,omitempty"`
	SkimWPM   *float64 `json:"skimWpm,omitempty"`
}

type BaselineOutput struct {
	NormalWPM *float64 `json:"normalWpm,omitempty"`
	SkimWPM   *float64 `json:"skimWpm,omitempty"`
}

// LearnOutput reports whether enough history existed to learn a baseline.
type LearnOutput struct {
	Learned  bool           `json:"learned"`
	Samples  int            `json:"samples"`
	Baseline BaselineOutput `json:"baseline"`
}
