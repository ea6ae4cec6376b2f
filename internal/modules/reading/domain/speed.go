package domain

import (
	"fmt"
	"math"
	"strings"
)

// Speed is a reading-speed class. The zero value is SpeedUnknown, so a
// section decoded without a classification never reads as a real class.
type Speed int

const (
	SpeedUnknown Speed = iota
	SpeedFastSkim
	SpeedSkim
	SpeedNormal
	SpeedSlow
)

func (s Speed) String() string {
	switch s {
	case SpeedUnknown:
		return "unknown"
	case SpeedFastSkim:
		return "fast-skim"
	case SpeedSkim:
		return "skim"
	case SpeedNormal:
		return "normal"
	case SpeedSlow:
		return "slow"
	default:
		return fmt.Sprintf("Speed(%d)", int(s))
	}
}

func ParseSpeed(raw string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unknown":
		return SpeedUnknown, nil
	case "fast-skim":
		return SpeedFastSkim, nil
	case "skim":
		return SpeedSkim, nil
	case "normal":
		return SpeedNormal, nil
	case "slow":
		return SpeedSlow, nil
	default:
		return 0, fmt.Errorf("invalid speed %q", raw)
	}
}

func (s Speed) MarshalText() ([]byte, error) {
	switch s {
	case SpeedUnknown, SpeedFastSkim, SpeedSkim, SpeedNormal, SpeedSlow:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid speed %d", int(s))
	}
}

func (s *Speed) UnmarshalText(raw []byte) error {
	parsed, err := ParseSpeed(string(raw))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Speeds lists the classes Classify can return.
func Speeds() []Speed {
	return []Speed{SpeedFastSkim, SpeedSkim, SpeedNormal, SpeedSlow}
}

// Baseline is the reader's personal calibration. Classification only uses it
// when both values are present.
type Baseline struct {
	NormalWPM *float64 `json:"normalWpm,omitempty"`
	SkimWPM   *float64 `json:"skimWpm,omitempty"`
}

func NewBaseline(normal, skim float64) Baseline {
	return Baseline{NormalWPM: &normal, SkimWPM: &skim}
}

func (b Baseline) Complete() bool {
	return b.NormalWPM != nil && b.SkimWPM != nil
}

const (
	fallbackFastSkimWPM = 300
	fallbackSkimWPM     = 150
	fallbackNormalWPM   = 50
)

// Classify maps words per minute to a speed bucket. Fallback thresholds are
// strict, baseline thresholds are inclusive.
func Classify(wpm int, baseline Baseline) Speed {
	if baseline.Complete() {
		w := float64(wpm)
		normal, skim := *baseline.NormalWPM, *baseline.SkimWPM
		switch {
		case w >= skim*1.5:
			return SpeedFastSkim
		case w >= normal*1.2:
			return SpeedSkim
		case w >= normal*0.7:
			return SpeedNormal
		default:
			return SpeedSlow
		}
	}
	switch {
	case wpm > fallbackFastSkimWPM:
		return SpeedFastSkim
	case wpm > fallbackSkimWPM:
		return SpeedSkim
	case wpm > fallbackNormalWPM:
		return SpeedNormal
	default:
		return SpeedSlow
	}
}

// WordsPerMinute is round(words / minutes); zero when either side is empty.
func WordsPerMinute(words int, dwellMs int64) int {
	if words <= 0 || dwellMs <= 0 {
		return 0
	}
	return int(math.Round(float64(words) * 60000 / float64(dwellMs)))
}

// ReadingPattern is the telemetry record sent after each classified interval.
type ReadingPattern struct {
	ContentType      string  `json:"content_type"`
	WPM              int     `json:"wpm"`
	DwellTimeSeconds float64 `json:"dwell_time_seconds"`
}
