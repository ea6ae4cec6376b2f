package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAbandoned Outcome = "abandoned"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(raw))) {
	case "", OutcomeCompleted:
		return OutcomeCompleted, nil
	case OutcomeAbandoned:
		return OutcomeAbandoned, nil
	default:
		return "", fmt.Errorf("invalid session outcome %q", raw)
	}
}

// ActiveSession is the on-disk marker for the one reading session in flight.
type ActiveSession struct {
	SessionID string    `json:"session_id"`
	BookID    string    `json:"book_id"`
	BookTitle string    `json:"book_title"`
	StartedAt time.Time `json:"started_at"`
}

// Totals carries the reading summary computed by the engine at close.
type Totals struct {
	TotalSections int
	AvgDwellTime  float64
	AvgWPM        float64
}

type Session struct {
	ID          string
	BookID      string
	BookTitle   string
	StartedAt   time.Time
	EndedAt     time.Time
	DurationMin int
	Outcome     Outcome
	Totals      Totals
	ReportPath  string
}
