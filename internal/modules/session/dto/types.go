package dto

import "time"

type StartInput struct {
	BookID    string
	BookTitle string
	// ReplaceStale ends a leftover active session as abandoned instead of
	// refusing to start.
	ReplaceStale bool
}

type StartOutput struct {
	SessionID string
	BookID    string
	StartedAt time.Time
}

type EndInput struct {
	SessionID     string
	Outcome       string
	TotalSections int
	AvgDwellTime  float64
	AvgWPM        float64
	ReportPath    string
}

type EndOutput struct {
	SessionID     string
	BookID        string
	Path          string
	Outcome       string
	DurationMin   int
	TotalSections int
	AvgDwellTime  float64
	AvgWPM        float64
}

type ActiveSessionOutput struct {
	SessionID string
	BookID    string
	BookTitle string
	StartedAt time.Time
}
