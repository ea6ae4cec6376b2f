package service

import (
	"math"
	"sync"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/platform/clock"
	"bookplus/internal/platform/state"
)

// PaginationThreshold is the scrolled fraction that asks for the next unit.
const PaginationThreshold = 0.8

type ScrollTracker struct {
	clock clock.Clock
	cell  *state.Cell[domain.ReadingSession]

	mu            sync.Mutex
	lastOffset    float64
	lastTimestamp int64
}

func NewScrollTracker(clk clock.Clock, cell *state.Cell[domain.ReadingSession]) *ScrollTracker {
	return &ScrollTracker{
		clock:         clk,
		cell:          cell,
		lastTimestamp: clock.NowMillis(clk),
	}
}

// RecordSample derives the speed since the previous sample and appends it to
// the bounded history.
func (t *ScrollTracker) RecordSample(offset float64) domain.ScrollSample {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := clock.NowMillis(t.clock)
	elapsed := now - t.lastTimestamp
	if elapsed < 1 {
		elapsed = 1
	}
	sample := domain.ScrollSample{
		Timestamp: now,
		Offset:    offset,
		Speed:     math.Abs(offset-t.lastOffset) / float64(elapsed),
	}
	t.cell.Update(func(s domain.ReadingSession) domain.ReadingSession {
		return s.AppendSample(sample)
	})
	t.lastOffset = offset
	t.lastTimestamp = now
	return sample
}

func (t *ScrollTracker) Samples() []domain.ScrollSample {
	return t.cell.Load().Samples
}

// ShouldPaginate reports whether the visible bottom edge passed the
// pagination threshold.
func ShouldPaginate(scrollTop, scrollHeight, clientHeight float64) bool {
	if scrollHeight <= 0 {
		return false
	}
	return (scrollTop+clientHeight)/scrollHeight > PaginationThreshold
}
