package service

import (
	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/platform/state"
)

// TimingLedger owns the section timings of the session held in cell.
type TimingLedger struct {
	cell *state.Cell[domain.ReadingSession]
}

func NewTimingLedger(cell *state.Cell[domain.ReadingSession]) *TimingLedger {
	return &TimingLedger{cell: cell}
}

func (l *TimingLedger) Upsert(index int) domain.SectionTiming {
	return state.UpdateResult(l.cell, func(s domain.ReadingSession) (domain.ReadingSession, domain.SectionTiming) {
		return s.Upsert(index)
	})
}

func (l *TimingLedger) Open(index int, now int64) domain.SectionTiming {
	return state.UpdateResult(l.cell, func(s domain.ReadingSession) (domain.ReadingSession, domain.SectionTiming) {
		return s.Open(index, now)
	})
}

// CloseInterval ends the open interval for index. ok is false when the unit
// was not visible.
func (l *TimingLedger) CloseInterval(index int, now int64) (closure domain.Closure, ok bool) {
	type result struct {
		closure domain.Closure
		ok      bool
	}
	res := state.UpdateResult(l.cell, func(s domain.ReadingSession) (domain.ReadingSession, result) {
		next, closure, ok := s.Close(index, now)
		return next, result{closure: closure, ok: ok}
	})
	return res.closure, res.ok
}

func (l *TimingLedger) Session() domain.ReadingSession {
	return l.cell.Load()
}
