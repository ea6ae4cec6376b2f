package service

import (
	"fmt"

	"bookplus/internal/modules/reading/domain"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/state"
)

// UnitStore is the ordered unit collection. Positions equal unit indexes
// because units are only ever appended.
type UnitStore struct {
	cell *state.Cell[[]domain.Unit]
}

func NewUnitStore() *UnitStore {
	return &UnitStore{cell: state.NewCell([]domain.Unit{})}
}

// Snapshot returns the current units. Callers must not modify the slice.
func (s *UnitStore) Snapshot() []domain.Unit {
	return s.cell.Load()
}

func (s *UnitStore) Len() int {
	return len(s.cell.Load())
}

func (s *UnitStore) Get(index int) (domain.Unit, bool) {
	units := s.cell.Load()
	if index < 0 || index >= len(units) {
		return domain.Unit{}, false
	}
	return units[index], true
}

// AppendPending adds a pending placeholder and returns its index.
func (s *UnitStore) AppendPending() int {
	return state.UpdateResult(s.cell, func(units []domain.Unit) ([]domain.Unit, int) {
		index := len(units)
		next := make([]domain.Unit, len(units), len(units)+1)
		copy(next, units)
		return append(next, domain.NewPendingUnit(index)), index
	})
}

// Update replaces the unit at index with fn(unit). It fails when the index
// has not been allocated.
func (s *UnitStore) Update(index int, fn func(domain.Unit) domain.Unit) (domain.Unit, error) {
	type result struct {
		unit domain.Unit
		err  error
	}
	res := state.UpdateResult(s.cell, func(units []domain.Unit) ([]domain.Unit, result) {
		if index < 0 || index >= len(units) {
			return units, result{err: fmt.Errorf("unit %d: %w", index, apperrors.ErrOutOfRange)}
		}
		updated := fn(units[index])
		updated.Index = index
		next := make([]domain.Unit, len(units))
		copy(next, units)
		next[index] = updated
		return next, result{unit: updated}
	})
	return res.unit, res.err
}

// Loaded returns the indexes of units in loaded status, in order.
func (s *UnitStore) Loaded() []int {
	out := []int{}
	for _, unit := range s.cell.Load() {
		if unit.Status == domain.UnitLoaded {
			out = append(out, unit.Index)
		}
	}
	return out
}
