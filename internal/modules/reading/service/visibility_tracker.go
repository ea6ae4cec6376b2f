package service

import (
	"slices"
	"sync"

	"bookplus/internal/modules/reading/domain"
)

type TransitionHandler interface {
	Enter(index int)
	Leave(index int)
}

type observation struct {
	region  domain.Region
	visible bool
}

// VisibilityTracker keeps one observation per unit index and turns viewport
// changes into enter/leave transitions.
type VisibilityTracker struct {
	threshold float64
	handler   TransitionHandler

	mu           sync.Mutex
	observations map[int]*observation
	disconnected bool
}

func NewVisibilityTracker(threshold float64, handler TransitionHandler) *VisibilityTracker {
	if threshold <= 0 || threshold > 1 {
		threshold = domain.VisibilityThreshold
	}
	return &VisibilityTracker{
		threshold:    threshold,
		handler:      handler,
		observations: map[int]*observation{},
	}
}

// Observe registers a region, or moves an already observed one. Visibility is
// re-derived on the next Evaluate.
func (t *VisibilityTracker) Observe(index int, region domain.Region) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disconnected {
		return
	}
	if obs, ok := t.observations[index]; ok {
		obs.region = region
		return
	}
	t.observations[index] = &observation{region: region}
}

// Unobserve drops index. A visible unit leaves.
func (t *VisibilityTracker) Unobserve(index int) {
	t.mu.Lock()
	obs, ok := t.observations[index]
	delete(t.observations, index)
	t.mu.Unlock()
	if ok && obs.visible {
		t.emit([]domain.Transition{{Index: index, Kind: domain.TransitionLeave}})
	}
}

// Evaluate compares every observed region with viewport and emits the
// transitions in index order.
func (t *VisibilityTracker) Evaluate(viewport domain.Viewport) []domain.Transition {
	t.mu.Lock()
	transitions := []domain.Transition{}
	for _, index := range t.sortedIndexes() {
		obs := t.observations[index]
		visible := obs.region.VisibleRatio(viewport) >= t.threshold
		switch {
		case visible && !obs.visible:
			transitions = append(transitions, domain.Transition{Index: index, Kind: domain.TransitionEnter})
		case !visible && obs.visible:
			transitions = append(transitions, domain.Transition{Index: index, Kind: domain.TransitionLeave})
		}
		obs.visible = visible
	}
	t.mu.Unlock()
	t.emit(transitions)
	return transitions
}

// Disconnect makes every visible unit leave and stops observing.
func (t *VisibilityTracker) Disconnect() []domain.Transition {
	t.mu.Lock()
	transitions := []domain.Transition{}
	for _, index := range t.sortedIndexes() {
		if t.observations[index].visible {
			transitions = append(transitions, domain.Transition{Index: index, Kind: domain.TransitionLeave})
		}
	}
	t.observations = map[int]*observation{}
	t.disconnected = true
	t.mu.Unlock()
	t.emit(transitions)
	return transitions
}

func (t *VisibilityTracker) Visible() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []int{}
	for _, index := range t.sortedIndexes() {
		if t.observations[index].visible {
			out = append(out, index)
		}
	}
	return out
}

func (t *VisibilityTracker) sortedIndexes() []int {
	indexes := make([]int, 0, len(t.observations))
	for index := range t.observations {
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)
	return indexes
}

func (t *VisibilityTracker) emit(transitions []domain.Transition) {
	if t.handler == nil {
		return
	}
	for _, tr := range transitions {
		switch tr.Kind {
		case domain.TransitionEnter:
			t.handler.Enter(tr.Index)
		case domain.TransitionLeave:
			t.handler.Leave(tr.Index)
		}
	}
}
