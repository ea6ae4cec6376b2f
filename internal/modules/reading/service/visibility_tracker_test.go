package service_test

import (
	"fmt"
	"slices"
	"testing"

	"bookplus/internal/modules/reading/domain"
	"bookplus/internal/modules/reading/service"
)

type transitionLog struct {
	events []string
}

func (l *transitionLog) Enter(index int) { l.events = append(l.events, fmt.Sprintf("enter:%d", index)) }
func (l *transitionLog) Leave(index int) { l.events = append(l.events, fmt.Sprintf("leave:%d", index)) }

func TestVisibilityTrackerHalfThreshold(t *testing.T) {
	t.Parallel()
	log := &transitionLog{}
	tracker := service.NewVisibilityTracker(domain.VisibilityThreshold, log)
	tracker.Observe(0, domain.Region{Top: 0, Height: 10})
	tracker.Observe(1, domain.Region{Top: 10, Height: 10})

	tracker.Evaluate(domain.Viewport{Offset: 0, Height: 14})
	if !slices.Equal(log.events, []string{"enter:0"}) {
		t.Fatalf("40%% visible must not enter, got %v", log.events)
	}
	tracker.Evaluate(domain.Viewport{Offset: 5, Height: 10})
	if !slices.Equal(log.events, []string{"enter:0", "enter:1"}) {
		t.Fatalf("exactly half visible should enter, got %v", log.events)
	}
	tracker.Evaluate(domain.Viewport{Offset: 6, Height: 10})
	if !slices.Equal(log.events, []string{"enter:0", "enter:1", "leave:0"}) {
		t.Fatalf("unexpected transitions %v", log.events)
	}
	tracker.Evaluate(domain.Viewport{Offset: 6, Height: 10})
	if len(log.events) != 3 {
		t.Fatalf("unchanged viewport must not emit, got %v", log.events)
	}
	if !slices.Equal(tracker.Visible(), []int{1}) {
		t.Fatalf("unexpected visible set %v", tracker.Visible())
	}
}

func TestVisibilityTrackerRelayoutKeepsState(t *testing.T) {
	t.Parallel()
	log := &transitionLog{}
	tracker := service.NewVisibilityTracker(0.5, log)
	tracker.Observe(0, domain.Region{Top: 0, Height: 10})
	tracker.Evaluate(domain.Viewport{Offset: 0, Height: 10})
	tracker.Observe(0, domain.Region{Top: 0, Height: 12})
	tracker.Evaluate(domain.Viewport{Offset: 0, Height: 10})
	if !slices.Equal(log.events, []string{"enter:0"}) {
		t.Fatalf("re-layout of a visible unit must not re-enter, got %v", log.events)
	}
}

func TestVisibilityTrackerUnobserveAndDisconnectLeave(t *testing.T) {
	t.Parallel()
	log := &transitionLog{}
	tracker := service.NewVisibilityTracker(0.5, log)
	for i := 0; i < 3; i++ {
		tracker.Observe(i, domain.Region{Top: i * 5, Height: 5})
	}
	tracker.Evaluate(domain.Viewport{Offset: 0, Height: 15})

	tracker.Unobserve(1)
	tracker.Unobserve(7)
	transitions := tracker.Disconnect()

	want := []string{"enter:0", "enter:1", "enter:2", "leave:1", "leave:0", "leave:2"}
	if !slices.Equal(log.events, want) {
		t.Fatalf("expected %v, got %v", want, log.events)
	}
	if len(transitions) != 2 {
		t.Fatalf("disconnect should report two leaves, got %v", transitions)
	}

	tracker.Observe(0, domain.Region{Top: 0, Height: 5})
	tracker.Evaluate(domain.Viewport{Offset: 0, Height: 5})
	if len(log.events) != len(want) {
		t.Fatalf("disconnected tracker must stay silent, got %v", log.events)
	}
}

func TestRegionVisibleRatio(t *testing.T) {
	t.Parallel()
	region := domain.Region{Top: 10, Height: 20}
	cases := []struct {
		viewport domain.Viewport
		want     float64
	}{
		{viewport: domain.Viewport{Offset: 0, Height: 10}, want: 0},
		{viewport: domain.Viewport{Offset: 0, Height: 20}, want: 0.5},
		{viewport: domain.Viewport{Offset: 15, Height: 100}, want: 0.75},
		{viewport: domain.Viewport{Offset: 0, Height: 100}, want: 1},
		{viewport: domain.Viewport{Offset: 30, Height: 10}, want: 0},
	}
	for _, tc := range cases {
		if got := region.VisibleRatio(tc.viewport); got != tc.want {
			t.Fatalf("ratio for %+v = %v, want %v", tc.viewport, got, tc.want)
		}
	}
	if got := (domain.Region{Top: 0, Height: 0}).VisibleRatio(domain.Viewport{Height: 10}); got != 0 {
		t.Fatalf("empty region should never be visible, got %v", got)
	}
}
