package domain

// VisibilityThreshold is the visible fraction of a unit that opens an interval.
const VisibilityThreshold = 0.5

// Region is the line span a unit occupies in content coordinates.
type Region struct {
	Top    int
	Height int
}

// Viewport is the visible window over the content.
type Viewport struct {
	Offset int
	Height int
}

// VisibleRatio is the share of r inside v, in [0,1].
func (r Region) VisibleRatio(v Viewport) float64 {
	if r.Height <= 0 || v.Height <= 0 {
		return 0
	}
	top := max(r.Top, v.Offset)
	bottom := min(r.Top+r.Height, v.Offset+v.Height)
	if bottom <= top {
		return 0
	}
	return float64(bottom-top) / float64(r.Height)
}

type TransitionKind int

const (
	TransitionEnter TransitionKind = iota
	TransitionLeave
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionEnter:
		return "enter"
	case TransitionLeave:
		return "leave"
	default:
		return "unknown"
	}
}

type Transition struct {
	Index int
	Kind  TransitionKind
}
