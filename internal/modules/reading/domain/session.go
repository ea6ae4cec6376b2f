package domain

// ScrollHistoryCapacity bounds the retained scroll samples.
const ScrollHistoryCapacity = 50

type SectionTiming struct {
	ParagraphIndex    int   `json:"paragraphIndex"`
	StartTime         int64 `json:"startTime"`
	TotalTime         int64 `json:"totalTime"`
	IsVisible         bool  `json:"isVisible"`
	ViewportDwellTime int64 `json:"viewportDwellTime"`
}

type ScrollSample struct {
	Timestamp int64   `json:"timestamp"`
	Offset    float64 `json:"offset"`
	Speed     float64 `json:"speed"`
}

// Closure describes one finished dwell interval.
type Closure struct {
	Index int
	Dwell int64
	Total int64
}

// ReadingSession is an immutable value. Every transition returns a new
// session and leaves the receiver's slices untouched.
type ReadingSession struct {
	ID        string
	BookID    string
	StartTime int64
	Sections  []SectionTiming
	Samples   []ScrollSample
}

func NewReadingSession(id, bookID string, startTime int64) ReadingSession {
	return ReadingSession{
		ID:        id,
		BookID:    bookID,
		StartTime: startTime,
		Sections:  []SectionTiming{},
		Samples:   []ScrollSample{},
	}
}

func (s ReadingSession) Section(index int) (SectionTiming, bool) {
	for _, section := range s.Sections {
		if section.ParagraphIndex == index {
			return section, true
		}
	}
	return SectionTiming{}, false
}

func (s ReadingSession) position(index int) int {
	for i, section := range s.Sections {
		if section.ParagraphIndex == index {
			return i
		}
	}
	return -1
}

func (s ReadingSession) withSection(pos int, section SectionTiming) ReadingSession {
	next := make([]SectionTiming, len(s.Sections), len(s.Sections)+1)
	copy(next, s.Sections)
	if pos < 0 {
		next = append(next, section)
	} else {
		next[pos] = section
	}
	s.Sections = next
	return s
}

// Upsert creates a hidden, zero-time section for index when none exists.
func (s ReadingSession) Upsert(index int) (ReadingSession, SectionTiming) {
	if section, ok := s.Section(index); ok {
		return s, section
	}
	section := SectionTiming{ParagraphIndex: index}
	return s.withSection(-1, section), section
}

// Open starts an interval at now. An already open interval is left alone.
func (s ReadingSession) Open(index int, now int64) (ReadingSession, SectionTiming) {
	pos := s.position(index)
	if pos < 0 {
		section := SectionTiming{ParagraphIndex: index, StartTime: now, IsVisible: true}
		return s.withSection(-1, section), section
	}
	section := s.Sections[pos]
	if section.IsVisible {
		return s, section
	}
	section.StartTime = now
	section.IsVisible = true
	return s.withSection(pos, section), section
}

// Close ends the open interval for index. ok is false when there was none.
// A clock that went backwards yields a zero dwell so totals never shrink.
func (s ReadingSession) Close(index int, now int64) (ReadingSession, Closure, bool) {
	pos := s.position(index)
	if pos < 0 || !s.Sections[pos].IsVisible {
		return s, Closure{}, false
	}
	section := s.Sections[pos]
	dwell := now - section.StartTime
	if dwell < 0 {
		dwell = 0
	}
	section.TotalTime += dwell
	section.ViewportDwellTime += dwell
	section.IsVisible = false
	return s.withSection(pos, section), Closure{Index: index, Dwell: dwell, Total: section.TotalTime}, true
}

// AppendSample adds sample, evicting the oldest first when full.
func (s ReadingSession) AppendSample(sample ScrollSample) ReadingSession {
	kept := s.Samples
	if len(kept) >= ScrollHistoryCapacity {
		kept = kept[len(kept)-ScrollHistoryCapacity+1:]
	}
	next := make([]ScrollSample, 0, len(kept)+1)
	next = append(next, kept...)
	s.Samples = append(next, sample)
	return s
}

// RecentSamples returns at most n of the newest samples, oldest first.
func (s ReadingSession) RecentSamples(n int) []ScrollSample {
	if n <= 0 {
		return []ScrollSample{}
	}
	start := len(s.Samples) - n
	if start < 0 {
		start = 0
	}
	out := make([]ScrollSample, len(s.Samples)-start)
	copy(out, s.Samples[start:])
	return out
}

func (s ReadingSession) VisibleIndexes() []int {
	out := []int{}
	for _, section := range s.Sections {
		if section.IsVisible {
			out = append(out, section.ParagraphIndex)
		}
	}
	return out
}
