package service

import (
	"context"
	"sync"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
)

// Classifier turns closed dwell intervals into speed classifications and
// reports them as reading patterns.
type Classifier struct {
	units      *UnitStore
	sink       readingout.PatternSink
	dispatcher *Dispatcher
	telemetry  readingout.Telemetry
	logger     hclog.Logger
	userKey    string

	mu       sync.RWMutex
	baseline domain.Baseline
}

func NewClassifier(units *UnitStore, sink readingout.PatternSink, dispatcher *Dispatcher, telemetry readingout.Telemetry, logger hclog.Logger, userKey string) *Classifier {
	return &Classifier{
		units:      units,
		sink:       sink,
		dispatcher: dispatcher,
		telemetry:  telemetryOrNop(telemetry),
		logger:     logging.OrDiscard(logger),
		userKey:    userKey,
	}
}

// LoadBaseline fetches the reader's baseline once. Failures leave the
// fallback thresholds in place.
func (c *Classifier) LoadBaseline(ctx context.Context, loader readingout.BaselineLoader) {
	if loader == nil {
		return
	}
	baseline, err := loader.LoadBaseline(ctx, c.userKey)
	if err != nil {
		c.logger.Warn("baseline unavailable, using fallback thresholds", "user", c.userKey, "error", err)
		return
	}
	c.SetBaseline(baseline)
}

func (c *Classifier) SetBaseline(baseline domain.Baseline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = baseline
}

func (c *Classifier) Baseline() domain.Baseline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseline
}

func (c *Classifier) ComputeWPM(index int, dwellMs int64) int {
	unit, ok := c.units.Get(index)
	if !ok || unit.Text == "" {
		return 0
	}
	return domain.WordsPerMinute(unit.WordCount(), dwellMs)
}

func (c *Classifier) Classify(wpm int) domain.Speed {
	return domain.Classify(wpm, c.Baseline())
}

// OnIntervalClosed classifies one interval using its own dwell. The unit is
// annotated before the pattern write is queued; units without text are
// skipped.
func (c *Classifier) OnIntervalClosed(closure domain.Closure) (domain.Speed, bool) {
	if closure.Dwell <= 0 {
		return 0, false
	}
	unit, ok := c.units.Get(closure.Index)
	if !ok || unit.Text == "" {
		return 0, false
	}
	wpm := c.ComputeWPM(closure.Index, closure.Dwell)
	speed := c.Classify(wpm)
	if _, err := c.units.Update(closure.Index, func(u domain.Unit) domain.Unit {
		return u.WithSpeed(speed)
	}); err != nil {
		return 0, false
	}
	c.telemetry.Classified(speed)
	c.logger.Debug("interval classified", "unit", closure.Index, "dwell_ms", closure.Dwell, "wpm", wpm, "speed", speed.String())

	if c.sink != nil && c.dispatcher != nil {
		pattern := domain.ReadingPattern{
			ContentType:      unit.PrimaryType,
			WPM:              wpm,
			DwellTimeSeconds: float64(closure.Dwell) / 1000,
		}
		c.dispatcher.Go(func(ctx context.Context) {
			if err := c.sink.PostReadingPattern(ctx, c.userKey, pattern); err != nil {
				c.telemetry.PatternFailed()
				c.logger.Warn("reading pattern write failed", "unit", closure.Index, "error", err)
			}
		})
	}
	return speed, true
}
