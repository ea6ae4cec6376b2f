package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
)

// manualClock only moves when the test advances it.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(ms int64) *manualClock {
	return &manualClock{now: time.UnixMilli(ms).UTC()}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(ms).UTC()
}

func (c *manualClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Duration(ms) * time.Millisecond)
}

var errUnavailable = errors.New("content unavailable")

// memoryContent serves units from memory. Variants are "<version>:<text>"
// unless a failure is scripted.
type memoryContent struct {
	mu            sync.Mutex
	texts         []string
	primaryTypes  map[int]string
	failText      map[int]bool
	failAnalysis  map[int]bool
	failVariant   map[int]bool
	variantCalls  int
	variantPrefix string
}

func newMemoryContent(texts ...string) *memoryContent {
	return &memoryContent{
		texts:        texts,
		primaryTypes: map[int]string{},
		failText:     map[int]bool{},
		failAnalysis: map[int]bool{},
		failVariant:  map[int]bool{},
	}
}

func (m *memoryContent) UnitCount(context.Context) (int, error) {
	return len(m.texts), nil
}

func (m *memoryContent) UnitText(_ context.Context, index int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failText[index] {
		return "", errUnavailable
	}
	if index < 0 || index >= len(m.texts) {
		return "", fmt.Errorf("unit %d out of range", index)
	}
	return m.texts[index], nil
}

func (m *memoryContent) UnitAnalysis(_ context.Context, index int) (domain.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAnalysis[index] {
		return domain.Analysis{}, errUnavailable
	}
	primary := m.primaryTypes[index]
	if primary == "" {
		primary = "narrative"
	}
	return domain.Analysis{PrimaryType: primary, ImportanceScore: 0.5, ReadingDifficulty: 0.3}, nil
}

func (m *memoryContent) AdaptiveVariant(_ context.Context, index int, version domain.ContentVersion) (domain.AdaptiveContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variantCalls++
	if m.failVariant[index] {
		return domain.AdaptiveContent{}, errUnavailable
	}
	variant := domain.VariantFull
	switch version {
	case domain.VersionCondensed:
		variant = domain.VariantCondensed
	case domain.VersionSummary, domain.VersionAuto:
		variant = domain.VariantSummary
	}
	return domain.AdaptiveContent{
		Variant:    variant,
		Text:       m.variantPrefix + version.String() + ":" + m.texts[index],
		Highlights: []string{},
	}, nil
}

func (m *memoryContent) setFailText(index int, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failText[index] = fail
}

func (m *memoryContent) setFailVariant(index int, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failVariant[index] = fail
}

type postedPattern struct {
	userKey string
	pattern domain.ReadingPattern
}

type recordingSink struct {
	mu    sync.Mutex
	posts []postedPattern
	err   error
}

func (r *recordingSink) PostReadingPattern(_ context.Context, userKey string, pattern domain.ReadingPattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, postedPattern{userKey: userKey, pattern: pattern})
	return r.err
}

func (r *recordingSink) all() []postedPattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]postedPattern, len(r.posts))
	copy(out, r.posts)
	return out
}

type countingTelemetry struct {
	mu              sync.Mutex
	classified      map[domain.Speed]int
	fallbacks       int
	loadFailures    map[string]int
	patternFailures int
	snapshots       int
}

func newCountingTelemetry() *countingTelemetry {
	return &countingTelemetry{classified: map[domain.Speed]int{}, loadFailures: map[string]int{}}
}

func (c *countingTelemetry) Classified(speed domain.Speed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classified[speed]++
}

func (c *countingTelemetry) VariantFallback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallbacks++
}

func (c *countingTelemetry) UnitLoadFailed(stage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadFailures[stage]++
}

func (c *countingTelemetry) PatternFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patternFailures++
}

func (c *countingTelemetry) SnapshotWritten() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots++
}

type memorySnapshots struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{puts: map[string][]byte{}}
}

func (m *memorySnapshots) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[key] = append([]byte(nil), payload...)
	return nil
}

func (m *memorySnapshots) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.puts[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return payload, nil
}

type memoryReports struct {
	written []domain.Report
}

func (m *memoryReports) Write(_ context.Context, report domain.Report) (string, error) {
	m.written = append(m.written, report)
	return "/reports/" + report.SessionID + ".json", nil
}

type endedSession struct {
	id         string
	summary    domain.Summary
	reportPath string
}

type recordingSessions struct {
	ended []endedSession
}

func (r *recordingSessions) Start(context.Context, string, string) (readingout.StartedSession, error) {
	return readingout.StartedSession{ID: "sess-1"}, nil
}

func (r *recordingSessions) End(_ context.Context, id string, summary domain.Summary, reportPath string) error {
	r.ended = append(r.ended, endedSession{id: id, summary: summary, reportPath: reportPath})
	return nil
}
