package domain_test

import (
	"encoding/json"
	"testing"

	"bookplus/internal/modules/reading/domain"
)

func TestClassifyFallbackThresholdsAreStrict(t *testing.T) {
	t.Parallel()
	cases := []struct {
		wpm  int
		want domain.Speed
	}{
		{wpm: 0, want: domain.SpeedSlow},
		{wpm: 50, want: domain.SpeedSlow},
		{wpm: 51, want: domain.SpeedNormal},
		{wpm: 150, want: domain.SpeedNormal},
		{wpm: 151, want: domain.SpeedSkim},
		{wpm: 300, want: domain.SpeedSkim},
		{wpm: 301, want: domain.SpeedFastSkim},
		{wpm: 5000, want: domain.SpeedFastSkim},
	}
	for _, tc := range cases {
		if got := domain.Classify(tc.wpm, domain.Baseline{}); got != tc.want {
			t.Fatalf("classify(%d) = %s, want %s", tc.wpm, got, tc.want)
		}
	}
}

func TestClassifyBaselineThresholdsAreInclusive(t *testing.T) {
	t.Parallel()
	baseline := domain.NewBaseline(200, 400)
	cases := []struct {
		wpm  int
		want domain.Speed
	}{
		{wpm: 650, want: domain.SpeedFastSkim},
		{wpm: 600, want: domain.SpeedFastSkim},
		{wpm: 599, want: domain.SpeedSkim},
		{wpm: 240, want: domain.SpeedSkim},
		{wpm: 239, want: domain.SpeedNormal},
		{wpm: 140, want: domain.SpeedNormal},
		{wpm: 139, want: domain.SpeedSlow},
	}
	for _, tc := range cases {
		if got := domain.Classify(tc.wpm, baseline); got != tc.want {
			t.Fatalf("classify(%d) = %s, want %s", tc.wpm, got, tc.want)
		}
	}
}

func TestClassifyPartialBaselineFallsBack(t *testing.T) {
	t.Parallel()
	normal := 200.0
	partial := domain.Baseline{NormalWPM: &normal}
	if got := domain.Classify(240, partial); got != domain.SpeedSkim {
		t.Fatalf("expected fallback skim, got %s", got)
	}
	if got := domain.Classify(150, partial); got != domain.SpeedNormal {
		t.Fatalf("expected fallback normal at 150, got %s", got)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()
	valid := map[domain.Speed]bool{}
	for _, s := range domain.Speeds() {
		valid[s] = true
	}
	baselines := []domain.Baseline{{}, domain.NewBaseline(250, 450), domain.NewBaseline(0, 0)}
	for _, b := range baselines {
		for wpm := 0; wpm <= 2000; wpm += 7 {
			if got := domain.Classify(wpm, b); !valid[got] {
				t.Fatalf("classify(%d) returned %d", wpm, int(got))
			}
		}
	}
}

func TestWordsPerMinute(t *testing.T) {
	t.Parallel()
	if got := domain.WordsPerMinute(6, 1200); got != 300 {
		t.Fatalf("expected 300 wpm, got %d", got)
	}
	if got := domain.WordsPerMinute(0, 1200); got != 0 {
		t.Fatalf("no words should be 0 wpm, got %d", got)
	}
	if got := domain.WordsPerMinute(10, 0); got != 0 {
		t.Fatalf("no dwell should be 0 wpm, got %d", got)
	}
	if got := domain.WordsPerMinute(10, -5); got != 0 {
		t.Fatalf("negative dwell should be 0 wpm, got %d", got)
	}
	prev := domain.WordsPerMinute(120, 1)
	for dwell := int64(2); dwell < 120000; dwell += 97 {
		got := domain.WordsPerMinute(120, dwell)
		if got > prev {
			t.Fatalf("wpm increased from %d to %d at dwell %d", prev, got, dwell)
		}
		prev = got
	}
}

func TestSpeedTextEncoding(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(struct {
		Speed domain.Speed `json:"speed"`
	}{Speed: domain.SpeedFastSkim})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"speed":"fast-skim"}` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	if _, err := domain.ParseSpeed("sprint"); err == nil {
		t.Fatalf("invalid speed should fail")
	}
	if _, err := json.Marshal(domain.Speed(42)); err == nil {
		t.Fatalf("out of range speed should not marshal")
	}
}

func TestMissingClassificationDecodesAsUnknown(t *testing.T) {
	t.Parallel()
	var section domain.SectionAnalytics
	if err := json.Unmarshal([]byte(`{"paragraphIndex":3,"wpm":0}`), &section); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if section.Classification != domain.SpeedUnknown || section.Classification.String() != "unknown" {
		t.Fatalf("expected unknown, got %s", section.Classification)
	}
	for _, s := range domain.Speeds() {
		if s == domain.SpeedUnknown {
			t.Fatalf("classify never returns unknown")
		}
	}
}

func TestParseContentVersion(t *testing.T) {
	t.Parallel()
	for _, v := range domain.ContentVersions() {
		parsed, err := domain.ParseContentVersion(v.String())
		if err != nil || parsed != v {
			t.Fatalf("parse %s: got %s, %v", v, parsed, err)
		}
	}
	if v, err := domain.ParseContentVersion(""); err != nil || v != domain.VersionFull {
		t.Fatalf("empty version should default to full, got %s, %v", v, err)
	}
	if _, err := domain.ParseContentVersion("abridged"); err == nil {
		t.Fatalf("unknown version should fail")
	}
}
