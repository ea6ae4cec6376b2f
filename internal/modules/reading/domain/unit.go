package domain

import (
	"fmt"
	"strings"

	"bookplus/internal/platform/textstat"
)

type UnitStatus int

const (
	UnitPending UnitStatus = iota
	UnitLoaded
	UnitFailed
)

func (s UnitStatus) String() string {
	switch s {
	case UnitPending:
		return "pending"
	case UnitLoaded:
		return "loaded"
	case UnitFailed:
		return "failed"
	default:
		return fmt.Sprintf("UnitStatus(%d)", int(s))
	}
}

// Variant is a concrete text rendition of a unit.
type Variant int

const (
	VariantFull Variant = iota
	VariantCondensed
	VariantSummary
)

func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "full"
	case VariantCondensed:
		return "condensed"
	case VariantSummary:
		return "summary"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func ParseVariant(raw string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "full":
		return VariantFull, nil
	case "condensed":
		return VariantCondensed, nil
	case "summary":
		return VariantSummary, nil
	default:
		return 0, fmt.Errorf("invalid variant %q", raw)
	}
}

// ContentVersion is the global setting requested from the content source.
// Auto lets the source pick a concrete variant per unit.
type ContentVersion int

const (
	VersionFull ContentVersion = iota
	VersionCondensed
	VersionSummary
	VersionAuto
)

func (v ContentVersion) String() string {
	switch v {
	case VersionFull:
		return "full"
	case VersionCondensed:
		return "condensed"
	case VersionSummary:
		return "summary"
	case VersionAuto:
		return "auto"
	default:
		return fmt.Sprintf("ContentVersion(%d)", int(v))
	}
}

func ParseContentVersion(raw string) (ContentVersion, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "full":
		return VersionFull, nil
	case "condensed":
		return VersionCondensed, nil
	case "summary":
		return VersionSummary, nil
	case "auto":
		return VersionAuto, nil
	default:
		return 0, fmt.Errorf("invalid content version %q", raw)
	}
}

func ContentVersions() []ContentVersion {
	return []ContentVersion{VersionFull, VersionCondensed, VersionSummary, VersionAuto}
}

// AdaptiveContent is replaced as a whole; holders must not mutate it.
type AdaptiveContent struct {
	Variant    Variant
	Text       string
	Highlights []string
	Emphasis   string
	Pinned     bool
	// Fetched marks content returned by the content source for Version, as
	// opposed to a fallback or a pin.
	Fetched bool
	Version ContentVersion
}

// Holds reports whether c is fetched, unpinned content for v.
func (c *AdaptiveContent) Holds(v ContentVersion) bool {
	return c != nil && c.Fetched && !c.Pinned && c.Version == v
}

// FullContent is the full view of raw text, used for fallbacks and pins.
func FullContent(text, emphasis string, pinned bool) AdaptiveContent {
	return AdaptiveContent{
		Variant:    VariantFull,
		Text:       text,
		Highlights: []string{},
		Emphasis:   emphasis,
		Pinned:     pinned,
	}
}

type Segment struct {
	Text string
	Kind string
}

type Analysis struct {
	Segments          []Segment
	ReadingDifficulty float64
	ImportanceScore   float64
	PrimaryType       string
}

const UnknownContentType = "unknown"

type Unit struct {
	Index       int
	Text        string
	Status      UnitStatus
	PrimaryType string
	Importance  float64
	Difficulty  float64
	Adaptive    *AdaptiveContent
	Speed       *Speed
	Err         string
}

func NewPendingUnit(index int) Unit {
	return Unit{Index: index, Status: UnitPending}
}

func (u Unit) WordCount() int {
	return textstat.CountWords(u.Text)
}

// DisplayText is the adaptive text when one is attached, else the raw text.
func (u Unit) DisplayText() string {
	if u.Adaptive != nil {
		return u.Adaptive.Text
	}
	return u.Text
}

// WithAnalysis returns a loaded copy of u carrying text, analysis and the
// initial adaptive content.
func (u Unit) WithAnalysis(text string, analysis Analysis, content AdaptiveContent) Unit {
	primary := analysis.PrimaryType
	if primary == "" {
		primary = UnknownContentType
	}
	u.Text = text
	u.Status = UnitLoaded
	u.PrimaryType = primary
	u.Importance = analysis.ImportanceScore
	u.Difficulty = analysis.ReadingDifficulty
	u.Adaptive = &content
	u.Err = ""
	return u
}

func (u Unit) WithFailure(err error) Unit {
	u.Status = UnitFailed
	if err != nil {
		u.Err = err.Error()
	}
	return u
}

func (u Unit) WithAdaptive(content AdaptiveContent) Unit {
	u.Adaptive = &content
	return u
}

func (u Unit) WithSpeed(speed Speed) Unit {
	u.Speed = &speed
	return u
}
