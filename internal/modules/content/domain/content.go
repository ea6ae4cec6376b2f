package domain

import (
	"fmt"
	"strings"
)

// Version names a requested rendition. Auto is resolved to one of the
// concrete versions per unit before a variant is produced.
type Version string

const (
	VersionFull      Version = "full"
	VersionCondensed Version = "condensed"
	VersionSummary   Version = "summary"
	VersionAuto      Version = "auto"
)

func ParseVersion(raw string) (Version, error) {
	v := Version(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return VersionFull, nil
	}
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v Version) Validate() error {
	switch v {
	case VersionFull, VersionCondensed, VersionSummary, VersionAuto:
		return nil
	default:
		return fmt.Errorf("invalid content version %q", string(v))
	}
}

// ResolveAuto picks the rendition for a unit of the given importance.
// Concrete versions are returned unchanged.
func (v Version) ResolveAuto(importance float64) Version {
	if v != VersionAuto {
		return v
	}
	switch {
	case importance >= 0.7:
		return VersionFull
	case importance >= 0.4:
		return VersionCondensed
	default:
		return VersionSummary
	}
}

type ContentType string

const (
	TypeNarrative   ContentType = "narrative"
	TypeDialogue    ContentType = "dialogue"
	TypeDescriptive ContentType = "descriptive"
	TypeExpository  ContentType = "expository"
	TypeList        ContentType = "list"
	TypeHeading     ContentType = "heading"
	TypeUnknown     ContentType = "unknown"
)

type Segment struct {
	Text string      `json:"text"`
	Kind ContentType `json:"kind"`
}

type Analysis struct {
	Segments          []Segment
	ReadingDifficulty float64
	ImportanceScore   float64
	PrimaryType       ContentType
}

// Normalize clamps scores into [0,1] and fills an empty primary type.
func (a Analysis) Normalize() Analysis {
	a.ReadingDifficulty = clamp01(a.ReadingDifficulty)
	a.ImportanceScore = clamp01(a.ImportanceScore)
	if a.PrimaryType == "" {
		a.PrimaryType = TypeUnknown
	}
	if a.Segments == nil {
		a.Segments = []Segment{}
	}
	return a
}

type Variant struct {
	Version              Version
	Text                 string
	HighlightedSentences []string
	EmphasisType         string
}

// Document is a book split into reading units, in order.
type Document struct {
	BookID string
	Title  string
	Units  []string
}

func (d Document) Unit(index int) (string, error) {
	if index < 0 || index >= len(d.Units) {
		return "", fmt.Errorf("unit %d of %d", index, len(d.Units))
	}
	return d.Units[index], nil
}

// BookRef is the slice of a catalog entry needed to load its content.
type BookRef struct {
	ID       string
	Title    string
	FilePath string
	Format   string
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
