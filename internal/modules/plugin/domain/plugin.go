package domain

import (
	"errors"
	"fmt"
	"regexp"
)

type Capability string

const (
	CapabilityAnalyze Capability = "analyze"
	CapabilityAdapt   Capability = "adapt"
)

var (
	ErrPluginNotFound    = errors.New("plugin not found")
	ErrPluginDisabled    = errors.New("plugin is disabled")
	ErrChecksumMismatch  = errors.New("plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("plugin capability missing")
	ErrPluginTimeout     = errors.New("plugin timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version" yaml:"version"`
	Binary       string       `json:"binary" yaml:"binary"`
	SHA256       string       `json:"sha256" yaml:"sha256"`
	Enabled      bool         `json:"enabled" yaml:"enabled"`
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`
	TimeoutMS    int          `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin capabilities are required")
	}
	if m.TimeoutMS < 0 {
		return fmt.Errorf("plugin timeout must not be negative")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityAnalyze, CapabilityAdapt:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

type Segment struct {
	Text string
	Kind string
}

type AnalyzeRequest struct {
	Text string
}

type AnalyzeResult struct {
	Segments          []Segment
	ReadingDifficulty float64
	ImportanceScore   float64
	PrimaryType       string
}

func (r AnalyzeResult) Validate() error {
	if r.ReadingDifficulty < 0 || r.ReadingDifficulty > 1 {
		return fmt.Errorf("reading difficulty %v outside [0,1]", r.ReadingDifficulty)
	}
	if r.ImportanceScore < 0 || r.ImportanceScore > 1 {
		return fmt.Errorf("importance score %v outside [0,1]", r.ImportanceScore)
	}
	return nil
}

// AdaptRequest always names a concrete version; auto is resolved by the host
// application before the plugin is called.
type AdaptRequest struct {
	Text            string
	Version         string
	PrimaryType     string
	ImportanceScore float64
}

func (r AdaptRequest) Validate() error {
	switch r.Version {
	case "full", "condensed", "summary":
		return nil
	default:
		return fmt.Errorf("invalid adapt version %q", r.Version)
	}
}

type AdaptResult struct {
	Version              string
	Text                 string
	HighlightedSentences []string
	EmphasisType         string
}
