package domain_test

import (
	"testing"

	"bookplus/internal/modules/plugin/domain"
)

const fakeSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	analyze := []domain.Capability{domain.CapabilityAnalyze}
	cases := []struct {
		name      string
		manifest  domain.Manifest
		shouldErr bool
	}{
		{name: "valid", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: fakeSHA, Enabled: true, Capabilities: analyze}, shouldErr: false},
		{name: "missing name", manifest: domain.Manifest{Version: "1", Binary: "/tmp/p", SHA256: fakeSHA, Capabilities: analyze}, shouldErr: true},
		{name: "missing version", manifest: domain.Manifest{Name: "p", Binary: "/tmp/p", SHA256: fakeSHA, Capabilities: analyze}, shouldErr: true},
		{name: "missing binary", manifest: domain.Manifest{Name: "p", Version: "1", SHA256: fakeSHA, Capabilities: analyze}, shouldErr: true},
		{name: "missing sha", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", Capabilities: analyze}, shouldErr: true},
		{name: "no capabilities", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: fakeSHA}, shouldErr: true},
		{name: "invalid capability", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: fakeSHA, Capabilities: []domain.Capability{"command"}}, shouldErr: true},
		{name: "duplicate capability", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: fakeSHA, Capabilities: []domain.Capability{domain.CapabilityAdapt, domain.CapabilityAdapt}}, shouldErr: true},
		{name: "negative timeout", manifest: domain.Manifest{Name: "p", Version: "1", Binary: "/tmp/p", SHA256: fakeSHA, Capabilities: analyze, TimeoutMS: -1}, shouldErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestAnalyzeResultAndAdaptRequestValidation(t *testing.T) {
	t.Parallel()
	if err := (domain.AnalyzeResult{ReadingDifficulty: 0.4, ImportanceScore: 1}).Validate(); err != nil {
		t.Fatalf("validate analysis: %v", err)
	}
	if err := (domain.AnalyzeResult{ReadingDifficulty: -0.1}).Validate(); err == nil {
		t.Fatalf("expected difficulty range error")
	}
	for _, version := range []string{"full", "condensed", "summary"} {
		if err := (domain.AdaptRequest{Version: version}).Validate(); err != nil {
			t.Fatalf("version %s: %v", version, err)
		}
	}
	if err := (domain.AdaptRequest{Version: "auto"}).Validate(); err == nil {
		t.Fatalf("expected auto to be rejected")
	}
}
