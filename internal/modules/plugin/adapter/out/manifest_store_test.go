package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pluginout "bookplus/internal/modules/plugin/adapter/out"
	"bookplus/internal/modules/plugin/domain"
)

func writeManifestFile(t *testing.T, base, name, raw string) {
	t.Helper()
	pluginsDir := filepath.Join(base, "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginsDir, name), []byte(raw), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := pluginout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifestFile(t, base, "plugins.json", `[
  {
    "name": "reference",
    "version": "1.0.0",
    "binary": "plugins/reference/reference-plugin",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["analyze"]
  }
]`)
	manifests, err := pluginout.NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if !filepath.IsAbs(manifests[0].Binary) {
		t.Fatalf("expected absolute binary path, got %s", manifests[0].Binary)
	}
}

func TestFileManifestStorePrefersYAML(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifestFile(t, base, "plugins.json", `[]`)
	writeManifestFile(t, base, "plugins.yaml", `- name: reference
  version: 1.0.0
  binary: /opt/bookplus/reference-plugin
  sha256: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
  enabled: true
  timeout_ms: 1500
  capabilities: [analyze, adapt]
`)
	manifests, err := pluginout.NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected the yaml manifest, got %d", len(manifests))
	}
	m := manifests[0]
	if m.TimeoutMS != 1500 || !m.HasCapability(domain.CapabilityAdapt) {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifestFile(t, base, "plugins.json", `[
  {
    "name": "reference",
    "version": "1.0.0",
    "binary": "/tmp/reference-plugin",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["analyze"],
    "unknown_field": true
  }
]`)
	if _, err := pluginout.NewFileManifestStore(base).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}

	yamlBase := t.TempDir()
	writeManifestFile(t, yamlBase, "plugins.yaml", "- name: reference\n  color: blue\n")
	if _, err := pluginout.NewFileManifestStore(yamlBase).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown yaml field error")
	}
}
