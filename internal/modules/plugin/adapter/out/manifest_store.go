package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bookplus/internal/modules/plugin/domain"
	pluginout "bookplus/internal/modules/plugin/port/out"

	"gopkg.in/yaml.v3"
)

// FileManifestStore reads <base>/plugins/plugins.yaml, falling back to
// plugins.json. Unknown fields are rejected in both formats and relative
// binary paths resolve against base.
type FileManifestStore struct {
	basePath string
	dir      string
}

func NewFileManifestStore(basePath string) pluginout.ManifestStore {
	return &FileManifestStore{basePath: basePath, dir: filepath.Join(basePath, "plugins")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	manifests, err := s.loadYAML(filepath.Join(s.dir, "plugins.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		manifests, err = s.loadJSON(filepath.Join(s.dir, "plugins.json"))
	}
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}

func (s *FileManifestStore) loadYAML(path string) ([]domain.Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifests []domain.Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifests); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	return manifests, nil
}

func (s *FileManifestStore) loadJSON(path string) ([]domain.Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	return manifests, nil
}
