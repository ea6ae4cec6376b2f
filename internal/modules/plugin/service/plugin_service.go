package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bookplus/internal/modules/plugin/domain"
	"bookplus/internal/modules/plugin/dto"
	pluginout "bookplus/internal/modules/plugin/port/out"
	apperrors "bookplus/internal/platform/errors"
)

type PluginService struct {
	store pluginout.ManifestStore
	host  pluginout.Host

	mu       sync.Mutex
	verified map[string]domain.Manifest
}

func NewPluginService(store pluginout.ManifestStore, host pluginout.Host) *PluginService {
	return &PluginService{store: store, host: host, verified: map[string]domain.Manifest{}}
}

func (s *PluginService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *PluginService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *PluginService) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error) {
	manifest, err := s.runnable(ctx, input.PluginName, domain.CapabilityAnalyze)
	if err != nil {
		return dto.AnalyzeOutput{}, err
	}
	result, err := s.host.Analyze(ctx, manifest, domain.AnalyzeRequest{Text: input.Text})
	if err != nil {
		return dto.AnalyzeOutput{}, s.hostError(ctx, input.PluginName, err)
	}
	if err := result.Validate(); err != nil {
		return dto.AnalyzeOutput{}, fmt.Errorf("plugin %s returned invalid analysis: %w", input.PluginName, err)
	}
	segments := make([]dto.SegmentOutput, 0, len(result.Segments))
	for _, segment := range result.Segments {
		segments = append(segments, dto.SegmentOutput{Text: segment.Text, Kind: segment.Kind})
	}
	return dto.AnalyzeOutput{
		PluginName:        input.PluginName,
		Segments:          segments,
		ReadingDifficulty: result.ReadingDifficulty,
		ImportanceScore:   result.ImportanceScore,
		PrimaryType:       result.PrimaryType,
	}, nil
}

func (s *PluginService) Adapt(ctx context.Context, input dto.AdaptInput) (dto.AdaptOutput, error) {
	req := domain.AdaptRequest{
		Text:            input.Text,
		Version:         input.Version,
		PrimaryType:     input.PrimaryType,
		ImportanceScore: input.ImportanceScore,
	}
	if err := req.Validate(); err != nil {
		return dto.AdaptOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	manifest, err := s.runnable(ctx, input.PluginName, domain.CapabilityAdapt)
	if err != nil {
		return dto.AdaptOutput{}, err
	}
	result, err := s.host.Adapt(ctx, manifest, req)
	if err != nil {
		return dto.AdaptOutput{}, s.hostError(ctx, input.PluginName, err)
	}
	version := result.Version
	if version == "" {
		version = input.Version
	}
	return dto.AdaptOutput{
		PluginName:           input.PluginName,
		Version:              version,
		Text:                 result.Text,
		HighlightedSentences: result.HighlightedSentences,
		EmphasisType:         result.EmphasisType,
	}, nil
}

func (s *PluginService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

// runnable returns the manifest for pluginName once it has been checked
// against its checksum. Checked manifests are remembered so per-unit calls
// do not rehash the binary.
func (s *PluginService) runnable(ctx context.Context, pluginName string, requiredCapability domain.Capability) (domain.Manifest, error) {
	if s.host == nil {
		return domain.Manifest{}, fmt.Errorf("plugin host is not configured")
	}
	s.mu.Lock()
	manifest, ok := s.verified[pluginName]
	s.mu.Unlock()

	if !ok {
		manifests, err := s.loadValidated(ctx)
		if err != nil {
			return domain.Manifest{}, err
		}
		found := false
		for _, item := range manifests {
			if item.Name == pluginName {
				manifest = item
				found = true
				break
			}
		}
		if !found {
			return domain.Manifest{}, fmt.Errorf("%w: %q", domain.ErrPluginNotFound, pluginName)
		}
		if !manifest.Enabled {
			return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, pluginName)
		}
		if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		s.mu.Lock()
		s.verified[pluginName] = manifest
		s.mu.Unlock()
	}
	if !manifest.HasCapability(requiredCapability) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, requiredCapability)
	}
	return manifest, nil
}

func (s *PluginService) hostError(ctx context.Context, pluginName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if !errors.Is(err, domain.ErrPluginTimeout) {
			return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, pluginName)
		}
	}
	return err
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
