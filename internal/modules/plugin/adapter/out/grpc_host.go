package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	pluginrpc "bookplus/internal/modules/plugin/adapter/out/rpc"
	"bookplus/internal/modules/plugin/domain"
	pluginout "bookplus/internal/modules/plugin/port/out"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type runningPlugin struct {
	client *plugin.Client
	rpc    pluginrpc.AnalyzerClient
	sha256 string
}

// GRPCHost keeps one plugin process per manifest alive across calls, since
// the reading surface analyzes every unit through the same plugin. A process
// is restarted when it has exited or its binary checksum changed.
type GRPCHost struct {
	logger hclog.Logger

	mu      sync.Mutex
	running map[string]*runningPlugin
}

func NewGRPCHost(logger hclog.Logger) pluginout.Host {
	return &GRPCHost{logger: logging.OrDiscard(logger), running: map[string]*runningPlugin{}}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, err := h.client(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, h.callError(callCtx, manifest, "get metadata", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) Analyze(ctx context.Context, manifest domain.Manifest, input domain.AnalyzeRequest) (domain.AnalyzeResult, error) {
	client, err := h.client(manifest)
	if err != nil {
		return domain.AnalyzeResult{}, err
	}
	callCtx, cancel := callContext(ctx, timeoutFor(manifest))
	defer cancel()

	response, err := client.Analyze(callCtx, &pluginrpc.AnalyzeRequest{Text: input.Text})
	if err != nil {
		return domain.AnalyzeResult{}, h.callError(callCtx, manifest, "analyze", err)
	}
	segments := make([]domain.Segment, 0, len(response.Segments))
	for _, segment := range response.Segments {
		segments = append(segments, domain.Segment{Text: segment.Text, Kind: segment.Kind})
	}
	return domain.AnalyzeResult{
		Segments:          segments,
		ReadingDifficulty: response.ReadingDifficulty,
		ImportanceScore:   response.ImportanceScore,
		PrimaryType:       response.PrimaryType,
	}, nil
}

func (h *GRPCHost) Adapt(ctx context.Context, manifest domain.Manifest, input domain.AdaptRequest) (domain.AdaptResult, error) {
	client, err := h.client(manifest)
	if err != nil {
		return domain.AdaptResult{}, err
	}
	callCtx, cancel := callContext(ctx, timeoutFor(manifest))
	defer cancel()

	response, err := client.Adapt(callCtx, &pluginrpc.AdaptRequest{
		Text:            input.Text,
		Version:         input.Version,
		PrimaryType:     input.PrimaryType,
		ImportanceScore: input.ImportanceScore,
	})
	if err != nil {
		return domain.AdaptResult{}, h.callError(callCtx, manifest, "adapt", err)
	}
	return domain.AdaptResult{
		Version:              response.Version,
		Text:                 response.Text,
		HighlightedSentences: response.HighlightedSentences,
		EmphasisType:         response.EmphasisType,
	}, nil
}

func (h *GRPCHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, running := range h.running {
		running.client.Kill()
		delete(h.running, name)
	}
	return nil
}

func (h *GRPCHost) client(manifest domain.Manifest) (pluginrpc.AnalyzerClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if running, ok := h.running[manifest.Name]; ok {
		if !running.client.Exited() && running.sha256 == manifest.SHA256 {
			return running.rpc, nil
		}
		running.client.Kill()
		delete(h.running, manifest.Name)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(pluginrpc.AnalyzerClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	h.running[manifest.Name] = &runningPlugin{client: client, rpc: typed, sha256: manifest.SHA256}
	h.logger.Debug("plugin started", "plugin", manifest.Name, "version", manifest.Version)
	return typed, nil
}

func (h *GRPCHost) callError(callCtx context.Context, manifest domain.Manifest, op string, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s", domain.ErrPluginTimeout, manifest.Name, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func timeoutFor(manifest domain.Manifest) time.Duration {
	if manifest.TimeoutMS > 0 {
		return time.Duration(manifest.TimeoutMS) * time.Millisecond
	}
	return defaultCallTimeout
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
