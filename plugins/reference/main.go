// Command reference is an analyzer plugin serving the built-in heuristics
// over the plugin protocol. It doubles as a template for custom analyzers.
package main

import (
	"context"
	"fmt"

	contentdomain "bookplus/internal/modules/content/domain"
	contentservice "bookplus/internal/modules/content/service"
	pluginrpc "bookplus/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"analyze", "adapt"},
	}, nil
}

func (s *server) Analyze(_ context.Context, in *pluginrpc.AnalyzeRequest) (*pluginrpc.AnalyzeResponse, error) {
	analysis := contentservice.AnalyzeText(in.Text)
	segments := make([]pluginrpc.Segment, 0, len(analysis.Segments))
	for _, segment := range analysis.Segments {
		segments = append(segments, pluginrpc.Segment{Text: segment.Text, Kind: string(segment.Kind)})
	}
	return &pluginrpc.AnalyzeResponse{
		Segments:          segments,
		ReadingDifficulty: analysis.ReadingDifficulty,
		ImportanceScore:   analysis.ImportanceScore,
		PrimaryType:       string(analysis.PrimaryType),
	}, nil
}

func (s *server) Adapt(_ context.Context, in *pluginrpc.AdaptRequest) (*pluginrpc.AdaptResponse, error) {
	version, err := contentdomain.ParseVersion(in.Version)
	if err != nil {
		return nil, err
	}
	if version == contentdomain.VersionAuto {
		return nil, fmt.Errorf("auto must be resolved by the host")
	}
	variant := contentservice.AdaptText(in.Text, contentdomain.Analysis{
		PrimaryType:     contentdomain.ContentType(in.PrimaryType),
		ImportanceScore: in.ImportanceScore,
	}, version)
	return &pluginrpc.AdaptResponse{
		Version:              string(variant.Version),
		Text:                 variant.Text,
		HighlightedSentences: variant.HighlightedSentences,
		EmphasisType:         variant.EmphasisType,
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
