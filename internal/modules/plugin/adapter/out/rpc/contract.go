package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "analyzer"
	serviceName       = "bookplus.analyzer.v1.Analyzer"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodAnalyze     = "/" + serviceName + "/Analyze"
	methodAdapt       = "/" + serviceName + "/Adapt"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "BOOKPLUS_PLUGIN",
	MagicCookieValue: "bookplus-analyzer",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type Segment struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type AnalyzeResponse struct {
	Segments          []Segment `json:"segments"`
	ReadingDifficulty float64   `json:"reading_difficulty"`
	ImportanceScore   float64   `json:"importance_score"`
	PrimaryType       string    `json:"primary_type"`
}

type AdaptRequest struct {
	Text            string  `json:"text"`
	Version         string  `json:"version"`
	PrimaryType     string  `json:"primary_type"`
	ImportanceScore float64 `json:"importance_score"`
}

type AdaptResponse struct {
	Version              string   `json:"version"`
	Text                 string   `json:"text"`
	HighlightedSentences []string `json:"highlighted_sentences"`
	EmphasisType         string   `json:"emphasis_type"`
}

type AnalyzerServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Analyze(ctx context.Context, in *AnalyzeRequest) (*AnalyzeResponse, error)
	Adapt(ctx context.Context, in *AdaptRequest) (*AdaptResponse, error)
}

type AnalyzerClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Analyze(ctx context.Context, in *AnalyzeRequest) (*AnalyzeResponse, error)
	Adapt(ctx context.Context, in *AdaptRequest) (*AdaptResponse, error)
}

type analyzerClient struct {
	conn *grpc.ClientConn
}

func NewAnalyzerClient(conn *grpc.ClientConn) AnalyzerClient {
	return &analyzerClient{conn: conn}
}

func (c *analyzerClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *analyzerClient) Analyze(ctx context.Context, in *AnalyzeRequest) (*AnalyzeResponse, error) {
	out := &AnalyzeResponse{}
	if err := c.conn.Invoke(ctx, methodAnalyze, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *analyzerClient) Adapt(ctx context.Context, in *AdaptRequest) (*AdaptResponse, error) {
	out := &AdaptResponse{}
	if err := c.conn.Invoke(ctx, methodAdapt, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// unary builds a grpc method handler around a typed implementation method.
func unary[Req any, Resp any](fullMethod string, call func(context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type %T", req)
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterAnalyzerServer(server grpc.ServiceRegistrar, impl AnalyzerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*AnalyzerServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetMetadata", Handler: unary(methodGetMetadata, impl.GetMetadata)},
			{MethodName: "Analyze", Handler: unary(methodAnalyze, impl.Analyze)},
			{MethodName: "Adapt", Handler: unary(methodAdapt, impl.Adapt)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/analyzer-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl AnalyzerServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterAnalyzerServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewAnalyzerClient(conn), nil
}

func PluginMap(impl AnalyzerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
