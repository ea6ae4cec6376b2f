package out

import (
	"context"

	"bookplus/internal/modules/plugin/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Analyze(ctx context.Context, manifest domain.Manifest, input domain.AnalyzeRequest) (domain.AnalyzeResult, error)
	Adapt(ctx context.Context, manifest domain.Manifest, input domain.AdaptRequest) (domain.AdaptResult, error)
	// Close stops every plugin process the host started.
	Close() error
}
