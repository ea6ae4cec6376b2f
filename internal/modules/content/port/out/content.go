package out

import (
	"context"

	"bookplus/internal/modules/content/domain"
)

type BookResolver interface {
	Resolve(ctx context.Context, bookID string) (domain.BookRef, error)
}

// DocumentLoader reads a book file and splits it into units.
type DocumentLoader interface {
	Load(ctx context.Context, book domain.BookRef) (domain.Document, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
	Adapt(ctx context.Context, text string, analysis domain.Analysis, version domain.Version) (domain.Variant, error)
}
