package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bookplus/internal/modules/content/domain"
	contentout "bookplus/internal/modules/content/port/out"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
)

type cachedBook struct {
	ref      domain.BookRef
	document domain.Document
	analyses map[int]domain.Analysis
}

// ContentService serves units of catalog books. Documents and analyses are
// cached per book until Invalidate.
type ContentService struct {
	books    contentout.BookResolver
	loader   contentout.DocumentLoader
	analyzer contentout.Analyzer
	logger   hclog.Logger

	mu    sync.Mutex
	cache map[string]*cachedBook
}

func NewContentService(books contentout.BookResolver, loader contentout.DocumentLoader, analyzer contentout.Analyzer, logger hclog.Logger) *ContentService {
	return &ContentService{
		books:    books,
		loader:   loader,
		analyzer: analyzer,
		logger:   logging.OrDiscard(logger),
		cache:    map[string]*cachedBook{},
	}
}

func (s *ContentService) UnitCount(ctx context.Context, bookID string) (int, error) {
	book, err := s.book(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return len(book.document.Units), nil
}

func (s *ContentService) UnitText(ctx context.Context, bookID string, index int) (string, error) {
	book, err := s.book(ctx, bookID)
	if err != nil {
		return "", err
	}
	text, err := book.document.Unit(index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrOutOfRange, err)
	}
	return text, nil
}

func (s *ContentService) UnitAnalysis(ctx context.Context, bookID string, index int) (domain.Analysis, error) {
	book, err := s.book(ctx, bookID)
	if err != nil {
		return domain.Analysis{}, err
	}
	text, err := book.document.Unit(index)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", apperrors.ErrOutOfRange, err)
	}

	s.mu.Lock()
	cached, ok := book.analyses[index]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("analyze unit %d: %w", index, err)
	}
	analysis = analysis.Normalize()
	s.mu.Lock()
	book.analyses[index] = analysis
	s.mu.Unlock()
	return analysis, nil
}

func (s *ContentService) AdaptiveVariant(ctx context.Context, bookID string, index int, rawVersion string) (domain.Variant, error) {
	version, err := domain.ParseVersion(rawVersion)
	if err != nil {
		return domain.Variant{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	text, err := s.UnitText(ctx, bookID, index)
	if err != nil {
		return domain.Variant{}, err
	}
	analysis, err := s.UnitAnalysis(ctx, bookID, index)
	if err != nil {
		return domain.Variant{}, err
	}
	variant, err := s.analyzer.Adapt(ctx, text, analysis, version.ResolveAuto(analysis.ImportanceScore))
	if err != nil {
		return domain.Variant{}, fmt.Errorf("adapt unit %d to %s: %w", index, version, err)
	}
	if variant.Version == "" {
		variant.Version = version.ResolveAuto(analysis.ImportanceScore)
	}
	if variant.HighlightedSentences == nil {
		variant.HighlightedSentences = []string{}
	}
	return variant, nil
}

func (s *ContentService) Invalidate(bookID string) {
	s.mu.Lock()
	delete(s.cache, bookID)
	s.mu.Unlock()
}

// book loads and caches the document outside the lock; concurrent first
// loads of the same book may both read the file, the later one wins.
func (s *ContentService) book(ctx context.Context, bookID string) (*cachedBook, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	cached, ok := s.cache[bookID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	ref, err := s.books.Resolve(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(ref.FilePath) == "" {
		return nil, fmt.Errorf("%w: book %q has no content file", apperrors.ErrInvalidInput, bookID)
	}
	document, err := s.loader.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load book %q: %w", bookID, err)
	}
	document.BookID = ref.ID
	if document.Title == "" {
		document.Title = ref.Title
	}
	s.logger.Debug("book content loaded", "book", bookID, "units", len(document.Units), "format", ref.Format)

	entry := &cachedBook{ref: ref, document: document, analyses: map[int]domain.Analysis{}}
	s.mu.Lock()
	s.cache[bookID] = entry
	s.mu.Unlock()
	return entry, nil
}
