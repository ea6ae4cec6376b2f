package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bookplus/internal/modules/library/domain"
	"bookplus/internal/modules/library/dto"
	libraryout "bookplus/internal/modules/library/port/out"
	"bookplus/internal/platform/clock"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/id"
	"bookplus/internal/platform/slug"
)

type BookService struct {
	clock     clock.Clock
	idGen     id.Generator
	store     libraryout.BookStore
	projector libraryout.BookIndexProjector
}

func NewBookService(clock clock.Clock, idGen id.Generator, store libraryout.BookStore, projector libraryout.BookIndexProjector) *BookService {
	return &BookService{clock: clock, idGen: idGen, store: store, projector: projector}
}

func (s *BookService) Add(ctx context.Context, input dto.BookInput) (domain.Book, string, error) {
	now := s.clock.Now()
	book := domain.Book{
		ID:        s.idGen.New(),
		AddedAt:   now,
		UpdatedAt: now,
	}
	if err := applyInput(&book, input); err != nil {
		return domain.Book{}, "", err
	}
	bookSlug, err := s.uniqueSlug(ctx, book.Title, book.ID)
	if err != nil {
		return domain.Book{}, "", err
	}
	book.Slug = bookSlug
	if err := book.Validate(); err != nil {
		return domain.Book{}, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.persist(ctx, domain.BookDocument{Book: book})
}

// Update replaces the editable fields. The slug, and so the note path, stays.
func (s *BookService) Update(ctx context.Context, bookID string, input dto.BookInput) (domain.Book, string, error) {
	doc, err := s.store.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, "", err
	}
	book := doc.Book
	if err := applyInput(&book, input); err != nil {
		return domain.Book{}, "", err
	}
	book.UpdatedAt = s.clock.Now()
	if err := book.Validate(); err != nil {
		return domain.Book{}, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	doc.Book = book
	return s.persist(ctx, doc)
}

func (s *BookService) Delete(ctx context.Context, bookID string) (domain.Book, error) {
	doc, err := s.store.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if err := s.store.Delete(ctx, bookID); err != nil {
		return domain.Book{}, err
	}
	if err := s.projector.DeleteBook(ctx, bookID); err != nil {
		return domain.Book{}, err
	}
	return doc.Book, nil
}

func (s *BookService) RecordSession(ctx context.Context, bookID, sessionID string) (domain.Book, error) {
	doc, err := s.store.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	doc.Book.LastSessionID = sessionID
	doc.Book.UpdatedAt = s.clock.Now()
	book, _, err := s.persist(ctx, doc)
	return book, err
}

func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Book)
	}
	return out, nil
}

func (s *BookService) Get(ctx context.Context, bookID string) (domain.Book, error) {
	doc, err := s.store.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	return doc.Book, nil
}

func (s *BookService) Reindex(ctx context.Context) error {
	if err := s.projector.Reset(ctx); err != nil {
		return err
	}
	docs, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.projector.UpsertBook(ctx, doc.Book); err != nil {
			return err
		}
	}
	return nil
}

func (s *BookService) persist(ctx context.Context, doc domain.BookDocument) (domain.Book, string, error) {
	path, err := s.store.Save(ctx, doc)
	if err != nil {
		return domain.Book{}, "", err
	}
	doc.Book.NotePath = path
	if err := s.projector.UpsertBook(ctx, doc.Book); err != nil {
		return domain.Book{}, "", err
	}
	return doc.Book, path, nil
}

// uniqueSlug suffixes the title slug with part of the id when another book
// already owns it.
func (s *BookService) uniqueSlug(ctx context.Context, title, bookID string) (string, error) {
	base := slug.Make(title)
	docs, err := s.store.List(ctx)
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if doc.Book.Slug == base && doc.Book.ID != bookID {
			suffix := bookID
			if len(suffix) > 6 {
				suffix = suffix[:6]
			}
			return base + "-" + suffix, nil
		}
	}
	return base, nil
}

func applyInput(book *domain.Book, input dto.BookInput) error {
	book.Title = strings.TrimSpace(input.Title)
	book.Author = strings.TrimSpace(input.Author)
	book.Description = strings.TrimSpace(input.Description)
	book.ISBN = strings.TrimSpace(input.ISBN)
	book.PublishedYear = input.PublishedYear

	path := strings.TrimSpace(input.Path)
	if path == "" {
		book.FilePath = ""
		book.Format = ""
		return nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	format := domain.Format(strings.ToLower(strings.TrimSpace(input.Format)))
	if format == "" {
		inferred, err := domain.FormatFromPath(path)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		format = inferred
	}
	book.FilePath = path
	book.Format = format
	if book.Title == "" {
		book.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return nil
}
