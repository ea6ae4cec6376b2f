package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bookplus/internal/modules/library/domain"
	libraryout "bookplus/internal/modules/library/port/out"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/markdown"
)

const defaultBookBody = "## Notes\n\n## Quotes\n"

type VaultBookStore struct {
	vaultPath string
}

func NewVaultBookStore(vaultPath string) libraryout.BookStore {
	return &VaultBookStore{vaultPath: vaultPath}
}

func (s *VaultBookStore) dir() string {
	return filepath.Join(s.vaultPath, "books")
}

func (s *VaultBookStore) Save(_ context.Context, document domain.BookDocument) (string, error) {
	book := document.Book
	bookPath := filepath.Join(s.dir(), book.Slug+".md")
	if err := os.MkdirAll(filepath.Dir(bookPath), 0o755); err != nil {
		return "", fmt.Errorf("create book directory: %w", err)
	}

	body := document.Body
	if strings.TrimSpace(body) == "" {
		if existing, err := os.ReadFile(bookPath); err == nil {
			if _, existingBody, splitErr := markdown.SplitFrontmatter(string(existing)); splitErr == nil {
				body = existingBody
			}
		}
	}
	if strings.TrimSpace(body) == "" {
		body = defaultBookBody
	}

	rendered, err := markdown.RenderFrontmatter(toFrontmatter(book), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(bookPath, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write book markdown: %w", err)
	}
	return bookPath, nil
}

func (s *VaultBookStore) FindByID(ctx context.Context, id string) (domain.BookDocument, error) {
	docs, err := s.List(ctx)
	if err != nil {
		return domain.BookDocument{}, err
	}
	for _, doc := range docs {
		if doc.Book.ID == id {
			return doc, nil
		}
	}
	return domain.BookDocument{}, fmt.Errorf("book %q: %w", id, apperrors.ErrNotFound)
}

func (s *VaultBookStore) Delete(ctx context.Context, id string) error {
	doc, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(doc.Book.NotePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove book note: %w", err)
	}
	return nil
}

func (s *VaultBookStore) List(_ context.Context) ([]domain.BookDocument, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir(), "*.md"))
	if err != nil {
		return nil, fmt.Errorf("glob book notes: %w", err)
	}
	sort.Strings(matches)

	out := make([]domain.BookDocument, 0, len(matches))
	for _, path := range matches {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		meta, body, splitErr := markdown.SplitFrontmatter(string(content))
		if splitErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, splitErr)
		}
		book, convErr := fromFrontmatter(meta, path)
		if convErr != nil {
			return nil, fmt.Errorf("decode book %s: %w", path, convErr)
		}
		out = append(out, domain.BookDocument{Book: book, Body: body})
	}
	return out, nil
}

func toFrontmatter(book domain.Book) map[string]any {
	return map[string]any{
		"schema_version":  domain.SchemaVersion,
		"id":              book.ID,
		"title":           book.Title,
		"author":          book.Author,
		"description":     book.Description,
		"isbn":            book.ISBN,
		"published_year":  book.PublishedYear,
		"file_path":       book.FilePath,
		"format":          string(book.Format),
		"added_at":        book.AddedAt.Format(time.RFC3339),
		"updated_at":      book.UpdatedAt.Format(time.RFC3339),
		"last_session_id": book.LastSessionID,
	}
}

func fromFrontmatter(meta map[string]any, notePath string) (domain.Book, error) {
	book := domain.Book{
		ID:            markdown.String(meta, "id"),
		Title:         markdown.String(meta, "title"),
		Author:        markdown.String(meta, "author"),
		Description:   markdown.String(meta, "description"),
		ISBN:          markdown.String(meta, "isbn"),
		PublishedYear: markdown.Int(meta, "published_year"),
		FilePath:      markdown.String(meta, "file_path"),
		Format:        domain.Format(markdown.String(meta, "format")),
		NotePath:      notePath,
		Slug:          strings.TrimSuffix(filepath.Base(notePath), filepath.Ext(notePath)),
		AddedAt:       markdown.Time(meta, "added_at"),
		UpdatedAt:     markdown.Time(meta, "updated_at"),
		LastSessionID: markdown.String(meta, "last_session_id"),
	}
	if err := book.Validate(); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}
