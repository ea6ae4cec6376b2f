package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookplus/internal/modules/library/domain"
	libraryout "bookplus/internal/modules/library/port/out"
	"bookplus/internal/platform/sqlitedb"
)

type SQLiteBookProjector struct {
	db *sql.DB
}

func NewSQLiteBookProjector(dbPath string) (libraryout.BookIndexProjector, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	projector := &SQLiteBookProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteBookProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  slug TEXT NOT NULL,
  isbn TEXT,
  published_year INTEGER,
  file_path TEXT,
  format TEXT,
  last_session_id TEXT,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("reset books: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) UpsertBook(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (id, title, author, slug, isbn, published_year, file_path, format, last_session_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  author=excluded.author,
  slug=excluded.slug,
  isbn=excluded.isbn,
  published_year=excluded.published_year,
  file_path=excluded.file_path,
  format=excluded.format,
  last_session_id=excluded.last_session_id,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		book.ID,
		book.Title,
		book.Author,
		book.Slug,
		book.ISBN,
		book.PublishedYear,
		book.FilePath,
		string(book.Format),
		book.LastSessionID,
		book.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
