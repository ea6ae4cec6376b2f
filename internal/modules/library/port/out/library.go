package out

import (
	"context"

	"bookplus/internal/modules/library/domain"
)

type BookStore interface {
	Save(ctx context.Context, document domain.BookDocument) (string, error)
	FindByID(ctx context.Context, id string) (domain.BookDocument, error)
	List(ctx context.Context) ([]domain.BookDocument, error)
	Delete(ctx context.Context, id string) error
}

type BookIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertBook(ctx context.Context, book domain.Book) error
	DeleteBook(ctx context.Context, id string) error
}
