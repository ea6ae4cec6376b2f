package in

import (
	"context"

	"bookplus/internal/modules/library/dto"
)

type Usecase interface {
	AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error)
	UpdateBook(ctx context.Context, input dto.UpdateBookInput) (dto.BookOutput, error)
	DeleteBook(ctx context.Context, id string) (dto.DeleteOutput, error)
	ListBooks(ctx context.Context) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, id string) (dto.BookOutput, error)
	RecordSession(ctx context.Context, input dto.RecordSessionInput) (dto.BookOutput, error)
	Reindex(ctx context.Context, input dto.ReindexInput) error
}
