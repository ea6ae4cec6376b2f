package in

import (
	"context"

	"bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddBook(ctx context.Context, input dto.BookInput) (dto.BookOutput, error) {
	return h.usecase.AddBook(ctx, dto.AddBookInput{BookInput: input})
}

func (h CLIHandler) UpdateBook(ctx context.Context, id string, input dto.BookInput) (dto.BookOutput, error) {
	return h.usecase.UpdateBook(ctx, dto.UpdateBookInput{ID: id, BookInput: input})
}

func (h CLIHandler) DeleteBook(ctx context.Context, id string) (dto.DeleteOutput, error) {
	return h.usecase.DeleteBook(ctx, id)
}

func (h CLIHandler) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx)
}

func (h CLIHandler) GetBook(ctx context.Context, id string) (dto.BookOutput, error) {
	return h.usecase.GetBook(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx, dto.ReindexInput{})
}
