package usecase

import (
	"context"

	"bookplus/internal/modules/library/domain"
	"bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
	"bookplus/internal/modules/library/service"
)

type Interactor struct {
	svc *service.BookService
}

func NewInteractor(svc *service.BookService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	book, _, err := i.svc.Add(ctx, input.BookInput)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) UpdateBook(ctx context.Context, input dto.UpdateBookInput) (dto.BookOutput, error) {
	book, _, err := i.svc.Update(ctx, input.ID, input.BookInput)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) DeleteBook(ctx context.Context, id string) (dto.DeleteOutput, error) {
	book, err := i.svc.Delete(ctx, id)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return dto.DeleteOutput{ID: book.ID, Title: book.Title}, nil
}

func (i *Interactor) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	books, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toOutput(book))
	}
	return out, nil
}

func (i *Interactor) GetBook(ctx context.Context, id string) (dto.BookOutput, error) {
	book, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) RecordSession(ctx context.Context, input dto.RecordSessionInput) (dto.BookOutput, error) {
	book, err := i.svc.RecordSession(ctx, input.BookID, input.SessionID)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) Reindex(ctx context.Context, _ dto.ReindexInput) error {
	return i.svc.Reindex(ctx)
}

func toOutput(book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		ISBN:          book.ISBN,
		PublishedYear: book.PublishedYear,
		FilePath:      book.FilePath,
		Format:        string(book.Format),
		NotePath:      book.NotePath,
		AddedAt:       book.AddedAt,
		UpdatedAt:     book.UpdatedAt,
		LastSessionID: book.LastSessionID,
	}
}
