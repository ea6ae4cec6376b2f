package out

import (
	"context"

	"bookplus/internal/modules/content/domain"
	contentout "bookplus/internal/modules/content/port/out"
	libraryin "bookplus/internal/modules/library/port/in"
)

type LibraryBookResolver struct {
	library libraryin.Usecase
}

func NewLibraryBookResolver(library libraryin.Usecase) contentout.BookResolver {
	return &LibraryBookResolver{library: library}
}

func (r *LibraryBookResolver) Resolve(ctx context.Context, bookID string) (domain.BookRef, error) {
	book, err := r.library.GetBook(ctx, bookID)
	if err != nil {
		return domain.BookRef{}, err
	}
	return domain.BookRef{
		ID:       book.ID,
		Title:    book.Title,
		FilePath: book.FilePath,
		Format:   book.Format,
	}, nil
}
