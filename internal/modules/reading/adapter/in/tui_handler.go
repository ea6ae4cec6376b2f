package in

import (
	"context"

	"bookplus/internal/modules/reading/dto"
	readingin "bookplus/internal/modules/reading/port/in"
)

type TUIHandler struct {
	usecase readingin.Usecase
}

func NewTUIHandler(usecase readingin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, bookID, bookTitle string) (readingin.Surface, error) {
	return h.usecase.Open(ctx, dto.OpenInput{BookID: bookID, BookTitle: bookTitle})
}
