package in

import (
	"fmt"
	"net/http"

	"bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
	"bookplus/internal/platform/httpapi"

	"github.com/labstack/echo/v4"
)

// HTTPHandler serves the book catalog under /api/books.
type HTTPHandler struct {
	usecase libraryin.Usecase
}

func NewHTTPHandler(usecase libraryin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) Register(g *echo.Group) {
	g.GET("/books", h.list)
	g.POST("/books", h.create)
	g.GET("/books/:id", h.get)
	g.PUT("/books/:id", h.update)
	g.DELETE("/books/:id", h.delete)
}

func (h *HTTPHandler) list(c echo.Context) error {
	books, err := h.usecase.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *HTTPHandler) get(c echo.Context) error {
	book, err := h.usecase.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *HTTPHandler) create(c echo.Context) error {
	var input dto.BookInput
	if err := c.Bind(&input); err != nil {
		return httpapi.BadRequest("invalid book payload")
	}
	book, err := h.usecase.AddBook(c.Request().Context(), dto.AddBookInput{BookInput: input})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *HTTPHandler) update(c echo.Context) error {
	var input dto.BookInput
	if err := c.Bind(&input); err != nil {
		return httpapi.BadRequest("invalid book payload")
	}
	book, err := h.usecase.UpdateBook(c.Request().Context(), dto.UpdateBookInput{ID: c.Param("id"), BookInput: input})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *HTTPHandler) delete(c echo.Context) error {
	deleted, err := h.usecase.DeleteBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, httpapi.MessageBody{Message: fmt.Sprintf("Book '%s' deleted successfully", deleted.Title)})
}
