package in

import (
	"net/http"
	"strconv"

	"bookplus/internal/modules/content/dto"
	contentin "bookplus/internal/modules/content/port/in"
	"bookplus/internal/platform/httpapi"

	"github.com/labstack/echo/v4"
)

// HTTPHandler exposes the unit contracts of a book.
type HTTPHandler struct {
	usecase contentin.Usecase
}

func NewHTTPHandler(usecase contentin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) Register(g *echo.Group) {
	g.GET("/books/:id/units", h.count)
	g.GET("/books/:id/units/:index", h.text)
	g.GET("/books/:id/units/:index/analysis", h.analysis)
	g.GET("/books/:id/units/:index/adaptive", h.adaptive)
}

func (h *HTTPHandler) count(c echo.Context) error {
	out, err := h.usecase.UnitCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) text(c echo.Context) error {
	index, err := unitIndex(c)
	if err != nil {
		return err
	}
	out, err := h.usecase.UnitText(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) analysis(c echo.Context) error {
	index, err := unitIndex(c)
	if err != nil {
		return err
	}
	out, err := h.usecase.UnitAnalysis(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) adaptive(c echo.Context) error {
	index, err := unitIndex(c)
	if err != nil {
		return err
	}
	out, err := h.usecase.AdaptiveVariant(c.Request().Context(), dto.VariantInput{
		BookID:  c.Param("id"),
		Index:   index,
		Version: c.QueryParam("version"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func unitIndex(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return 0, httpapi.BadRequest("invalid unit index %q", c.Param("index"))
	}
	return index, nil
}
