package in

import (
	"net/http"
	"strconv"

	"bookplus/internal/modules/profile/dto"
	profilein "bookplus/internal/modules/profile/port/in"
	"bookplus/internal/platform/httpapi"

	"github.com/labstack/echo/v4"
)

// HTTPHandler serves per-reader patterns and baselines under /api/users.
type HTTPHandler struct {
	usecase profilein.Usecase
}

func NewHTTPHandler(usecase profilein.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

func (h *HTTPHandler) Register(g *echo.Group) {
	g.POST("/users/:user/reading-patterns", h.recordPattern)
	g.GET("/users/:user/reading-patterns", h.listPatterns)
	g.GET("/users/:user/baseline", h.baseline)
	g.PUT("/users/:user/baseline", h.setBaseline)
	g.POST("/users/:user/baseline/learn", h.learn)
}

func (h *HTTPHandler) recordPattern(c echo.Context) error {
	var input dto.PatternInput
	if err := c.Bind(&input); err != nil {
		return httpapi.BadRequest("invalid reading pattern payload")
	}
	input.UserKey = c.Param("user")
	if err := h.usecase.RecordPattern(c.Request().Context(), input); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HTTPHandler) listPatterns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return httpapi.BadRequest("limit must be a non-negative integer")
		}
		limit = parsed
	}
	patterns, err := h.usecase.ListPatterns(c.Request().Context(), c.Param("user"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patterns)
}

func (h *HTTPHandler) baseline(c echo.Context) error {
	baseline, err := h.usecase.Baseline(c.Request().Context(), c.Param("user"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, baseline)
}

func (h *HTTPHandler) setBaseline(c echo.Context) error {
	var input dto.BaselineInput
	if err := c.Bind(&input); err != nil {
		return httpapi.BadRequest("invalid baseline payload")
	}
	input.UserKey = c.Param("user")
	baseline, err := h.usecase.SetBaseline(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, baseline)
}

func (h *HTTPHandler) learn(c echo.Context) error {
	out, err := h.usecase.LearnBaseline(c.Request().Context(), c.Param("user"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
