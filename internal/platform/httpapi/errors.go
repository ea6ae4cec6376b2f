// Package httpapi holds the HTTP conventions shared by module handlers:
// error bodies are {"detail": "..."} and application errors map to status
// codes by sentinel.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

type ErrorBody struct {
	Detail string `json:"detail"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func Status(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrActiveSessionExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders errors as JSON details and logs server errors.
func ErrorHandler(logger hclog.Logger) echo.HTTPErrorHandler {
	logger = logging.OrDiscard(logger)
	return func(err error, c echo.Context) {
		code := Status(err)
		detail := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Message != nil {
			detail = fmt.Sprint(he.Message)
		}
		req := c.Request()
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "code", code, "error", err)
			detail = http.StatusText(code)
		} else {
			logger.Debug("request rejected", "method", req.Method, "path", req.URL.Path, "code", code, "error", err)
		}
		if c.Response().Committed {
			return
		}
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, ErrorBody{Detail: detail})
	}
}

// BadRequest wraps a decoding problem as a 400.
func BadRequest(format string, args ...any) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}
