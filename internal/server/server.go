package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookplus/internal/platform/httpapi"
	"bookplus/internal/platform/logging"
	"bookplus/internal/platform/metrics"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes is implemented by each module's HTTP handler.
type Routes interface {
	Register(g *echo.Group)
}

type Server struct {
	echo   *echo.Echo
	addr   string
	logger hclog.Logger
}

func New(addr string, logger hclog.Logger, registry *metrics.Registry, routes ...Routes) *Server {
	logger = logging.OrDiscard(logger).Named("server")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = httpapi.ErrorHandler(logger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	if registry != nil {
		e.Use(countRequests(registry))
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry.Gatherer(), promhttp.HandlerOpts{})))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, httpapi.MessageBody{Message: "Welcome to Book Plus AI API"})
	})
	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
	})
	for _, r := range routes {
		r.Register(api)
	}
	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// countRequests labels by route template so ids do not explode cardinality.
func countRequests(registry *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			code := c.Response().Status
			if err != nil {
				code = httpapi.Status(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			registry.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
			return err
		}
	}
}
