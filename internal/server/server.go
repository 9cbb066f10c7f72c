// Package server exposes simulator sessions and their draw passes over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/OpenTraceLab/OpenTraceLattice/internal/config"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	version  string
	sessions *Manager
	echo     *echo.Echo
}

// New builds a server whose sessions are opened by start.
func New(cfg *config.Config, version string, start Starter) *Server {
	s := &Server{
		cfg:      cfg,
		version:  version,
		sessions: NewManager(start, cfg.Server.MaxSessions, cfg.PlotOptions()...),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Server.EnableRequestLogging || c.Path() == "/health"
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log := taoplot.Logger()
			if v.Error != nil {
				log.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))

	s.echo = e
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api/sessions")
	api.GET("", s.handleListSessions)
	api.POST("", s.handleCreateSession)
	api.DELETE("/:id", s.handleCloseSession)
	api.GET("/:id/plot/:region", s.handlePlot)
	api.GET("/:id/params", s.handleParams)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Sessions returns the session manager.
func (s *Server) Sessions() *Manager { return s.sessions }

// Run serves on the configured address until ctx is cancelled, then closes
// every session.
func (s *Server) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	idle := s.cfg.SessionIdle()
	go s.sessions.Run(sweepCtx, idle/4, idle)

	errc := make(chan error, 1)
	go func() {
		taoplot.Logger().Info("listening", "address", s.cfg.Server.Address)
		errc <- s.echo.Start(s.cfg.Server.Address)
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s.echo.Shutdown(shutdownCtx)
		cancel()
	}
	s.sessions.CloseAll()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
