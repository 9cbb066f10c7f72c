package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/raster"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
)

// Content types of the plot formats that are not JSON.
const (
	MIMEMsgpack = "application/msgpack"
	MIMEScene   = "application/x-otl-scene"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"sessions": s.sessions.IDs()})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	sess, err := s.sessions.Create(c.Request().Context())
	if errors.Is(err, ErrSessionLimit) {
		return NewConflictError("maximum number of sessions reached")
	}
	if err != nil {
		return NewServiceUnavailableError("failed to start simulator", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":      sess.ID,
		"created": sess.Created,
	})
}

func (s *Server) handleCloseSession(c echo.Context) error {
	id := c.Param("id")
	if !s.sessions.Close(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) session(c echo.Context) (*Session, error) {
	id := c.Param("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *Server) commandContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), s.cfg.CommandTimeout())
}

// handlePlot runs a draw pass and writes it as json (default), msgpack, png
// or sexp. The png format takes optional width and height.
func (s *Server) handlePlot(c echo.Context) error {
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "json"
	}
	switch format {
	case "json", "msgpack", "png", "sexp":
	default:
		return NewBadRequestError("unknown format "+strconv.Quote(format), nil)
	}
	opts := s.cfg.RasterOptions()
	if format == "png" {
		for _, q := range []struct {
			name string
			dst  *int
		}{{"width", &opts.Width}, {"height", &opts.Height}} {
			v := c.QueryParam(q.name)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return NewBadRequestError("invalid "+q.name, err)
			}
			*q.dst = n
		}
		if err := opts.Validate(); err != nil {
			return NewBadRequestError("invalid image options", err)
		}
	}

	sess, err := s.session(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.commandContext(c)
	defer cancel()
	fig, err := sess.Plot(ctx, c.Param("region"))
	if err != nil {
		return simulatorError(err)
	}

	switch format {
	case "msgpack":
		data, err := msgpack.Marshal(newFigureResponse(fig))
		if err != nil {
			return NewInternalError("failed to encode figure", err)
		}
		return c.Blob(http.StatusOK, MIMEMsgpack, data)
	case "png":
		var buf bytes.Buffer
		if err := raster.WritePNG(&buf, fig, opts); err != nil {
			return NewInternalError("failed to render figure", err)
		}
		return c.Blob(http.StatusOK, "image/png", buf.Bytes())
	case "sexp":
		var buf bytes.Buffer
		if err := scene.Encode(&buf, fig); err != nil {
			return NewInternalError("failed to encode figure", err)
		}
		return c.Blob(http.StatusOK, MIMEScene, buf.Bytes())
	default:
		return c.JSON(http.StatusOK, newFigureResponse(fig))
	}
}

// handleParams sends one query and returns the parsed table.
func (s *Server) handleParams(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return NewBadRequestError("query is required", nil)
	}
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.commandContext(c)
	defer cancel()
	t, err := sess.Table(ctx, query)
	if err != nil {
		return simulatorError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"query":  query,
		"params": newParamResponses(t),
	})
}
