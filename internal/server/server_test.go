package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/OpenTraceLattice/internal/config"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
)

const dataGraph = `graph^type;ENUM;F;data
title;STR;T;Orbit
x.label;STR;T;s (m)
x.min;REAL;T;0
x.max;REAL;T;100
y.min;REAL;T;-1
y.max;REAL;T;1
x.major_div;INT;T;4
y.major_div;INT;T;2
num_curves;INT;F;2
curve[1];STR;F;c1
curve[2];STR;F;c2
`

const curveStyle = `line.color;ENUM;T;Blue
line.pattern;ENUM;T;solid
line.width;INT;T;2
symbol.color;ENUM;T;Blue
symbol.fill_pattern;ENUM;T;solid_fill
symbol.height;REAL;T;6.0
symbol.type;ENUM;T;dot
symbol.line_width;INT;T;1
draw_symbols;LOGIC;T;T
legend_text;STR;T;x orbit
`

const layoutGraph = `graph^type;ENUM;F;lat_layout
x.min;REAL;T;0
x.max;REAL;T;100
y.min;REAL;T;-5
y.max;REAL;T;5
ix_universe;INT;F;-1
-1^ix_branch;INT;F;0
`

func newSim() *pipe.Sim {
	sim := pipe.NewSim(map[string]string{
		"python plot1 top":              "num_graphs;INT;F;1\ngraph[1];STR;F;x\n",
		"python plot_graph top.x":       dataGraph,
		"python plot_curve top.x.c1":    curveStyle,
		"python plot_line top.x.c1":     "1;0;0.5\n2;50;-0.5\n",
		"python plot_curve top.x.c2":    "line.color;ENUM;T;Red\n",
		"python plot_graph r1.g":        layoutGraph,
		"python plot_shapes lat_layout": "1;QUADRUPOLE::*;box;Blue;0.5;T;Quad\n",
		"python plot_lat_layout 1@0":    "1;10;20;1;box;1;1;blue;Q1\n2;40;50;1;hexagon;1;1;red;H\n",
		"python empty":                  "",
	})
	sim.Reject("python plot_symbol top.x.c1", "[ERROR | tao_python_cmd] no symbol data")
	sim.Reject("python plot1 bad", "[ERROR | tao_python_cmd] no such region")
	return sim
}

type harness struct {
	srv  *Server
	sims []*pipe.Sim
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.EnableRequestLogging = false
	cfg.Render.Width, cfg.Render.Height = 320, 240
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{}
	h.srv = New(cfg, "test", func(context.Context) (Conn, error) {
		sim := newSim()
		h.sims = append(h.sims, sim)
		return sim, nil
	})
	t.Cleanup(h.srv.Sessions().CloseAll)
	return h
}

func (h *harness) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (h *harness) createSession(t *testing.T) string {
	t.Helper()
	rec := h.do(http.MethodPost, "/api/sessions")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	id, ok := body["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func apiError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	id := h.createSession(t)

	rec := h.do(http.MethodGet, "/api/sessions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = h.do(http.MethodDelete, "/api/sessions/"+id)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := h.sims[0].Cmd(context.Background(), "python plot1 top")
	assert.ErrorIs(t, err, pipe.ErrClosed, "closing a session closes its simulator")

	rec = h.do(http.MethodDelete, "/api/sessions/"+id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", apiError(t, rec).Code)
}

func TestSessionLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Server.MaxSessions = 1 })
	h.createSession(t)

	rec := h.do(http.MethodPost, "/api/sessions")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", apiError(t, rec).Code)
	assert.Len(t, h.sims, 1, "no simulator is started past the limit")
}

func TestStarterFailure(t *testing.T) {
	srv := New(config.DefaultConfig(), "test", func(context.Context) (Conn, error) {
		return nil, errors.New("tao: executable not found")
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	e := apiError(t, rec)
	assert.Equal(t, "SERVICE_UNAVAILABLE", e.Code)
	assert.Contains(t, e.Details, "executable not found")
}

func TestPlotJSON(t *testing.T) {
	h := newHarness(t, nil)
	id := h.createSession(t)

	rec := h.do(http.MethodGet, "/api/sessions/"+id+"/plot/top")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fig FigureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	assert.Equal(t, "top", fig.Region)
	require.Len(t, fig.Panels, 2)

	data := fig.Panels[0]
	assert.Equal(t, "data", data.Kind)
	assert.Equal(t, "Orbit", data.Title)
	assert.Equal(t, [4]float64{0, -1, 100, 1}, data.Frame)
	require.Len(t, data.Series, 1)
	assert.Equal(t, "c1", data.Series[0].Name)
	require.Len(t, data.Diagnostics, 1)
	assert.Equal(t, scene.ClassLookupMiss, data.Diagnostics[0].Class)

	lay := fig.Panels[1]
	assert.Equal(t, "lat_layout", lay.Kind)
	require.NotEmpty(t, lay.Primitives)
	assert.Equal(t, "line", lay.Primitives[0].Type)
	assert.Len(t, lay.Primitives[0].Points, 2)
}

func TestPlotFormats(t *testing.T) {
	h := newHarness(t, nil)
	id := h.createSession(t)
	base := "/api/sessions/" + id + "/plot/top?format="

	t.Run("msgpack", func(t *testing.T) {
		rec := h.do(http.MethodGet, base+"msgpack")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, MIMEMsgpack, rec.Header().Get("Content-Type"))
		var fig FigureResponse
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &fig))
		assert.Len(t, fig.Panels, 2)
	})

	t.Run("png", func(t *testing.T) {
		rec := h.do(http.MethodGet, base+"png&width=200&height=150")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 150, img.Bounds().Dy())
	})

	t.Run("sexp", func(t *testing.T) {
		rec := h.do(http.MethodGet, base+"sexp")
		require.Equal(t, http.StatusOK, rec.Code)
		fig, err := scene.Decode(rec.Body)
		require.NoError(t, err)
		assert.Len(t, fig.Panels, 2)
	})
}

func TestPlotErrors(t *testing.T) {
	h := newHarness(t, nil)
	id := h.createSession(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown session", "/api/sessions/nope/plot/top", http.StatusNotFound, "NOT_FOUND"},
		{"unknown format", "/api/sessions/" + id + "/plot/top?format=svg", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad width", "/api/sessions/" + id + "/plot/top?format=png&width=wide", http.StatusBadRequest, "BAD_REQUEST"},
		{"zero height", "/api/sessions/" + id + "/plot/top?format=png&height=0", http.StatusBadRequest, "BAD_REQUEST"},
		{"rejected region", "/api/sessions/" + id + "/plot/bad", http.StatusUnprocessableEntity, "COMMAND_REJECTED"},
		{"unknown region", "/api/sessions/" + id + "/plot/missing", http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, apiError(t, rec).Code)
		})
	}
}

func TestParams(t *testing.T) {
	h := newHarness(t, nil)
	id := h.createSession(t)

	rec := h.do(http.MethodGet, "/api/sessions/"+id+"/params?query=plot_graph+top.x")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Query  string          `json:"query"`
		Params []ParamResponse `json:"params"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "plot_graph top.x", body.Query)
	require.NotEmpty(t, body.Params)
	first := body.Params[0]
	assert.Equal(t, "graph^type", first.Name)
	assert.Equal(t, "ENUM", first.Type)
	assert.Equal(t, "data", first.Value)
	require.NotNil(t, first.Settable)
	assert.False(t, *first.Settable)
	assert.Equal(t, "python plot_graph top.x", h.sims[0].LastCommand())

	rec = h.do(http.MethodGet, "/api/sessions/"+id+"/params")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/sessions/"+id+"/params?query=empty")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "EMPTY_RESPONSE", apiError(t, rec).Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(http.MethodGet, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP_ERROR", apiError(t, rec).Code)
}

func TestSweep(t *testing.T) {
	var sims []*pipe.Sim
	m := NewManager(func(context.Context) (Conn, error) {
		sim := pipe.NewSim(nil)
		sims = append(sims, sim)
		return sim, nil
	}, 4)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old, err := m.Create(context.Background())
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	fresh, err := m.Create(context.Background())
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)

	_, err = sims[0].Cmd(context.Background(), "x")
	assert.ErrorIs(t, err, pipe.ErrClosed)

	now = now.Add(29 * time.Minute)
	assert.Zero(t, m.Sweep(30*time.Minute), "Get refreshed the session")

	m.CloseAll()
	assert.Zero(t, m.Len())
}

func TestSimulatorErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&pipe.CommandError{Command: "x", Output: "[ERROR] no"}, http.StatusUnprocessableEntity},
		{pipe.ErrClosed, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, simulatorError(tt.err).Status, "%v", tt.err)
	}
}
