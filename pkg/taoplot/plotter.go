// Package taoplot runs a draw pass: it queries the simulator for a plot
// region, its graphs and curves, and the lattice layout or floor plan, and
// returns a Figure of ready-to-draw panels.
package taoplot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/floorplan"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/markup"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

const (
	DefaultPrefix      = "python"
	DefaultLayoutGraph = "r1.g"
	DefaultFloorGraph  = "r1.g"
)

// Option configures a Plotter.
type Option func(*Plotter)

// WithPrefix sets the command every query is sent behind. An empty prefix
// sends queries bare.
func WithPrefix(prefix string) Option {
	return func(p *Plotter) { p.prefix = prefix }
}

// WithLayoutGraph names the graph whose settings drive the layout panel.
func WithLayoutGraph(name string) Option {
	return func(p *Plotter) { p.layoutGraph = name }
}

// WithFloorGraph names the graph whose settings drive the floor plan panel.
func WithFloorGraph(name string) Option {
	return func(p *Plotter) { p.floorGraph = name }
}

// Plotter runs draw passes over one pipe. It holds no per-pass state, so a
// Plotter may be reused; concurrent passes need a pipe that serializes
// commands.
type Plotter struct {
	pipe        pipe.Pipe
	prefix      string
	layoutGraph string
	floorGraph  string
}

// New returns a Plotter that queries p.
func New(p pipe.Pipe, opts ...Option) *Plotter {
	pl := &Plotter{
		prefix:      DefaultPrefix,
		layoutGraph: DefaultLayoutGraph,
		floorGraph:  DefaultFloorGraph,
	}
	for _, opt := range opts {
		opt(pl)
	}
	pl.pipe = pipe.Prefixed(p, pl.prefix)
	return pl
}

// Table sends query and parses the response as a parameter table. An empty
// response is an *protocol.EmptyResponseError.
func (p *Plotter) Table(ctx context.Context, query string) (*protocol.Table, error) {
	resp, err := p.pipe.Cmd(ctx, query)
	if err != nil {
		return nil, err
	}
	return protocol.RequireTable(query, resp)
}

// optional sends a query the simulator may reject. A rejection reads as an
// empty response; cancellation and a dead pipe do not.
func (p *Plotter) optional(ctx context.Context, query string) (string, error) {
	resp, err := p.pipe.Cmd(ctx, query)
	if err == nil {
		return resp, nil
	}
	var ce *pipe.CommandError
	if errors.As(err, &ce) || errors.Is(err, pipe.ErrUnknownCommand) {
		Logger().Debug("optional query rejected", "query", query, "err", err)
		return "", nil
	}
	return "", err
}

// Plot runs a draw pass over region.
func (p *Plotter) Plot(ctx context.Context, region string) (*Figure, error) {
	rt, err := p.Table(ctx, "plot1 "+region)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", region, err)
	}
	n, err := rt.Int("num_graphs")
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", region, err)
	}

	fig := &Figure{Region: region}
	var (
		wantLayout, wantFloor bool
		layoutHead, floorHead *Panel
		shared                *Axes
	)
	for i := 1; i <= n; i++ {
		g, err := rt.Str(fmt.Sprintf("graph[%d]", i))
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", region, err)
		}
		panel, err := p.graph(ctx, region+"."+g)
		if err != nil {
			return nil, err
		}
		switch panel.Kind {
		case curve.KindData:
			wantLayout = true
			fallthrough
		case curve.KindPhaseSpace, curve.KindHistogram:
			if shared == nil {
				shared = &panel.Axes
			}
			fig.Panels = append(fig.Panels, *panel)
		case curve.KindLatLayout:
			wantLayout = true
			layoutHead = panel
		case curve.KindFloorPlan:
			wantFloor = true
			floorHead = panel
		default:
			Logger().Debug("graph type not drawn", "graph", panel.Name, "type", panel.Kind)
		}
	}

	if wantLayout {
		panel, err := p.latLayout(ctx, shared)
		if err != nil {
			return nil, err
		}
		adoptHeadings(panel, layoutHead)
		fig.Panels = append(fig.Panels, *panel)
	}
	if wantFloor {
		panel, err := p.floorPlan(ctx)
		if err != nil {
			return nil, err
		}
		adoptHeadings(panel, floorHead)
		fig.Panels = append(fig.Panels, *panel)
	}

	for _, d := range fig.Diagnostics() {
		Logger().Debug("skipped", "region", region, "item", d.String())
	}
	Logger().Info("draw pass done", "region", region, "panels", len(fig.Panels), "diagnostics", len(fig.Diagnostics()))
	return fig, nil
}

// adoptHeadings gives a layout or floor plan panel the titles of the graph
// in the region that asked for it.
func adoptHeadings(dst, src *Panel) {
	if src == nil {
		return
	}
	dst.Title, dst.XLabel, dst.YLabel = src.Title, src.XLabel, src.YLabel
}

// graph reads a graph's settings and, for graphs that carry curves, its
// series.
func (p *Plotter) graph(ctx context.Context, name string) (*Panel, error) {
	gt, err := p.Table(ctx, "plot_graph "+name)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", name, err)
	}
	panel, err := headings(gt)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", name, err)
	}
	panel.Name = name
	if !panel.Kind.HasCurves() {
		return panel, nil
	}

	nc := gt.IntOr("num_curves", 0)
	for i := 1; i <= nc; i++ {
		c, err := gt.Str(fmt.Sprintf("curve[%d]", i))
		if err != nil {
			panel.Layer.Note(i, "", err)
			continue
		}
		s, err := p.series(ctx, name+"."+c, c, panel.Kind)
		switch {
		case err == nil:
			panel.Series = append(panel.Series, s)
			panel.Layer.Add(s.Primitives()...)
			if s.Legend != "" {
				panel.Legend = panel.Legend || gt.BoolOr("draw_curve_legend", false)
			}
		case errors.Is(err, protocol.ErrLookupMiss), errors.Is(err, geom.ErrDegenerate):
			panel.Layer.Note(i, c, err)
		default:
			return nil, fmt.Errorf("graph %s: %w", name, err)
		}
	}
	return panel, nil
}

// headings reads the kind, titles and axes shared by every graph type.
func headings(gt *protocol.Table) (*Panel, error) {
	typ, err := gt.Str("graph^type")
	if err != nil {
		return nil, err
	}
	panel := &Panel{Kind: curve.Kind(strings.ToLower(typ))}

	title, err := translate(gt.StrOr("title", ""))
	if err != nil {
		return nil, err
	}
	if suffix := gt.StrOr("title_suffix", ""); suffix != "" {
		title = title + " " + suffix
	}
	panel.Title = title
	if panel.XLabel, err = translate(gt.StrOr("x.label", "")); err != nil {
		return nil, err
	}
	if panel.YLabel, err = translate(gt.StrOr("y.label", "")); err != nil {
		return nil, err
	}

	panel.Axes = Axes{
		XMin: gt.RealOr("x.min", 0),
		XMax: gt.RealOr("x.max", 0),
		YMin: gt.RealOr("y.min", 0),
		YMax: gt.RealOr("y.max", 0),
		XDiv: gt.IntOr("x.major_div", 0),
		YDiv: gt.IntOr("y.major_div", 0),
	}
	panel.Grid = gt.BoolOr("draw_grid", false)
	return panel, nil
}

func translate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return markup.Translate(s)
}

// series fetches one curve. path is graph.curve.
func (p *Plotter) series(ctx context.Context, path, name string, kind curve.Kind) (curve.Series, error) {
	ct, err := p.Table(ctx, "plot_curve "+path)
	if err != nil {
		return curve.Series{}, err
	}
	st, err := curve.StyleFromTable(ct)
	if err != nil {
		return curve.Series{}, err
	}
	if st.Legend, err = translate(st.Legend); err != nil {
		return curve.Series{}, err
	}
	c := curve.Curve{Name: name, Style: st}

	resp, err := p.optional(ctx, "plot_line "+path)
	if err != nil {
		return curve.Series{}, err
	}
	if c.Points, err = curve.ParsePoints(resp); err != nil {
		return curve.Series{}, err
	}

	if kind == curve.KindHistogram {
		resp, err := p.optional(ctx, "plot_histogram "+path)
		if err != nil {
			return curve.Series{}, err
		}
		ht, err := protocol.ParseTable("plot_histogram "+path, resp)
		if err != nil {
			return curve.Series{}, err
		}
		if c.Bins, err = ht.Int("number"); err != nil {
			return curve.Series{}, err
		}
	} else {
		resp, err := p.optional(ctx, "plot_symbol "+path)
		if err != nil {
			return curve.Series{}, err
		}
		if c.Markers, err = curve.ParseSymbols(resp); err != nil {
			return curve.Series{}, err
		}
	}
	return curve.Assemble(c, kind)
}

// latLayout builds the layout strip from the layout graph. shared, when set,
// are the axes of the first curve graph so the strip lines up with it.
func (p *Plotter) latLayout(ctx context.Context, shared *Axes) (*Panel, error) {
	name := p.layoutGraph
	lt, err := p.Table(ctx, "plot_graph "+name)
	if err != nil {
		return nil, fmt.Errorf("layout graph %s: %w", name, err)
	}
	panel, err := headings(lt)
	if err != nil {
		return nil, fmt.Errorf("layout graph %s: %w", name, err)
	}
	panel.Name, panel.Kind = name, curve.KindLatLayout
	panel.Grid = false
	if shared != nil {
		panel.Axes.XMin, panel.Axes.XMax = shared.XMin, shared.XMax
	}

	universe := lt.IntOr("ix_universe", -1)
	if universe == -1 {
		universe = 1
	}
	branch, err := lt.Int("-1^ix_branch")
	if err != nil {
		branch = lt.IntOr("ix_branch", 0)
	}

	resp, err := p.pipe.Cmd(ctx, "plot_shapes lat_layout")
	if err != nil {
		return nil, fmt.Errorf("layout shapes: %w", err)
	}
	if panel.Catalog, err = catalog.Parse("lat_layout", resp); err != nil {
		return nil, fmt.Errorf("layout shapes: %w", err)
	}

	resp, err = p.pipe.Cmd(ctx, fmt.Sprintf("plot_lat_layout %d@%d", universe, branch))
	if err != nil {
		return nil, fmt.Errorf("layout elements: %w", err)
	}
	elems, err := layout.ParseElements(resp)
	if err != nil {
		return nil, fmt.Errorf("layout elements: %w", err)
	}

	axis := layout.Axis{Min: lt.RealOr("x.min", 0), Max: lt.RealOr("x.max", 0)}
	panel.Layer.Add(layout.Baseline(axis))
	l := layout.Build(elems, axis).Layer()
	panel.Layer.Add(l.Primitives...)
	panel.Layer.Diagnostics = l.Diagnostics
	return panel, nil
}

// floorPlan builds the floor plan from the floor plan graph, with the orbit
// overlay when the graph asks for one.
func (p *Plotter) floorPlan(ctx context.Context) (*Panel, error) {
	name := p.floorGraph
	ft, err := p.Table(ctx, "plot_graph "+name)
	if err != nil {
		return nil, fmt.Errorf("floor plan graph %s: %w", name, err)
	}
	panel, err := headings(ft)
	if err != nil {
		return nil, fmt.Errorf("floor plan graph %s: %w", name, err)
	}
	panel.Name, panel.Kind = name, curve.KindFloorPlan
	panel.Grid = false

	resp, err := p.pipe.Cmd(ctx, "plot_shapes floor_plan")
	if err != nil {
		return nil, fmt.Errorf("floor plan shapes: %w", err)
	}
	if panel.Catalog, err = catalog.Parse("floor_plan", resp); err != nil {
		return nil, fmt.Errorf("floor plan shapes: %w", err)
	}

	resp, err = p.pipe.Cmd(ctx, "floor_plan "+name)
	if err != nil {
		return nil, fmt.Errorf("floor plan elements: %w", err)
	}
	elems, err := floorplan.ParseElements(resp)
	if err != nil {
		return nil, fmt.Errorf("floor plan elements: %w", err)
	}
	res := floorplan.Builder{Catalog: panel.Catalog}.Build(elems)

	if ft.RealOr("floor_plan_orbit_scale", 0) != 0 {
		resp, err := p.optional(ctx, "floor_orbit "+name)
		if err != nil {
			return nil, fmt.Errorf("floor orbit: %w", err)
		}
		if strings.TrimSpace(resp) != "" {
			o, err := floorplan.ParseOrbit(resp)
			if err != nil {
				return nil, fmt.Errorf("floor orbit: %w", err)
			}
			o.Color = strings.ToLower(ft.StrOr("floor_plan_orbit_color", "black"))
			res.WithOrbit(o)
		}
	}
	panel.Layer = res.Layer()
	return panel, nil
}
