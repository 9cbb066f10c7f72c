// Package curve assembles the x-y series of data, phase space and histogram
// graphs from the simulator's per-curve style table and point listings.
package curve

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// Kind is the graph^type of the graph a curve belongs to.
type Kind string

const (
	KindData       Kind = "data"
	KindPhaseSpace Kind = "phase_space"
	KindHistogram  Kind = "histogram"
	KindLatLayout  Kind = "lat_layout"
	KindFloorPlan  Kind = "floor_plan"
)

// HasCurves reports whether graphs of this kind carry curves.
func (k Kind) HasCurves() bool {
	return k == KindData || k == KindPhaseSpace || k == KindHistogram
}

// Style is the raw drawing style of a curve as the simulator reports it.
type Style struct {
	LineColor       string
	LinePattern     string
	LineWidth       float64
	MarkerColor     string
	MarkerFill      string // marker color, or "none"
	MarkerSize      float64
	MarkerSymbol    Symbol
	MarkerEdgeWidth float64
	Legend          string
}

// StyleFromTable reads a plot_curve table. Missing keys are lookup misses.
func StyleFromTable(t *protocol.Table) (Style, error) {
	var s Style
	var err error
	if s.LineColor, err = t.Str("line.color"); err != nil {
		return s, err
	}
	if s.LinePattern, err = t.Str("line.pattern"); err != nil {
		return s, err
	}
	if s.LineWidth, err = t.Real("line.width"); err != nil {
		return s, err
	}
	if s.MarkerColor, err = t.Str("symbol.color"); err != nil {
		return s, err
	}
	fill, err := t.Str("symbol.fill_pattern")
	if err != nil {
		return s, err
	}
	s.MarkerFill = "none"
	if strings.EqualFold(fill, "solid_fill") {
		s.MarkerFill = s.MarkerColor
	}
	draw, err := t.Bool("draw_symbols")
	if err != nil {
		return s, err
	}
	if draw {
		if s.MarkerSize, err = t.Real("symbol.height"); err != nil {
			return s, err
		}
		if s.MarkerEdgeWidth, err = t.Real("symbol.line_width"); err != nil {
			return s, err
		}
	}
	typ, err := t.Str("symbol.type")
	if err != nil {
		return s, err
	}
	if s.MarkerSymbol, err = LookupSymbol(typ); err != nil {
		return s, err
	}
	s.Legend = t.StrOr("legend_text", "")

	s.LineColor = strings.ToLower(s.LineColor)
	s.LinePattern = strings.ToLower(s.LinePattern)
	s.MarkerColor = strings.ToLower(s.MarkerColor)
	s.MarkerFill = strings.ToLower(s.MarkerFill)
	return s, nil
}

// Curve is one curve's data before assembly.
type Curve struct {
	Name    string
	Points  []geom.Position // plot_line
	Markers []geom.Position // plot_symbol
	Style   Style
	Bins    int // histogram bin count, from plot_histogram "number"
}

// Series is one assembled curve, ready to draw. Line widths, marker sizes
// and edge widths are already halved.
type Series struct {
	Name      string
	Legend    string
	Line      *geom.Polyline
	Markers   *geom.Markers
	Histogram *Histogram
}

// Primitives lists what the series draws, line first.
func (s Series) Primitives() []geom.Primitive {
	var out []geom.Primitive
	if s.Line != nil {
		out = append(out, *s.Line)
	}
	if s.Markers != nil {
		out = append(out, *s.Markers)
	}
	if s.Histogram != nil {
		out = append(out, s.Histogram.Outline)
	}
	return out
}

// Bounds covers every point the series draws.
func (s Series) Bounds() geom.BoundingBox {
	bb := geom.NewBoundingBox()
	for _, p := range s.Primitives() {
		bb.ExpandBox(p.Bounds())
	}
	return bb
}

// SortPoints orders points by x, then y.
func SortPoints(pts []geom.Position) {
	slices.SortFunc(pts, func(a, b geom.Position) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
}

// Assemble turns c into a Series for a graph of kind k. Points and markers
// are sorted in place.
func Assemble(c Curve, k Kind) (Series, error) {
	SortPoints(c.Points)
	SortPoints(c.Markers)

	st := c.Style
	s := Series{Name: c.Name, Legend: st.Legend}
	line := &geom.Polyline{
		Points: c.Points,
		Style:  geom.Style{Color: st.LineColor, Width: st.LineWidth / 2, Dash: st.LinePattern},
	}
	markers := &geom.Markers{
		Points:    c.Markers,
		Symbol:    st.MarkerSymbol.Code,
		Size:      st.MarkerSize / 2,
		EdgeWidth: st.MarkerEdgeWidth / 2,
		Style:     geom.Style{Color: st.MarkerColor, Fill: st.MarkerFill},
	}

	switch k {
	case KindData:
		s.Line, s.Markers = line, markers
	case KindPhaseSpace:
		if len(c.Points) > 0 {
			s.Line = line
		}
		s.Markers = markers
	case KindHistogram:
		h, err := NewHistogram(c.Points, c.Bins)
		if err != nil {
			return Series{}, fmt.Errorf("curve %s: %w", c.Name, err)
		}
		h.Outline.Style = geom.Style{Color: st.MarkerColor, Width: 1}
		s.Histogram = &h
	default:
		return Series{}, fmt.Errorf("curve %s: graph type %q has no curves", c.Name, k)
	}
	return s, nil
}

// ParsePoints decodes a plot_line response: index;x;y
func ParsePoints(text string) ([]geom.Position, error) {
	return parseXY("plot_line", text, 1)
}

// ParseSymbols decodes a plot_symbol response: index;ix;x;y
func ParseSymbols(text string) ([]geom.Position, error) {
	return parseXY("plot_symbol", text, 2)
}

func parseXY(query, text string, xField int) ([]geom.Position, error) {
	recs := protocol.Records(query, text)
	out := make([]geom.Position, 0, len(recs))
	for _, rec := range recs {
		x, err := rec.Real(xField)
		if err != nil {
			return nil, err
		}
		y, err := rec.Real(xField + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, geom.Pt(x, y))
	}
	return out, nil
}
