package scene

import (
	"errors"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// DiagnosticError is a diagnostic read back from a scene file. It unwraps to
// geom.ErrDegenerate or protocol.ErrLookupMiss according to its class.
type DiagnosticError struct {
	Class   string
	Message string
}

func (e *DiagnosticError) Error() string { return e.Message }

func (e *DiagnosticError) Unwrap() error {
	switch e.Class {
	case ClassDegenerate:
		return geom.ErrDegenerate
	case ClassLookupMiss:
		return protocol.ErrLookupMiss
	}
	return nil
}

// Decode reads a figure written by Encode.
func Decode(r io.Reader) (*taoplot.Figure, error) {
	exprs, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, &SyntaxError{Line: 1, Msg: fmt.Sprintf("want one (figure ...) expression, got %d", len(exprs))}
	}
	root, ok := exprs[0].(*List)
	if !ok || root.Head() != "figure" {
		return nil, &SyntaxError{Line: 1, Msg: "not a figure"}
	}

	fig := &taoplot.Figure{}
	if reg, ok := root.Find("region"); ok {
		if fig.Region, err = reg.Text(0); err != nil {
			return nil, err
		}
	}
	for _, it := range root.Args() {
		l, ok := it.(*List)
		if !ok || l.Head() != "panel" {
			continue
		}
		p, err := decodePanel(l)
		if err != nil {
			return nil, err
		}
		fig.Panels = append(fig.Panels, p)
	}
	return fig, nil
}

// textOf returns the first argument of child key, or "" when absent.
func textOf(l *List, key string) (string, error) {
	c, ok := l.Find(key)
	if !ok {
		return "", nil
	}
	return c.Text(0)
}

func decodePanel(l *List) (taoplot.Panel, error) {
	var p taoplot.Panel
	var err error
	if p.Name, err = textOf(l, "name"); err != nil {
		return p, err
	}
	kind, err := textOf(l, "kind")
	if err != nil {
		return p, err
	}
	p.Kind = curve.Kind(kind)
	if p.Title, err = textOf(l, "title"); err != nil {
		return p, err
	}
	if p.XLabel, err = textOf(l, "xlabel"); err != nil {
		return p, err
	}
	if p.YLabel, err = textOf(l, "ylabel"); err != nil {
		return p, err
	}
	if ax, ok := l.Find("axes"); ok {
		if p.Axes, err = decodeAxes(ax); err != nil {
			return p, err
		}
	}
	p.Grid = l.Has("grid")
	p.Legend = l.Has("legend")

	for _, it := range l.Args() {
		c, ok := it.(*List)
		if !ok {
			continue
		}
		switch c.Head() {
		case "series":
			s, err := decodeSeries(c)
			if err != nil {
				return p, err
			}
			p.Series = append(p.Series, s)
		case "layer":
			for _, pi := range c.Args() {
				pl, ok := pi.(*List)
				if !ok {
					return p, c.errorf("layer holds a bare atom")
				}
				prim, err := decodePrimitive(pl)
				if err != nil {
					return p, err
				}
				p.Layer.Add(prim)
			}
		case "diagnostic":
			d, err := decodeDiagnostic(c)
			if err != nil {
				return p, err
			}
			p.Layer.Diagnostics = append(p.Layer.Diagnostics, d)
		}
	}
	return p, nil
}

func decodeAxes(l *List) (taoplot.Axes, error) {
	var a taoplot.Axes
	for _, axis := range []struct {
		key      string
		min, max *float64
		div      *int
	}{{"x", &a.XMin, &a.XMax, &a.XDiv}, {"y", &a.YMin, &a.YMax, &a.YDiv}} {
		c, ok := l.Find(axis.key)
		if !ok {
			continue
		}
		var err error
		if *axis.min, err = c.Float(0); err != nil {
			return a, err
		}
		if *axis.max, err = c.Float(1); err != nil {
			return a, err
		}
		if *axis.div, err = c.Int(2); err != nil {
			return a, err
		}
	}
	return a, nil
}

func decodeSeries(l *List) (curve.Series, error) {
	var s curve.Series
	var err error
	if s.Name, err = textOf(l, "name"); err != nil {
		return s, err
	}
	if s.Legend, err = textOf(l, "legend"); err != nil {
		return s, err
	}
	if c, ok := l.Find("polyline"); ok {
		line, err := decodePolyline(c)
		if err != nil {
			return s, err
		}
		s.Line = &line
	}
	if c, ok := l.Find("markers"); ok {
		m, err := decodeMarkers(c)
		if err != nil {
			return s, err
		}
		s.Markers = &m
	}
	if c, ok := l.Find("histogram"); ok {
		h, err := decodeHistogram(c)
		if err != nil {
			return s, err
		}
		s.Histogram = &h
	}
	return s, nil
}

func decodeHistogram(l *List) (curve.Histogram, error) {
	var h curve.Histogram
	var err error
	if c, ok := l.Find("dividers"); ok {
		if h.Dividers, err = c.Floats(); err != nil {
			return h, err
		}
	}
	if c, ok := l.Find("weights"); ok {
		if h.Weights, err = c.Floats(); err != nil {
			return h, err
		}
	}
	if len(h.Dividers) != len(h.Weights)+1 {
		return h, l.errorf("%d dividers for %d weights", len(h.Dividers), len(h.Weights))
	}
	if c, ok := l.Find("polyline"); ok {
		if h.Outline, err = decodePolyline(c); err != nil {
			return h, err
		}
	}
	return h, nil
}

func decodeDiagnostic(l *List) (geom.Diagnostic, error) {
	var d geom.Diagnostic
	c, ok := l.Find("index")
	if !ok {
		return d, l.errorf("missing index")
	}
	var err error
	if d.Index, err = c.Int(0); err != nil {
		return d, err
	}
	if d.Name, err = textOf(l, "name"); err != nil {
		return d, err
	}
	de := &DiagnosticError{}
	if de.Class, err = textOf(l, "class"); err != nil {
		return d, err
	}
	if de.Message, err = textOf(l, "message"); err != nil {
		return d, err
	}
	d.Err = de
	return d, nil
}

func decodePrimitive(l *List) (geom.Primitive, error) {
	switch l.Head() {
	case "line":
		a, err := pointOf(l, "a")
		if err != nil {
			return nil, err
		}
		b, err := pointOf(l, "b")
		if err != nil {
			return nil, err
		}
		st, err := decodeStyle(l)
		return geom.Line{A: a, B: b, Style: st}, err
	case "polyline":
		return decodePolyline(l)
	case "polygon":
		pts, st, err := pointsAndStyle(l)
		return geom.Polygon{Points: pts, Style: st}, err
	case "ellipse":
		return decodeEllipse(l)
	case "arc":
		return decodeArc(l)
	case "text":
		return decodeText(l)
	case "markers":
		return decodeMarkers(l)
	}
	return nil, l.errorf("unknown primitive")
}

func pointOf(l *List, key string) (geom.Position, error) {
	c, ok := l.Find(key)
	if !ok {
		return geom.Position{}, l.errorf("missing (%s x y)", key)
	}
	x, err := c.Float(0)
	if err != nil {
		return geom.Position{}, err
	}
	y, err := c.Float(1)
	return geom.Pt(x, y), err
}

func pointsAndStyle(l *List) ([]geom.Position, geom.Style, error) {
	st, err := decodeStyle(l)
	if err != nil {
		return nil, st, err
	}
	c, ok := l.Find("pts")
	if !ok {
		return nil, st, nil
	}
	vs, err := c.Floats()
	if err != nil {
		return nil, st, err
	}
	if len(vs)%2 != 0 {
		return nil, st, c.errorf("odd coordinate count %d", len(vs))
	}
	pts := make([]geom.Position, len(vs)/2)
	for i := range pts {
		pts[i] = geom.Pt(vs[2*i], vs[2*i+1])
	}
	return pts, st, nil
}

func decodePolyline(l *List) (geom.Polyline, error) {
	pts, st, err := pointsAndStyle(l)
	return geom.Polyline{Points: pts, Style: st}, err
}

func decodeEllipse(l *List) (geom.Ellipse, error) {
	var e geom.Ellipse
	var err error
	if e.Center, err = pointOf(l, "center"); err != nil {
		return e, err
	}
	size, err := pointOf(l, "size")
	if err != nil {
		return e, err
	}
	e.Width, e.Height = size.X, size.Y
	if _, ok := l.Find("clip"); ok {
		span, err := pointOf(l, "clip")
		if err != nil {
			return e, err
		}
		e.Clip = &geom.Span{Min: span.X, Max: span.Y}
	}
	e.Style, err = decodeStyle(l)
	return e, err
}

func decodeArc(l *List) (geom.Arc, error) {
	var a geom.Arc
	var err error
	if a.Center, err = pointOf(l, "center"); err != nil {
		return a, err
	}
	c, ok := l.Find("radius")
	if !ok {
		return a, l.errorf("missing radius")
	}
	if a.Radius, err = c.Float(0); err != nil {
		return a, err
	}
	ang, err := pointOf(l, "angles")
	if err != nil {
		return a, err
	}
	a.Start, a.End = ang.X, ang.Y
	a.Style, err = decodeStyle(l)
	return a, err
}

func decodeText(l *List) (geom.Text, error) {
	var t geom.Text
	var err error
	if t.Text, err = l.Text(0); err != nil {
		return t, err
	}
	if t.At, err = pointOf(l, "at"); err != nil {
		return t, err
	}
	h, err := textOf(l, "halign")
	if err != nil {
		return t, err
	}
	v, err := textOf(l, "valign")
	if err != nil {
		return t, err
	}
	t.HAlign, t.VAlign = geom.HAlign(h), geom.VAlign(v)
	if c, ok := l.Find("rotation"); ok {
		if t.Rotation, err = c.Float(0); err != nil {
			return t, err
		}
	}
	t.Style, err = decodeStyle(l)
	return t, err
}

func decodeMarkers(l *List) (geom.Markers, error) {
	var m geom.Markers
	var err error
	if m.Symbol, err = textOf(l, "symbol"); err != nil {
		return m, err
	}
	if m.Symbol != "" {
		if _, err := curve.ParseCode(m.Symbol); err != nil {
			return m, l.errorf("%v", err)
		}
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{{"size", &m.Size}, {"edge", &m.EdgeWidth}} {
		if c, ok := l.Find(f.key); ok {
			if *f.dst, err = c.Float(0); err != nil {
				return m, err
			}
		}
	}
	m.Points, m.Style, err = pointsAndStyle(l)
	return m, err
}

func decodeStyle(l *List) (geom.Style, error) {
	var st geom.Style
	c, ok := l.Find("style")
	if !ok {
		return st, nil
	}
	var err error
	if st.Color, err = textOf(c, "color"); err != nil {
		return st, err
	}
	if st.Dash, err = textOf(c, "dash"); err != nil {
		return st, err
	}
	if st.Fill, err = textOf(c, "fill"); err != nil {
		return st, err
	}
	if w, ok := c.Find("width"); ok {
		if st.Width, err = w.Float(0); err != nil {
			return st, err
		}
	}
	st.Hidden = c.Has("hidden")
	return st, nil
}

// IsSyntax reports whether err came from malformed scene input.
func IsSyntax(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
