package floorplan

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/layout"
)

// labelOffset places the name outside the outer edge, in outer half-widths.
const labelOffset = 1.3

// Drawn is the geometry of one element.
type Drawn struct {
	Index      int
	Name       string
	Type       string
	Curved     bool
	Primitives []geom.Primitive
}

// Result holds drawn elements in input order, the optional orbit and the
// diagnostics gathered on the way.
type Result struct {
	Elements    []Drawn
	Orbit       *geom.Polyline
	Diagnostics []geom.Diagnostic
}

// Layer flattens the result. The orbit is drawn last.
func (r Result) Layer() geom.Layer {
	var l geom.Layer
	for _, d := range r.Elements {
		l.Add(d.Primitives...)
	}
	if r.Orbit != nil {
		l.Add(*r.Orbit)
	}
	l.Diagnostics = append(l.Diagnostics, r.Diagnostics...)
	return l
}

// Builder turns floor plan elements into primitives. Catalog, when set,
// supplies the shape or color of elements whose record leaves them blank.
type Builder struct {
	Catalog *catalog.Catalog
}

// Build lays out every element. Elements with no color are not drawn; lookup
// misses skip the element and degenerate bends fall back to straight edges,
// both with a diagnostic.
func (b Builder) Build(elems []Element) Result {
	var res Result
	for _, e := range elems {
		e, ok := b.resolve(e, &res)
		if !ok {
			continue
		}
		d, diag := BuildElement(e)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, geom.Diagnostic{Index: e.Index, Name: e.Name, Err: diag})
		}
		if len(d.Primitives) > 0 {
			res.Elements = append(res.Elements, d)
		}
	}
	return res
}

// WithOrbit attaches the orbit overlay.
func (r *Result) WithOrbit(o Orbit) {
	pl := o.Polyline()
	r.Orbit = &pl
}

// resolve fills blank shape and color from the catalog.
func (b Builder) resolve(e Element, res *Result) (Element, bool) {
	if e.Color == "" {
		if b.Catalog == nil {
			return e, false
		}
		c, err := b.Catalog.Color(e.Type)
		if err != nil || c == "" {
			return e, false
		}
		e.Color = c
	}
	if e.Shape == "" && !e.centerline() && !e.IsBend() {
		if b.Catalog == nil {
			res.Diagnostics = append(res.Diagnostics, geom.Diagnostic{
				Index: e.Index, Name: e.Name,
				Err: &catalog.LookupMissError{Table: "shape", Key: e.Type},
			})
			return e, false
		}
		s, err := b.Catalog.Shape(e.Type)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, geom.Diagnostic{Index: e.Index, Name: e.Name, Err: err})
			return e, false
		}
		e.Shape = s
	}
	return e, true
}

// Build lays out elems without a catalog.
func Build(elems []Element) Result { return Builder{}.Build(elems) }

func (e Element) centerline() bool {
	return e.Outer == 0 && e.Inner == 0 && !e.IsBend()
}

// BuildElement computes the primitives of one element. The returned error is
// a diagnostic: a lookup miss leaves Drawn empty, geom.ErrDegenerate comes
// with the straight fallback outline.
func BuildElement(e Element) (Drawn, error) {
	d := Drawn{Index: e.Index, Name: e.Name, Type: e.Type}
	if e.Color == "" {
		return d, nil
	}
	style := geom.Style{Color: e.Color, Width: e.LineWidth}

	var diag error
	switch {
	case e.centerline():
		d.Primitives = append(d.Primitives, geom.Line{A: e.Start.Position, B: e.End.Position, Style: style})
	case e.IsBend():
		d.Curved = true
		var prims []geom.Primitive
		prims, diag = bendOutline(e, style)
		d.Primitives = append(d.Primitives, prims...)
		if diag != nil {
			d.Curved = false
		}
	default:
		shape, err := layout.ParseShape(e.Shape)
		if err != nil {
			return d, err
		}
		d.Primitives = append(d.Primitives, straightOutline(e, shape, style)...)
	}

	if e.Name != "" {
		d.Primitives = append(d.Primitives, label(e))
	}
	return d, diag
}

// straightOutline draws a symbol along the chord, using the start heading for
// both ends.
func straightOutline(e Element, shape layout.Shape, style geom.Style) []geom.Primitive {
	s, en := e.Start.Position, e.End.Position
	p := geom.Perp(e.Start.Angle)
	sIn, sOut := s.Add(p.Scale(e.Inner)), s.Sub(p.Scale(e.Outer))
	eIn, eOut := en.Add(p.Scale(e.Inner)), en.Sub(p.Scale(e.Outer))
	seg := func(a, b geom.Position) geom.Primitive { return geom.Line{A: a, B: b, Style: style} }
	diagonals := []geom.Primitive{seg(sIn, eOut), seg(sOut, eIn)}

	switch shape {
	case layout.ShapeBox:
		return []geom.Primitive{geom.Polygon{Points: []geom.Position{sIn, eIn, eOut, sOut}, Style: style}}
	case layout.ShapeXBox:
		return append([]geom.Primitive{geom.Polygon{Points: []geom.Position{sIn, eIn, eOut, sOut}, Style: style}}, diagonals...)
	case layout.ShapeX:
		return diagonals
	case layout.ShapeBowTie:
		return append(diagonals, seg(sOut, eOut), seg(sIn, eIn))
	case layout.ShapeDiamond:
		m := e.Mid()
		mOut, mIn := m.Sub(p.Scale(e.Outer)), m.Add(p.Scale(e.Inner))
		return []geom.Primitive{seg(s, mOut), seg(mOut, en), seg(en, mIn), seg(mIn, s)}
	case layout.ShapeCircle:
		diam := geom.Distance(s, en)
		return []geom.Primitive{geom.Ellipse{Center: e.Mid(), Width: diam, Height: diam, Style: style}}
	}
	return nil
}

// corners of a bend outline, with the face angles applied.
type corners struct {
	outerStart, innerStart geom.Position
	outerEnd, innerEnd     geom.Position
}

func bendCorners(e Element) corners {
	sfa, efa := e.faces()
	ps := geom.Perp(e.Start.Angle - sfa)
	pe := geom.Perp(e.End.Angle + efa)
	s, en := e.Start.Position, e.End.Position
	return corners{
		outerStart: s.Sub(ps.Scale(e.Outer)),
		innerStart: s.Add(ps.Scale(e.Inner)),
		outerEnd:   en.Sub(pe.Scale(e.Outer)),
		innerEnd:   en.Add(pe.Scale(e.Inner)),
	}
}

// bendCenter intersects the normals to the trajectory at both ends.
func bendCenter(e Element) (geom.Position, bool) {
	s, en := e.Start.Position, e.End.Position
	l1 := geom.LineThrough(s, s.Add(geom.Perp(e.Start.Angle)))
	l2 := geom.LineThrough(en, en.Add(geom.Perp(e.End.Angle)))
	return geom.Intersect(l1, l2)
}

func bendOutline(e Element, style geom.Style) ([]geom.Primitive, error) {
	c := bendCorners(e)
	thin := e.Outer == 0 && e.Inner == 0
	var out []geom.Primitive
	if !thin {
		out = append(out,
			geom.Line{A: c.outerStart, B: c.innerStart, Style: style},
			geom.Line{A: c.outerEnd, B: c.innerEnd, Style: style},
		)
	}

	center, ok := bendCenter(e)
	if !ok {
		out = append(out,
			geom.Line{A: c.outerStart, B: c.outerEnd, Style: style},
			geom.Line{A: c.innerStart, B: c.innerEnd, Style: style},
		)
		return out, fmt.Errorf("bend %d has parallel faces: %w", e.Index, geom.ErrDegenerate)
	}

	out = append(out, edgeArc(center, c.outerStart, c.outerEnd, style))
	if !thin {
		out = append(out, edgeArc(center, c.innerStart, c.innerEnd, style))
	}
	return out, nil
}

// edgeArc is the counter-clockwise arc about center joining the two corners
// of one edge. The shorter of the two possible arcs is chosen.
func edgeArc(center, from, to geom.Position, style geom.Style) geom.Arc {
	a1 := geom.PolarAngle(center, from)
	a2 := geom.PolarAngle(center, to)
	lo, hi := math.Min(a1, a2), math.Max(a1, a2)
	start, end := lo, hi
	if hi-lo >= 180 {
		start, end = hi, lo+360
	}
	return geom.Arc{
		Center: center,
		Radius: geom.Distance(center, from),
		Start:  start,
		End:    end,
		Style:  style,
	}
}

// label places the element name beyond the outer edge, rotated to read along
// the radial direction.
func label(e Element) geom.Text {
	sa := e.Start.Angle
	at := e.Mid().Add(geom.Pt(-math.Sin(sa), math.Cos(sa)).Scale(labelOffset * e.Outer))
	mean := (e.Start.Angle + e.End.Angle) / 2
	t := geom.Text{
		At:     at,
		Text:   e.Name,
		VAlign: geom.AlignMiddle,
		Style:  geom.Style{Color: "black"},
	}
	if math.Sin(mean) > 0 {
		t.HAlign = geom.AlignRight
		t.Rotation = -90 + geom.Degrees(mean)
	} else {
		t.HAlign = geom.AlignLeft
		t.Rotation = 90 + geom.Degrees(mean)
	}
	return t
}
