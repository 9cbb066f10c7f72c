package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate marks geometry that cannot be drawn as described, such as a
// zero length element or a bend whose faces are parallel. Builders fall back
// to a simpler rendering and record a Diagnostic carrying it.
var ErrDegenerate = errors.New("geom: degenerate geometry")

// Primitive is one drawable item. The set of implementations is closed.
type Primitive interface {
	Bounds() BoundingBox
	primitive()
}

// Line is a straight segment.
type Line struct {
	A, B  Position
	Style Style
}

// Polyline is an open connected path.
type Polyline struct {
	Points []Position
	Style  Style
}

// Polygon is a closed outline, filled when Style.Fill is set.
type Polygon struct {
	Points []Position
	Style  Style
}

// Ellipse is an axis-aligned ellipse. When Clip is set only the part with
// Clip.Min <= x <= Clip.Max is drawn.
type Ellipse struct {
	Center        Position
	Width, Height float64
	Clip          *Span
	Style         Style
}

// Arc is a circular arc swept counter-clockwise from Start to End degrees.
// End is always greater than Start; a sweep through 0° has End above 360.
type Arc struct {
	Center     Position
	Radius     float64
	Start, End float64
	Style      Style
}

// Text is a label anchored at At and rotated by Rotation degrees about it.
type Text struct {
	At       Position
	Text     string
	HAlign   HAlign
	VAlign   VAlign
	Rotation float64
	Style    Style
}

// Markers is a run of plot symbols. Style.Color strokes the symbol outline and
// Style.Fill fills it.
type Markers struct {
	Points    []Position
	Symbol    string
	Size      float64
	EdgeWidth float64
	Style     Style
}

// Span is a closed interval on the x axis.
type Span struct {
	Min, Max float64
}

func (s Span) Length() float64 { return s.Max - s.Min }

func (Line) primitive()     {}
func (Polyline) primitive() {}
func (Polygon) primitive()  {}
func (Ellipse) primitive()  {}
func (Arc) primitive()      {}
func (Text) primitive()     {}
func (Markers) primitive()  {}

func (l Line) Bounds() BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(l.A)
	bb.Expand(l.B)
	return bb
}

// Length returns the Euclidean length of the segment.
func (l Line) Length() float64 { return Distance(l.A, l.B) }

func (p Polyline) Bounds() BoundingBox { return pointsBounds(p.Points) }
func (p Polygon) Bounds() BoundingBox  { return pointsBounds(p.Points) }
func (m Markers) Bounds() BoundingBox  { return pointsBounds(m.Points) }

func (e Ellipse) Bounds() BoundingBox {
	bb := NewBoundingBox()
	minX, maxX := e.Center.X-e.Width/2, e.Center.X+e.Width/2
	if e.Clip != nil {
		minX = math.Max(minX, e.Clip.Min)
		maxX = math.Min(maxX, e.Clip.Max)
	}
	bb.Expand(Pt(minX, e.Center.Y-e.Height/2))
	bb.Expand(Pt(maxX, e.Center.Y+e.Height/2))
	return bb
}

// Bounds includes every axis extreme the arc passes through.
func (a Arc) Bounds() BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(a.StartPoint())
	bb.Expand(a.EndPoint())
	for deg := math.Ceil(a.Start/90) * 90; deg < a.End; deg += 90 {
		bb.Expand(a.pointAt(deg))
	}
	return bb
}

func (t Text) Bounds() BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(t.At)
	return bb
}

// StartPoint is the point on the arc at Start degrees.
func (a Arc) StartPoint() Position { return a.pointAt(a.Start) }

// EndPoint is the point on the arc at End degrees.
func (a Arc) EndPoint() Position { return a.pointAt(a.End) }

// Sweep is the angular extent in degrees.
func (a Arc) Sweep() float64 { return a.End - a.Start }

func (a Arc) pointAt(deg float64) Position {
	rad := deg * math.Pi / 180
	return Pt(a.Center.X+a.Radius*math.Cos(rad), a.Center.Y+a.Radius*math.Sin(rad))
}

func pointsBounds(pts []Position) BoundingBox {
	bb := NewBoundingBox()
	for _, p := range pts {
		bb.Expand(p)
	}
	return bb
}

// Diagnostic records an element that was skipped or drawn with a fallback.
type Diagnostic struct {
	Index int    // simulator element index, or curve number
	Name  string // element or curve name
	Err   error
}

func (d Diagnostic) String() string {
	if d.Name != "" {
		return fmt.Sprintf("#%d %s: %v", d.Index, d.Name, d.Err)
	}
	return fmt.Sprintf("#%d: %v", d.Index, d.Err)
}

// Layer is an ordered primitive list plus the diagnostics gathered while
// building it.
type Layer struct {
	Primitives  []Primitive
	Diagnostics []Diagnostic
}

// Add appends primitives in drawing order.
func (l *Layer) Add(p ...Primitive) {
	l.Primitives = append(l.Primitives, p...)
}

// Note records a diagnostic.
func (l *Layer) Note(index int, name string, err error) {
	l.Diagnostics = append(l.Diagnostics, Diagnostic{Index: index, Name: name, Err: err})
}

// Bounds covers every primitive, hidden ones included.
func (l *Layer) Bounds() BoundingBox {
	bb := NewBoundingBox()
	for _, p := range l.Primitives {
		bb.ExpandBox(p.Bounds())
	}
	return bb
}
