// Package layout computes the schematic lattice layout strip: one symbol per
// element along the longitudinal axis, split in two when an element wraps
// past the origin of a ring.
package layout

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// labelDrop is how far below the shape, as a multiple of its lower
// half-height, the element name is placed.
const labelDrop = 1.1

// Element is one plot_lat_layout record.
type Element struct {
	Index     int
	Start     float64
	End       float64
	LineWidth float64
	Shape     string
	Above     float64 // half-height above the axis
	Below     float64 // half-height below the axis
	Color     string
	Name      string
}

// Wraps reports whether the element straddles the ring origin.
func (e Element) Wraps() bool { return e.End < e.Start }

// Axis is the plotted longitudinal range.
type Axis struct {
	Min, Max float64
}

// Drawn is the geometry of one successfully built element.
type Drawn struct {
	Index      int
	Name       string
	Shape      Shape
	Wrapped    bool
	Spans      []geom.Span
	Primitives []geom.Primitive
}

// Length is the total longitudinal extent over all fragments.
func (d Drawn) Length() float64 {
	var n float64
	for _, s := range d.Spans {
		n += s.Length()
	}
	return n
}

// Result holds every drawable element in input order plus the elements that
// were skipped or degraded.
type Result struct {
	Elements    []Drawn
	Diagnostics []geom.Diagnostic
}

// Layer flattens the result into a single primitive list.
func (r Result) Layer() geom.Layer {
	var l geom.Layer
	for _, d := range r.Elements {
		l.Add(d.Primitives...)
	}
	l.Diagnostics = append(l.Diagnostics, r.Diagnostics...)
	return l
}

// Build lays out every element. A failure on one element is recorded as a
// diagnostic and does not stop the others.
func Build(elems []Element, axis Axis) Result {
	var res Result
	for _, e := range elems {
		d, err := BuildElement(e, axis)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, geom.Diagnostic{Index: e.Index, Name: e.Name, Err: err})
			continue
		}
		res.Elements = append(res.Elements, d)
	}
	return res
}

// BuildElement computes the primitives of a single element. Errors are lookup
// misses (unknown shape, no color) or geom.ErrDegenerate for zero length.
func BuildElement(e Element, axis Axis) (Drawn, error) {
	shape, err := ParseShape(e.Shape)
	if err != nil {
		return Drawn{}, err
	}
	if e.Color == "" {
		return Drawn{}, &protocol.LookupMissError{Table: "color", Key: e.Name}
	}
	if e.End == e.Start {
		return Drawn{}, fmt.Errorf("element %d has zero length: %w", e.Index, geom.ErrDegenerate)
	}

	f := frame{
		start: e.Start,
		end:   e.End,
		above: e.Above,
		below: e.Below,
		min:   axis.Min,
		max:   axis.Max,
		style: geom.Style{Color: e.Color, Width: e.LineWidth},
	}
	r := renderers[shape]
	d := Drawn{Index: e.Index, Name: e.Name, Shape: shape}
	labelY := -labelDrop * e.Below
	label := geom.Style{Color: e.Color}

	if !e.Wraps() {
		d.Spans = []geom.Span{{Min: e.Start, Max: e.End}}
		d.Primitives = r.straight(f)
		d.Primitives = append(d.Primitives, geom.Text{
			At: geom.Pt(f.mid(), labelY), Text: e.Name,
			HAlign: geom.AlignCenter, VAlign: geom.AlignTop, Style: label,
		})
		return d, nil
	}

	d.Wrapped = true
	d.Spans = []geom.Span{{Min: e.Start, Max: axis.Max}, {Min: axis.Min, Max: e.End}}
	d.Primitives = r.wrapped(f)
	d.Primitives = append(d.Primitives,
		geom.Text{
			At: geom.Pt(axis.Max, labelY), Text: e.Name,
			HAlign: geom.AlignRight, VAlign: geom.AlignTop, Style: label,
		},
		geom.Text{
			At: geom.Pt(axis.Min, labelY), Text: e.Name,
			HAlign: geom.AlignLeft, VAlign: geom.AlignTop, Style: label,
		},
	)
	return d, nil
}

// Baseline is the horizontal axis line drawn under the strip.
func Baseline(axis Axis) geom.Line {
	return geom.Line{
		A:     geom.Pt(1.1*axis.Min, 0),
		B:     geom.Pt(1.1*axis.Max, 0),
		Style: geom.Style{Color: "black", Width: 1},
	}
}

// ParseElements decodes a plot_lat_layout response:
// index;start;end;line_width;shape;above;below;color;name
func ParseElements(text string) ([]Element, error) {
	recs := protocol.Records("plot_lat_layout", text)
	out := make([]Element, 0, len(recs))
	for _, rec := range recs {
		var e Element
		var err error
		if e.Index, err = rec.Int(0); err != nil {
			return nil, err
		}
		if e.Start, err = rec.Real(1); err != nil {
			return nil, err
		}
		if e.End, err = rec.Real(2); err != nil {
			return nil, err
		}
		if e.LineWidth, err = rec.Real(3); err != nil {
			return nil, err
		}
		if e.Shape, err = rec.Lower(4); err != nil {
			return nil, err
		}
		if e.Above, err = rec.Real(5); err != nil {
			return nil, err
		}
		if e.Below, err = rec.Real(6); err != nil {
			return nil, err
		}
		if e.Color, err = rec.Lower(7); err != nil {
			return nil, err
		}
		if e.Name, err = rec.Field(8); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
