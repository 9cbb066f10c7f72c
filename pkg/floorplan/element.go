// Package floorplan computes true-scale floor plan outlines from the
// simulator's floor_plan records: straight element symbols oriented along
// their heading, curved outlines for bends, name labels and the orbit overlay.
package floorplan

import (
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// Element is one floor_plan record. Angles are radians.
type Element struct {
	Index     int
	Type      string
	Start     geom.Pose
	End       geom.Pose
	LineWidth float64
	Shape     string
	Outer     float64 // half-width on the outer side
	Inner     float64 // half-width on the inner side
	Color     string
	Name      string
	Bend      *Bend
}

// Bend carries the optional trailing fields of a bend record.
type Bend struct {
	ArcLength float64
	Angle     float64
	StartFace float64 // e1 face angle, radians
	EndFace   float64 // e2 face angle, radians
}

// Mid is the chord midpoint.
func (e Element) Mid() geom.Position {
	return e.Start.Position.Lerp(e.End.Position, 0.5)
}

// IsBend reports whether the element is a sector bend.
func (e Element) IsBend() bool { return e.Type == "sbend" }

func (e Element) faces() (sfa, efa float64) {
	if e.Bend == nil {
		return 0, 0
	}
	return e.Bend.StartFace, e.Bend.EndFace
}

const query = "floor_plan"

// ParseElements decodes a floor_plan response:
// ?;index;type;sx;sy;sa;ex;ey;ea;lw;shape;outer;inner;color;name[;arc;angle;e1;e2]
func ParseElements(text string) ([]Element, error) {
	recs := protocol.Records(query, text)
	out := make([]Element, 0, len(recs))
	for _, rec := range recs {
		e, err := parseElement(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseElement(rec protocol.Record) (Element, error) {
	var e Element
	var err error
	if e.Index, err = rec.Int(1); err != nil {
		return e, err
	}
	if e.Type, err = rec.Lower(2); err != nil {
		return e, err
	}
	reals := make([]float64, 7)
	for i := range reals {
		if reals[i], err = rec.Real(3 + i); err != nil {
			return e, err
		}
	}
	e.Start = geom.Pose{Position: geom.Pt(reals[0], reals[1]), Angle: reals[2]}
	e.End = geom.Pose{Position: geom.Pt(reals[3], reals[4]), Angle: reals[5]}
	e.LineWidth = reals[6]
	if e.Shape, err = rec.Lower(10); err != nil {
		return e, err
	}
	if e.Outer, err = rec.Real(11); err != nil {
		return e, err
	}
	if e.Inner, err = rec.Real(12); err != nil {
		return e, err
	}
	if e.Color, err = rec.Lower(13); err != nil {
		return e, err
	}
	if e.Name, err = rec.Field(14); err != nil {
		return e, err
	}

	if rec.Len() >= 19 {
		var b Bend
		if b.ArcLength, err = rec.Real(15); err != nil {
			return e, err
		}
		if b.Angle, err = rec.Real(16); err != nil {
			return e, err
		}
		if b.StartFace, err = rec.Real(17); err != nil {
			return e, err
		}
		if b.EndFace, err = rec.Real(18); err != nil {
			return e, err
		}
		e.Bend = &b
	}
	return e, nil
}
