package layout

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// Shape is the schematic symbol drawn for an element.
type Shape uint8

const (
	ShapeBox Shape = iota + 1
	ShapeXBox
	ShapeX
	ShapeBowTie
	ShapeDiamond
	ShapeCircle
)

var shapeNames = map[Shape]string{
	ShapeBox:     "box",
	ShapeXBox:    "xbox",
	ShapeX:       "x",
	ShapeBowTie:  "bow_tie",
	ShapeDiamond: "diamond",
	ShapeCircle:  "circle",
}

func (s Shape) String() string { return shapeNames[s] }

// ParseShape maps a shape tag to a Shape. Unknown tags are lookup misses.
func ParseShape(tag string) (Shape, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for s, name := range shapeNames {
		if name == tag {
			return s, nil
		}
	}
	return 0, &protocol.LookupMissError{Table: "shape", Key: tag}
}

// frame is the box an element occupies: x from start to end, y from -below to
// above. min and max are the axis limits used by wrapped fragments.
type frame struct {
	start, end   float64
	above, below float64
	min, max     float64
	style        geom.Style
}

func (f frame) mid() float64 { return f.start + (f.end-f.start)/2 }

func (f frame) seg(x1, y1, x2, y2 float64) geom.Primitive {
	return geom.Line{A: geom.Pt(x1, y1), B: geom.Pt(x2, y2), Style: f.style}
}

func (f frame) hiddenSeg(x1, y1, x2, y2 float64) geom.Primitive {
	st := f.style
	st.Hidden = true
	return geom.Line{A: geom.Pt(x1, y1), B: geom.Pt(x2, y2), Style: st}
}

func (f frame) rect() geom.Primitive {
	return geom.Polygon{
		Points: []geom.Position{
			geom.Pt(f.start, -f.below),
			geom.Pt(f.end, -f.below),
			geom.Pt(f.end, f.above),
			geom.Pt(f.start, f.above),
		},
		Style: f.style,
	}
}

func (f frame) diagonals() []geom.Primitive {
	return []geom.Primitive{
		f.seg(f.start, f.above, f.end, -f.below),
		f.seg(f.start, -f.below, f.end, f.above),
	}
}

// diagonalHalves are the two diagonals cut at the axis limits: each runs
// from a corner to the centerline at the ring origin.
func (f frame) diagonalHalves() []geom.Primitive {
	return []geom.Primitive{
		f.seg(f.start, f.above, f.max, 0),
		f.seg(f.min, 0, f.end, f.above),
		f.seg(f.start, -f.below, f.max, 0),
		f.seg(f.min, 0, f.end, -f.below),
	}
}

func (f frame) wrappedChords() []geom.Primitive {
	return []geom.Primitive{
		f.seg(f.start, f.above, f.max, f.above),
		f.seg(f.min, f.above, f.end, f.above),
		f.seg(f.start, -f.below, f.max, -f.below),
		f.seg(f.min, -f.below, f.end, -f.below),
	}
}

// shapeRenderer draws one Shape, either as a single body or as the two
// fragments of an element that wraps past the ring origin.
type shapeRenderer interface {
	straight(f frame) []geom.Primitive
	wrapped(f frame) []geom.Primitive
}

var renderers = map[Shape]shapeRenderer{
	ShapeBox:     boxShape{},
	ShapeXBox:    xboxShape{},
	ShapeX:       xShape{},
	ShapeBowTie:  bowTieShape{},
	ShapeDiamond: diamondShape{},
	ShapeCircle:  circleShape{},
}

type boxShape struct{}

func (boxShape) straight(f frame) []geom.Primitive {
	return []geom.Primitive{
		f.rect(),
		f.hiddenSeg(f.start, f.above, f.end, -f.below),
		f.hiddenSeg(f.start, -f.below, f.end, f.above),
	}
}

func (boxShape) wrapped(f frame) []geom.Primitive {
	out := f.wrappedChords()
	return append(out,
		f.seg(f.start, f.above, f.start, -f.below),
		f.seg(f.end, f.above, f.end, -f.below),
	)
}

type xboxShape struct{}

func (xboxShape) straight(f frame) []geom.Primitive {
	return append([]geom.Primitive{f.rect()}, f.diagonals()...)
}

func (xboxShape) wrapped(f frame) []geom.Primitive {
	return append(boxShape{}.wrapped(f), f.diagonalHalves()...)
}

type xShape struct{}

func (xShape) straight(f frame) []geom.Primitive { return f.diagonals() }
func (xShape) wrapped(f frame) []geom.Primitive  { return f.diagonalHalves() }

type bowTieShape struct{}

func (bowTieShape) straight(f frame) []geom.Primitive {
	return append(f.diagonals(),
		f.seg(f.start, f.above, f.end, f.above),
		f.seg(f.start, -f.below, f.end, -f.below),
	)
}

func (bowTieShape) wrapped(f frame) []geom.Primitive {
	return append(f.wrappedChords(), f.diagonalHalves()...)
}

type diamondShape struct{}

func (diamondShape) straight(f frame) []geom.Primitive {
	m := f.mid()
	return []geom.Primitive{
		f.seg(f.start, 0, m, -f.below),
		f.seg(f.start, 0, m, f.above),
		f.seg(m, -f.below, f.end, 0),
		f.seg(m, f.above, f.end, 0),
	}
}

func (diamondShape) wrapped(f frame) []geom.Primitive {
	return []geom.Primitive{
		f.seg(f.start, 0, f.max, f.above),
		f.seg(f.min, f.above, f.end, 0),
		f.seg(f.start, 0, f.max, -f.below),
		f.seg(f.min, -f.below, f.end, 0),
	}
}

type circleShape struct{}

func (circleShape) straight(f frame) []geom.Primitive {
	return []geom.Primitive{
		geom.Ellipse{
			Center: geom.Pt(f.mid(), 0),
			Width:  f.end - f.start,
			Height: f.above + f.below,
			Style:  f.style,
		},
		f.hiddenSeg(f.start, f.above, f.end, -f.below),
		f.hiddenSeg(f.start, -f.below, f.end, f.above),
	}
}

// wrapped draws the full ellipse twice, once per fragment, each clipped to its
// own side of the ring origin so the visible halves join at the axis limits.
func (circleShape) wrapped(f frame) []geom.Primitive {
	w := (f.max - f.start) + (f.end - f.min)
	h := f.above + f.below
	return []geom.Primitive{
		geom.Ellipse{
			Center: geom.Pt(f.start+w/2, 0),
			Width:  w,
			Height: h,
			Clip:   &geom.Span{Min: f.start, Max: f.max},
			Style:  f.style,
		},
		geom.Ellipse{
			Center: geom.Pt(f.end-w/2, 0),
			Width:  w,
			Height: h,
			Clip:   &geom.Span{Min: f.min, Max: f.end},
			Style:  f.style,
		},
	}
}
