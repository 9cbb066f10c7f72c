// Package geom holds the drawable primitives produced by the layout and floor
// plan builders, together with the small amount of plane geometry they need.
package geom

import "math"

// Position is a point in world coordinates (meters along the lattice, or
// floor coordinates).
type Position struct {
	X float64
	Y float64
}

// Pt is shorthand for Position{X: x, Y: y}.
func Pt(x, y float64) Position { return Position{X: x, Y: y} }

// Pose is a position plus a heading in radians.
type Pose struct {
	Position
	Angle float64
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position
	Max Position
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = math.Min(bb.Min.X, pos.X)
	bb.Min.Y = math.Min(bb.Min.Y, pos.Y)
	bb.Max.X = math.Max(bb.Max.X, pos.X)
	bb.Max.Y = math.Max(bb.Max.Y, pos.Y)
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Intersects checks if two bounding boxes intersect
func (bb BoundingBox) Intersects(other BoundingBox) bool {
	return bb.Min.X <= other.Max.X && bb.Max.X >= other.Min.X &&
		bb.Min.Y <= other.Max.Y && bb.Max.Y >= other.Min.Y
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

func (bb BoundingBox) Width() float64  { return bb.Max.X - bb.Min.X }
func (bb BoundingBox) Height() float64 { return bb.Max.Y - bb.Min.Y }

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}

// Style is the stroke and fill appearance of a primitive.
type Style struct {
	Color string  // color name or #rrggbb, lowercased
	Width float64 // line width in points
	Dash  string  // solid, dashed, dotted or dash_dot; empty is solid
	Fill  string  // fill color; empty or "none" leaves the shape open
	// Hidden primitives have zero opacity. They still count toward bounds.
	Hidden bool
}

// Filled reports whether the primitive has a fill color.
func (s Style) Filled() bool { return s.Fill != "" && s.Fill != "none" }

// HAlign is horizontal text alignment relative to the anchor.
type HAlign string

// VAlign is vertical text alignment relative to the anchor.
type VAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "center"
	AlignBottom VAlign = "bottom"
)
