package raster

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
)

// markerAt draws one symbol of m centered on the screen point (x, y). Size
// is the symbol's full height in pixels.
func (r *renderer) markerAt(m geom.Markers, x, y float64) {
	sym, err := curve.ParseCode(m.Symbol)
	if err != nil || m.Size <= 0 || m.Style.Hidden {
		return
	}
	rad := m.Size / 2
	edge := m.Style
	edge.Width = m.EdgeWidth
	edge.Dash = ""
	rot := -sym.Angle * math.Pi / 180
	dc := r.dc

	var outline func()
	switch sym.Glyph {
	case curve.GlyphSquare:
		outline = func() { dc.DrawRegularPolygon(4, x, y, rad*math.Sqrt2, rot+math.Pi/4) }
	case curve.GlyphDot:
		outline = func() { dc.DrawCircle(x, y, rad/2) }
	case curve.GlyphPixel:
		if c, ok := view.Color(m.Style.Color); ok {
			dc.SetColor(c)
			dc.ClearPath()
			dc.DrawRectangle(x-0.5, y-0.5, 1, 1)
			_ = dc.Fill()
		}
		return
	case curve.GlyphTriangle:
		outline = func() { dc.DrawRegularPolygon(3, x, y, rad, rot-math.Pi/2) }
	case curve.GlyphDiamond:
		outline = func() { dc.DrawRegularPolygon(4, x, y, rad, rot) }
	case curve.GlyphCircle, curve.GlyphRing:
		outline = func() { dc.DrawCircle(x, y, rad) }
	case curve.GlyphPolygon:
		n := max(sym.Sides, 3)
		outline = func() { dc.DrawRegularPolygon(n, x, y, rad, rot-math.Pi/2) }
	case curve.GlyphStar:
		outline = func() { r.star(5, x, y, rad, rot) }
	case curve.GlyphStarred:
		outline = func() { r.star(max(sym.Sides, 3), x, y, rad, rot) }
	case curve.GlyphFilledPlus:
		outline = func() { r.plusOutline(x, y, rad) }
	case curve.GlyphPlus:
		r.spokes(edge, 4, x, y, rad, rot)
		return
	case curve.GlyphCross:
		r.spokes(edge, 4, x, y, rad, rot+math.Pi/4)
		return
	case curve.GlyphAsterisk:
		r.spokes(edge, max(sym.Sides, 2), x, y, rad, rot-math.Pi/2)
		return
	case curve.GlyphCirclePlus:
		r.stroke(edge, func() { dc.DrawCircle(x, y, rad) })
		r.spokes(edge, 4, x, y, rad, 0)
		return
	case curve.GlyphCircleDot:
		r.stroke(edge, func() { dc.DrawCircle(x, y, rad) })
		if c, ok := view.Color(m.Style.Color); ok {
			dc.SetColor(c)
			dc.ClearPath()
			dc.DrawCircle(x, y, math.Max(rad/5, 1))
			_ = dc.Fill()
		}
		return
	default:
		return
	}

	if !sym.Filled() {
		edge.Fill = ""
	}
	r.fill(edge, outline)
}

// spokes strokes n segments from the center out to radius rad.
func (r *renderer) spokes(st geom.Style, n int, x, y, rad, rot float64) {
	r.stroke(st, func() {
		for i := 0; i < n; i++ {
			a := rot + 2*math.Pi*float64(i)/float64(n)
			r.dc.MoveTo(x, y)
			r.dc.LineTo(x+rad*math.Cos(a), y+rad*math.Sin(a))
		}
	})
}

// star lays a closed star polygon with n points, the first pointing up.
func (r *renderer) star(n int, x, y, rad, rot float64) {
	inner := rad * 0.4
	for i := 0; i < 2*n; i++ {
		rr := rad
		if i%2 == 1 {
			rr = inner
		}
		a := rot - math.Pi/2 + math.Pi*float64(i)/float64(n)
		px, py := x+rr*math.Cos(a), y+rr*math.Sin(a)
		if i == 0 {
			r.dc.MoveTo(px, py)
		} else {
			r.dc.LineTo(px, py)
		}
	}
	r.dc.ClosePath()
}

// plusOutline lays the outline of a thick plus sign.
func (r *renderer) plusOutline(x, y, rad float64) {
	t := rad / 3
	pts := [][2]float64{
		{-t, -rad}, {t, -rad}, {t, -t}, {rad, -t}, {rad, t}, {t, t},
		{t, rad}, {-t, rad}, {-t, t}, {-rad, t}, {-rad, -t}, {-t, -t},
	}
	r.dc.MoveTo(x+pts[0][0], y+pts[0][1])
	for _, p := range pts[1:] {
		r.dc.LineTo(x+p[0], y+p[1])
	}
	r.dc.ClosePath()
}
