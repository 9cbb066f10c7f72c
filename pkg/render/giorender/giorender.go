// Package giorender draws geometry layers with Gio operations for the
// interactive viewer.
package giorender

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/markup"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
)

// arcStep is the largest angle, in degrees, one chord of an arc or
// ellipse approximation may span.
const arcStep = 5.0

// Renderer holds the text shaper shared by every frame.
type Renderer struct {
	shaper   *text.Shaper
	TextSize unit.Sp
}

// New returns a renderer using the Go font collection.
func New() *Renderer {
	return &Renderer{
		shaper:   text.NewShaper(text.WithCollection(gofont.Collection())),
		TextSize: 12,
	}
}

// DrawLayer draws every primitive of layer in order.
func (r *Renderer) DrawLayer(gtx layout.Context, cam *view.Camera, layer *geom.Layer) {
	for _, p := range layer.Primitives {
		r.Draw(gtx, cam, p)
	}
}

// Draw draws one primitive. Unknown primitive types are ignored.
func (r *Renderer) Draw(gtx layout.Context, cam *view.Camera, p geom.Primitive) {
	switch p := p.(type) {
	case geom.Line:
		strokePath(gtx, p.Style, screen(cam, []geom.Position{p.A, p.B}), false)
	case geom.Polyline:
		strokePath(gtx, p.Style, screen(cam, p.Points), false)
	case geom.Polygon:
		pts := screen(cam, p.Points)
		fillPath(gtx, p.Style, pts)
		strokePath(gtx, p.Style, pts, true)
	case geom.Ellipse:
		drawEllipse(gtx, cam, p)
	case geom.Arc:
		strokePath(gtx, p.Style, screen(cam, arcPoints(p)), false)
	case geom.Text:
		r.drawText(gtx, cam, p)
	case geom.Markers:
		for _, pt := range p.Points {
			x, y := cam.WorldToScreen(pt)
			drawMarker(gtx, p, f32.Pt(float32(x), float32(y)))
		}
	}
}

func screen(cam *view.Camera, pts []geom.Position) []f32.Point {
	out := make([]f32.Point, len(pts))
	for i, p := range pts {
		x, y := cam.WorldToScreen(p)
		out[i] = f32.Pt(float32(x), float32(y))
	}
	return out
}

// arcPoints approximates a counterclockwise arc with chords.
func arcPoints(a geom.Arc) []geom.Position {
	sweep := a.End - a.Start
	n := max(int(math.Ceil(math.Abs(sweep)/arcStep)), 1)
	pts := make([]geom.Position, n+1)
	for i := range pts {
		t := (a.Start + sweep*float64(i)/float64(n)) * math.Pi / 180
		pts[i] = geom.Pt(a.Center.X+a.Radius*math.Cos(t), a.Center.Y+a.Radius*math.Sin(t))
	}
	return pts
}

// ellipsePoints traces an ellipse outline, clipped to span when set. A clipped
// outline is closed along the clip line.
func ellipsePoints(e geom.Ellipse) []geom.Position {
	n := int(360 / arcStep)
	rx, ry := e.Width/2, e.Height/2
	pts := make([]geom.Position, 0, n+2)
	for i := 0; i < n; i++ {
		t := float64(i) * 2 * math.Pi / float64(n)
		p := geom.Pt(e.Center.X+rx*math.Cos(t), e.Center.Y+ry*math.Sin(t))
		if e.Clip != nil {
			p.X = math.Min(math.Max(p.X, e.Clip.Min), e.Clip.Max)
		}
		pts = append(pts, p)
	}
	return pts
}

func drawEllipse(gtx layout.Context, cam *view.Camera, e geom.Ellipse) {
	pts := screen(cam, ellipsePoints(e))
	fillPath(gtx, e.Style, pts)
	strokePath(gtx, e.Style, pts, true)
}

func buildPath(gtx layout.Context, pts []f32.Point, closed bool) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(pts[0])
	for _, p := range pts[1:] {
		path.LineTo(p)
	}
	if closed {
		path.Close()
	}
	return path.End()
}

func strokePath(gtx layout.Context, st geom.Style, pts []f32.Point, closed bool) {
	c, ok := view.Color(st.Color)
	if st.Hidden || !ok || len(pts) < 2 {
		return
	}
	w := float32(st.Width)
	if w <= 0 {
		w = 1
	}
	if closed {
		pts = append(pts, pts[0])
	}
	dashes := view.Dashes(st.Dash, float64(w))
	if dashes == nil {
		paint.FillShape(gtx.Ops, c, clip.Stroke{Path: buildPath(gtx, pts, false), Width: w}.Op())
		return
	}
	for _, seg := range dash(pts, dashes) {
		paint.FillShape(gtx.Ops, c, clip.Stroke{Path: buildPath(gtx, seg, false), Width: w}.Op())
	}
}

func fillPath(gtx layout.Context, st geom.Style, pts []f32.Point) {
	c, ok := view.Color(st.Fill)
	if st.Hidden || !ok || len(pts) < 3 {
		return
	}
	paint.FillShape(gtx.Ops, c, clip.Outline{Path: buildPath(gtx, pts, true)}.Op())
}

// dash cuts a polyline into the "on" runs of an on/off length pattern.
func dash(pts []f32.Point, pattern []float64) [][]f32.Point {
	var out [][]f32.Point
	idx := 0
	left := float32(pattern[0])
	on := true
	cur := []f32.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := b.Sub(a)
		length := float32(math.Hypot(float64(seg.X), float64(seg.Y)))
		pos := float32(0)
		for length-pos > left {
			pos += left
			p := a.Add(seg.Mul(pos / length))
			if on {
				out = append(out, append(cur, p))
			}
			cur = []f32.Point{p}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = float32(pattern[idx])
		}
		left -= length - pos
		if on {
			cur = append(cur, b)
		} else {
			cur = []f32.Point{b}
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

var hAlign = map[geom.HAlign]float32{geom.AlignLeft: 0, geom.AlignCenter: 0.5, geom.AlignRight: 1}

var vAlign = map[geom.VAlign]float32{geom.AlignTop: 0, geom.AlignMiddle: 0.5, geom.AlignBottom: 1}

// drawText lays the label out unrotated, then rotates it counterclockwise
// about its anchor.
func (r *Renderer) drawText(gtx layout.Context, cam *view.Camera, t geom.Text) {
	c, ok := view.Color(t.Style.Color)
	if t.Style.Hidden || !ok || t.Text == "" {
		return
	}
	x, y := cam.WorldToScreen(t.At)

	mat := op.Record(gtx.Ops)
	paint.ColorOp{Color: c}.Add(gtx.Ops)
	material := mat.Stop()

	lgtx := gtx
	lgtx.Constraints.Min = image.Point{}
	macro := op.Record(gtx.Ops)
	dims := widget.Label{MaxLines: 1}.Layout(lgtx, r.shaper, font.Font{}, r.TextSize, markup.Plain(t.Text), material)
	call := macro.Stop()

	off := f32.Pt(-hAlign[t.HAlign]*float32(dims.Size.X), -vAlign[t.VAlign]*float32(dims.Size.Y))
	tr := f32.Affine2D{}.
		Offset(off).
		Rotate(f32.Pt(0, 0), float32(-t.Rotation*math.Pi/180)).
		Offset(f32.Pt(float32(x), float32(y)))
	stack := op.Affine(tr).Push(gtx.Ops)
	call.Add(gtx.Ops)
	stack.Pop()
}

// drawMarker draws one plot symbol centered on at.
func drawMarker(gtx layout.Context, m geom.Markers, at f32.Point) {
	sym, err := curve.ParseCode(m.Symbol)
	if err != nil || m.Size <= 0 || m.Style.Hidden {
		return
	}
	rad := m.Size / 2
	edge := m.Style
	edge.Width, edge.Dash = m.EdgeWidth, ""
	rot := -sym.Angle * math.Pi / 180

	var outline []f32.Point
	switch sym.Glyph {
	case curve.GlyphSquare:
		outline = regular(at, 4, rad*math.Sqrt2, rot+math.Pi/4)
	case curve.GlyphDot:
		outline = regular(at, 24, rad/2, 0)
	case curve.GlyphPixel:
		outline = regular(at, 4, 0.75, math.Pi/4)
	case curve.GlyphTriangle:
		outline = regular(at, 3, rad, rot-math.Pi/2)
	case curve.GlyphDiamond:
		outline = regular(at, 4, rad, rot)
	case curve.GlyphCircle, curve.GlyphRing, curve.GlyphCirclePlus, curve.GlyphCircleDot:
		outline = regular(at, 24, rad, 0)
	case curve.GlyphPolygon:
		outline = regular(at, max(sym.Sides, 3), rad, rot-math.Pi/2)
	case curve.GlyphStar:
		outline = starPoints(at, 5, rad, rot)
	case curve.GlyphStarred:
		outline = starPoints(at, max(sym.Sides, 3), rad, rot)
	}

	if outline != nil {
		if sym.Filled() || sym.Glyph == curve.GlyphPixel {
			fill := edge
			if sym.Glyph == curve.GlyphPixel {
				fill.Fill = edge.Color
			}
			fillPath(gtx, fill, outline)
		}
		strokePath(gtx, edge, outline, true)
	}

	spokes := 0
	switch sym.Glyph {
	case curve.GlyphPlus, curve.GlyphFilledPlus, curve.GlyphCirclePlus:
		spokes = 4
	case curve.GlyphCross:
		spokes, rot = 4, rot+math.Pi/4
	case curve.GlyphAsterisk:
		spokes, rot = max(sym.Sides, 2), rot-math.Pi/2
	case curve.GlyphCircleDot:
		dot := edge
		dot.Fill = edge.Color
		fillPath(gtx, dot, regular(at, 12, math.Max(rad/5, 1), 0))
	}
	if sym.Glyph == curve.GlyphFilledPlus {
		edge.Width = math.Max(rad/1.5, edge.Width)
	}
	for i := 0; i < spokes; i++ {
		a := rot + 2*math.Pi*float64(i)/float64(spokes)
		tip := at.Add(f32.Pt(float32(rad*math.Cos(a)), float32(rad*math.Sin(a))))
		strokePath(gtx, edge, []f32.Point{at, tip}, false)
	}
}

func regular(c f32.Point, n int, rad, rot float64) []f32.Point {
	pts := make([]f32.Point, n)
	for i := range pts {
		a := rot + 2*math.Pi*float64(i)/float64(n)
		pts[i] = c.Add(f32.Pt(float32(rad*math.Cos(a)), float32(rad*math.Sin(a))))
	}
	return pts
}

func starPoints(c f32.Point, n int, rad, rot float64) []f32.Point {
	pts := make([]f32.Point, 2*n)
	for i := range pts {
		rr := rad
		if i%2 == 1 {
			rr = rad * 0.4
		}
		a := rot - math.Pi/2 + math.Pi*float64(i)/float64(n)
		pts[i] = c.Add(f32.Pt(float32(rr*math.Cos(a)), float32(rr*math.Sin(a))))
	}
	return pts
}

// Background fills the current clip area with c.
func Background(gtx layout.Context, c color.NRGBA) {
	paint.Fill(gtx.Ops, c)
}
