package raster

import (
	"fmt"
	"image/color"
	"math"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
)

var (
	black     = color.NRGBA{A: 255}
	white     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gridColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
)

// stroke sets up the pen for style, lays the path with build and strokes
// it. Hidden styles and colors that do not paint draw nothing.
func (r *renderer) stroke(st geom.Style, build func()) {
	c, ok := view.Color(st.Color)
	if st.Hidden || !ok {
		return
	}
	w := st.Width
	if w <= 0 {
		w = 1
	}
	r.dc.ClearPath()
	r.dc.SetColor(c)
	r.dc.SetLineWidth(w)
	if d := view.Dashes(st.Dash, w); d != nil {
		r.dc.SetDash(d...)
	} else {
		r.dc.ClearDash()
	}
	build()
	_ = r.dc.Stroke()
}

// fill fills the path laid by build with the style's fill color, then
// strokes its outline.
func (r *renderer) fill(st geom.Style, build func()) {
	if st.Hidden {
		return
	}
	if fc, ok := view.Color(st.Fill); ok {
		r.dc.ClearPath()
		r.dc.SetColor(fc)
		build()
		_ = r.dc.Fill()
	}
	r.stroke(st, build)
}

func (r *renderer) primitive(cam *view.Camera, p geom.Primitive) error {
	dc := r.dc
	switch p := p.(type) {
	case geom.Line:
		r.stroke(p.Style, func() {
			x1, y1 := cam.WorldToScreen(p.A)
			x2, y2 := cam.WorldToScreen(p.B)
			dc.DrawLine(x1, y1, x2, y2)
		})
	case geom.Polyline:
		if len(p.Points) < 2 {
			return nil
		}
		r.stroke(p.Style, func() { r.path(cam, p.Points, false) })
	case geom.Polygon:
		if len(p.Points) < 2 {
			return nil
		}
		r.fill(p.Style, func() { r.path(cam, p.Points, true) })
	case geom.Ellipse:
		r.ellipse(cam, p)
	case geom.Arc:
		cx, cy := cam.WorldToScreen(p.Center)
		rad := cam.Scale(p.Radius)
		// Screen y points down, so the sweep is mirrored.
		a1, a2 := -p.End*math.Pi/180, -p.Start*math.Pi/180
		r.stroke(p.Style, func() { dc.DrawArc(cx, cy, rad, a1, a2) })
	case geom.Text:
		r.text(cam, p)
	case geom.Markers:
		if p.Size <= 0 || p.Style.Hidden {
			return nil
		}
		for _, pt := range p.Points {
			x, y := cam.WorldToScreen(pt)
			r.markerAt(p, x, y)
		}
	default:
		return fmt.Errorf("unsupported primitive %T", p)
	}
	return nil
}

func (r *renderer) path(cam *view.Camera, pts []geom.Position, closed bool) {
	x, y := cam.WorldToScreen(pts[0])
	r.dc.MoveTo(x, y)
	for _, pt := range pts[1:] {
		x, y = cam.WorldToScreen(pt)
		r.dc.LineTo(x, y)
	}
	if closed {
		r.dc.ClosePath()
	}
}

func (r *renderer) ellipse(cam *view.Camera, e geom.Ellipse) {
	if e.Style.Hidden {
		return
	}
	cx, cy := cam.WorldToScreen(e.Center)
	rx, ry := e.Width/2*cam.ZoomX, e.Height/2*cam.ZoomY
	if e.Clip == nil {
		r.fill(e.Style, func() { r.dc.DrawEllipse(cx, cy, rx, ry) })
		return
	}
	x0, _ := cam.WorldToScreen(geom.Pt(e.Clip.Min, 0))
	x1, _ := cam.WorldToScreen(geom.Pt(e.Clip.Max, 0))
	r.dc.Push()
	r.dc.ClearPath()
	r.dc.DrawRectangle(x0, cy-ry-1, x1-x0, 2*ry+2)
	r.dc.Clip()
	r.fill(e.Style, func() { r.dc.DrawEllipse(cx, cy, rx, ry) })
	r.dc.Pop()
}

var hAnchor = map[geom.HAlign]float64{geom.AlignLeft: 0, geom.AlignCenter: 0.5, geom.AlignRight: 1}

// gg anchors text on its baseline; ay=1 hangs the text below the point.
var vAnchor = map[geom.VAlign]float64{geom.AlignTop: 1, geom.AlignMiddle: 0.5, geom.AlignBottom: 0}

func (r *renderer) text(cam *view.Camera, t geom.Text) {
	c, ok := view.Color(t.Style.Color)
	if t.Style.Hidden || !ok || t.Text == "" {
		return
	}
	ax, ok := hAnchor[t.HAlign]
	if !ok {
		ax = 0
	}
	ay, ok := vAnchor[t.VAlign]
	if !ok {
		ay = 0
	}
	x, y := cam.WorldToScreen(t.At)
	r.dc.SetColor(c)
	r.dc.SetFont(r.small)
	r.dc.DrawStringAnchored(t.Text, x, y, ax, ay)
	r.dc.SetFont(r.face)
}
