// Package raster draws a figure into an RGBA image with the gg 2D library.
// Panels are stacked top to bottom in the order the draw pass produced them.
package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/markup"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Options controls the output image.
type Options struct {
	Width      int
	Height     int
	FontSize   float64 // points; one point is one pixel
	Background string  // color name or #rrggbb
}

// DefaultOptions returns an 1000x800 image on white with 12 pt text.
func DefaultOptions() Options {
	return Options{Width: 1000, Height: 800, FontSize: 12, Background: "white"}
}

// Validate checks the image size and font size.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("raster: invalid image size %dx%d", o.Width, o.Height)
	}
	if o.FontSize <= 0 {
		return fmt.Errorf("raster: invalid font size %g", o.FontSize)
	}
	return nil
}

var fontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// Render draws fig.
func Render(fig *taoplot.Figure, opts Options) (image.Image, error) {
	dc, err := draw(fig, opts)
	if err != nil {
		return nil, err
	}
	_ = dc.Close()
	return dc.Image(), nil
}

// WritePNG renders fig and encodes it as PNG to w.
func WritePNG(w io.Writer, fig *taoplot.Figure, opts Options) error {
	dc, err := draw(fig, opts)
	if err != nil {
		return err
	}
	_ = dc.Close()
	return dc.EncodePNG(w)
}

func draw(fig *taoplot.Figure, opts Options) (*gg.Context, error) {
	if fig == nil {
		return nil, errors.New("raster: nil figure")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	src, err := fontSource()
	if err != nil {
		return nil, fmt.Errorf("raster: font: %w", err)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	if bg, ok := view.Color(opts.Background); ok {
		dc.SetColor(bg)
		dc.DrawRectangle(0, 0, float64(opts.Width), float64(opts.Height))
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("raster: background: %w", err)
		}
	}

	r := &renderer{dc: dc, face: src.Face(opts.FontSize), small: src.Face(opts.FontSize * 0.85), font: opts.FontSize}
	dc.SetFont(r.face)

	n := len(fig.Panels)
	if n == 0 {
		return dc, nil
	}
	h := float64(opts.Height) / float64(n)
	for i := range fig.Panels {
		cell := rect{x: 0, y: float64(i) * h, w: float64(opts.Width), h: h}
		if err := r.panel(&fig.Panels[i], cell); err != nil {
			return nil, fmt.Errorf("raster: panel %d (%s): %w", i+1, fig.Panels[i].Name, err)
		}
	}
	return dc, nil
}

type rect struct{ x, y, w, h float64 }

type renderer struct {
	dc    *gg.Context
	face  text.Face
	small text.Face
	font  float64
}

// plotArea leaves room for the title, tick labels and axis labels.
func (r *renderer) plotArea(cell rect, axes bool) rect {
	top := 1.8 * r.font
	if !axes {
		return rect{x: cell.x + r.font, y: cell.y + top, w: cell.w - 2*r.font, h: cell.h - top - r.font}
	}
	left, bottom := 6*r.font, 3.5*r.font
	return rect{x: cell.x + left, y: cell.y + top, w: cell.w - left - 1.5*r.font, h: cell.h - top - bottom}
}

func (r *renderer) panel(p *taoplot.Panel, cell rect) error {
	axes := p.Kind.HasCurves()
	area := r.plotArea(cell, axes)
	if area.w <= 0 || area.h <= 0 {
		return nil
	}

	cam := view.NewCamera(area.w, area.h)
	cam.SetViewport(area.x, area.y, area.w, area.h)
	switch p.Kind {
	case curve.KindFloorPlan:
		cam.Fit(p.Layer.Bounds())
	default:
		cam.Stretch(p.Frame())
	}

	if p.Title != "" {
		r.dc.SetColor(black)
		r.dc.DrawStringAnchored(markup.Plain(p.Title), cell.x+cell.w/2, cell.y+0.4*r.font, 0.5, 1)
	}
	if axes {
		r.axes(p, cam, area)
	}

	r.dc.Push()
	r.dc.DrawRectangle(area.x, area.y, area.w, area.h)
	r.dc.Clip()
	for _, prim := range p.Layer.Primitives {
		if err := r.primitive(cam, prim); err != nil {
			r.dc.Pop()
			return err
		}
	}
	r.dc.Pop()

	if axes && p.Legend {
		r.legend(p.Series, area)
	}
	return nil
}

// axes draws the frame, the grid, tick labels and axis labels of a graph.
func (r *renderer) axes(p *taoplot.Panel, cam *view.Camera, area rect) {
	frame := p.Frame()
	dc := r.dc

	xs := ticks(frame.Min.X, frame.Max.X, p.Axes.XDiv)
	ys := ticks(frame.Min.Y, frame.Max.Y, p.Axes.YDiv)

	if p.Grid {
		dc.SetColor(gridColor)
		dc.SetLineWidth(0.5)
		dc.ClearDash()
		for _, x := range xs {
			sx, _ := cam.WorldToScreen(geom.Pt(x, 0))
			dc.DrawLine(sx, area.y, sx, area.y+area.h)
		}
		for _, y := range ys {
			_, sy := cam.WorldToScreen(geom.Pt(0, y))
			dc.DrawLine(area.x, sy, area.x+area.w, sy)
		}
		_ = dc.Stroke()
	}

	dc.SetColor(black)
	dc.SetLineWidth(1)
	dc.ClearDash()
	dc.DrawRectangle(area.x, area.y, area.w, area.h)
	_ = dc.Stroke()

	dc.SetFont(r.small)
	for _, x := range xs {
		sx, _ := cam.WorldToScreen(geom.Pt(x, 0))
		dc.DrawLine(sx, area.y+area.h, sx, area.y+area.h+4)
		dc.DrawStringAnchored(tickLabel(x), sx, area.y+area.h+6, 0.5, 1)
	}
	for _, y := range ys {
		_, sy := cam.WorldToScreen(geom.Pt(0, y))
		dc.DrawLine(area.x-4, sy, area.x, sy)
		dc.DrawStringAnchored(tickLabel(y), area.x-6, sy, 1, 0.5)
	}
	_ = dc.Stroke()
	dc.SetFont(r.face)

	if p.XLabel != "" {
		dc.DrawStringAnchored(markup.Plain(p.XLabel), area.x+area.w/2, area.y+area.h+1.8*r.font, 0.5, 1)
	}
	// gg draws text unrotated, so the y label sits above the axis.
	if p.YLabel != "" {
		dc.DrawStringAnchored(markup.Plain(p.YLabel), area.x, area.y-0.2*r.font, 0.5, 0)
	}
}

// ticks returns div+1 evenly spaced values over [lo, hi]. Without a
// division count five are used.
func ticks(lo, hi float64, div int) []float64 {
	if div <= 0 {
		div = 5
	}
	if !(hi > lo) {
		return nil
	}
	out := make([]float64, div+1)
	step := (hi - lo) / float64(div)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func tickLabel(v float64) string {
	if math.Abs(v) < 1e-12 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// legend lists series with legend text in the top right corner of the plot
// area.
func (r *renderer) legend(series []curve.Series, area rect) {
	var items []curve.Series
	var width float64
	for _, s := range series {
		if s.Legend == "" {
			continue
		}
		items = append(items, s)
		w, _ := r.dc.MeasureString(markup.Plain(s.Legend))
		width = math.Max(width, w)
	}
	if len(items) == 0 {
		return
	}

	dc := r.dc
	row := 1.4 * r.font
	sample := 2.5 * r.font
	boxW := width + sample + 1.5*r.font
	boxH := float64(len(items))*row + 0.6*r.font
	x0, y0 := area.x+area.w-boxW-0.5*r.font, area.y+0.5*r.font

	dc.SetColor(white)
	dc.DrawRectangle(x0, y0, boxW, boxH)
	_ = dc.FillPreserve()
	dc.SetColor(gridColor)
	dc.SetLineWidth(0.5)
	dc.ClearDash()
	_ = dc.Stroke()

	for i, s := range items {
		y := y0 + 0.3*r.font + (float64(i)+0.5)*row
		a, b := x0+0.5*r.font, x0+0.5*r.font+sample
		switch {
		case s.Line != nil:
			r.stroke(s.Line.Style, func() { dc.DrawLine(a, y, b, y) })
		case s.Histogram != nil:
			r.stroke(s.Histogram.Outline.Style, func() { dc.DrawLine(a, y, b, y) })
		}
		if s.Markers != nil {
			r.markerAt(*s.Markers, (a+b)/2, y)
		}
		dc.SetColor(black)
		dc.DrawStringAnchored(markup.Plain(s.Legend), b+0.5*r.font, y, 0, 0.5)
	}
}
