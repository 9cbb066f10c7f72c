// Package scene saves a drawn figure as an s-expression file and reads it
// back, so a figure can be rendered again without a running simulator.
//
//	(figure (region "top")
//	  (panel (name "top.x") (kind data) (title "$\\beta$")
//	    (axes (x 0 10 5) (y -1 1 4)) (grid) (legend)
//	    (series (name "c1") (legend "...") (polyline ...) (markers ...))
//	    (layer (line (a 0 0) (b 1 0) (style (color "black"))) ...)
//	    (diagnostic (index 3) (name "Q1") (class degenerate) (message "..."))))
package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Diagnostic classes written to scene files.
const (
	ClassDegenerate = "degenerate"
	ClassLookupMiss = "lookup-miss"
	ClassOther      = "error"
)

type writer struct {
	w     *bufio.Writer
	depth int
}

func (w *writer) open(head string) {
	if w.depth > 0 {
		w.w.WriteByte('\n')
		w.w.WriteString(strings.Repeat("  ", w.depth))
	}
	w.w.WriteString("(" + head)
	w.depth++
}

func (w *writer) close() {
	w.w.WriteByte(')')
	w.depth--
}

// leaf writes a one-line list.
func (w *writer) leaf(head string, args ...string) {
	w.w.WriteString(" (" + head)
	for _, a := range args {
		w.w.WriteString(" " + a)
	}
	w.w.WriteByte(')')
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func nums(vs ...float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = num(v)
	}
	return out
}

func points(pts []geom.Position) []string {
	out := make([]string, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, num(p.X), num(p.Y))
	}
	return out
}

// Encode writes fig to w.
func Encode(w io.Writer, fig *taoplot.Figure) error {
	if fig == nil {
		return errors.New("scene: nil figure")
	}
	sw := &writer{w: bufio.NewWriter(w)}
	sw.open("figure")
	sw.leaf("region", quote(fig.Region))
	for i := range fig.Panels {
		if err := sw.panel(&fig.Panels[i]); err != nil {
			return err
		}
	}
	sw.close()
	sw.w.WriteByte('\n')
	return sw.w.Flush()
}

func (w *writer) panel(p *taoplot.Panel) error {
	w.open("panel")
	w.leaf("name", quote(p.Name))
	w.leaf("kind", string(p.Kind))
	for _, f := range []struct{ key, val string }{{"title", p.Title}, {"xlabel", p.XLabel}, {"ylabel", p.YLabel}} {
		if f.val != "" {
			w.leaf(f.key, quote(f.val))
		}
	}
	a := p.Axes
	if a != (taoplot.Axes{}) {
		w.open("axes")
		w.leaf("x", num(a.XMin), num(a.XMax), strconv.Itoa(a.XDiv))
		w.leaf("y", num(a.YMin), num(a.YMax), strconv.Itoa(a.YDiv))
		w.close()
	}
	if p.Grid {
		w.leaf("grid")
	}
	if p.Legend {
		w.leaf("legend")
	}
	for _, s := range p.Series {
		w.series(s)
	}
	w.open("layer")
	for _, prim := range p.Layer.Primitives {
		if err := w.primitive(prim); err != nil {
			return fmt.Errorf("scene: panel %s: %w", p.Name, err)
		}
	}
	w.close()
	for _, d := range p.Layer.Diagnostics {
		w.open("diagnostic")
		w.leaf("index", strconv.Itoa(d.Index))
		w.leaf("name", quote(d.Name))
		w.leaf("class", Class(d.Err))
		msg := ""
		if d.Err != nil {
			msg = d.Err.Error()
		}
		w.leaf("message", quote(msg))
		w.close()
	}
	w.close()
	return nil
}

// Class names the diagnostic class of err.
func Class(err error) string {
	switch {
	case errors.Is(err, geom.ErrDegenerate):
		return ClassDegenerate
	case errors.Is(err, protocol.ErrLookupMiss):
		return ClassLookupMiss
	}
	return ClassOther
}

func (w *writer) series(s curve.Series) {
	w.open("series")
	w.leaf("name", quote(s.Name))
	if s.Legend != "" {
		w.leaf("legend", quote(s.Legend))
	}
	if s.Line != nil {
		w.primitive(*s.Line)
	}
	if s.Markers != nil {
		w.primitive(*s.Markers)
	}
	if h := s.Histogram; h != nil {
		w.open("histogram")
		w.leaf("dividers", nums(h.Dividers...)...)
		w.leaf("weights", nums(h.Weights...)...)
		w.primitive(h.Outline)
		w.close()
	}
	w.close()
}

func (w *writer) style(s geom.Style) {
	var args []string
	if s.Color != "" {
		args = append(args, "(color "+quote(s.Color)+")")
	}
	if s.Width != 0 {
		args = append(args, "(width "+num(s.Width)+")")
	}
	if s.Dash != "" {
		args = append(args, "(dash "+s.Dash+")")
	}
	if s.Fill != "" {
		args = append(args, "(fill "+quote(s.Fill)+")")
	}
	if s.Hidden {
		args = append(args, "(hidden)")
	}
	w.leaf("style", args...)
}

func (w *writer) primitive(p geom.Primitive) error {
	switch p := p.(type) {
	case geom.Line:
		w.open("line")
		w.leaf("a", nums(p.A.X, p.A.Y)...)
		w.leaf("b", nums(p.B.X, p.B.Y)...)
		w.style(p.Style)
	case geom.Polyline:
		w.open("polyline")
		w.leaf("pts", points(p.Points)...)
		w.style(p.Style)
	case geom.Polygon:
		w.open("polygon")
		w.leaf("pts", points(p.Points)...)
		w.style(p.Style)
	case geom.Ellipse:
		w.open("ellipse")
		w.leaf("center", nums(p.Center.X, p.Center.Y)...)
		w.leaf("size", nums(p.Width, p.Height)...)
		if p.Clip != nil {
			w.leaf("clip", nums(p.Clip.Min, p.Clip.Max)...)
		}
		w.style(p.Style)
	case geom.Arc:
		w.open("arc")
		w.leaf("center", nums(p.Center.X, p.Center.Y)...)
		w.leaf("radius", num(p.Radius))
		w.leaf("angles", nums(p.Start, p.End)...)
		w.style(p.Style)
	case geom.Text:
		w.open("text " + quote(p.Text))
		w.leaf("at", nums(p.At.X, p.At.Y)...)
		if p.HAlign != "" {
			w.leaf("halign", string(p.HAlign))
		}
		if p.VAlign != "" {
			w.leaf("valign", string(p.VAlign))
		}
		if p.Rotation != 0 {
			w.leaf("rotation", num(p.Rotation))
		}
		w.style(p.Style)
	case geom.Markers:
		w.open("markers")
		w.leaf("symbol", quote(p.Symbol))
		w.leaf("size", num(p.Size))
		w.leaf("edge", num(p.EdgeWidth))
		w.leaf("pts", points(p.Points)...)
		w.style(p.Style)
	default:
		return fmt.Errorf("unsupported primitive %T", p)
	}
	w.close()
	return nil
}
