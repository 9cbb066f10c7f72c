package taoplot

import (
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/catalog"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
)

// Figure is the result of one draw pass over a plot region. Panels are in
// display order, top to bottom; a layout or floor plan panel comes last.
type Figure struct {
	Region string
	Panels []Panel
}

// Diagnostics collects the diagnostics of every panel in panel order.
func (f *Figure) Diagnostics() []geom.Diagnostic {
	var out []geom.Diagnostic
	for _, p := range f.Panels {
		out = append(out, p.Layer.Diagnostics...)
	}
	return out
}

// Panel finds the first panel of kind k.
func (f *Figure) Panel(k curve.Kind) (*Panel, bool) {
	for i := range f.Panels {
		if f.Panels[i].Kind == k {
			return &f.Panels[i], true
		}
	}
	return nil, false
}

// Axes are the plotted data limits and the number of major divisions.
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64
	XDiv, YDiv int
}

// Bounds is the axis rectangle.
func (a Axes) Bounds() geom.BoundingBox {
	return geom.BoundingBox{Min: geom.Pt(a.XMin, a.YMin), Max: geom.Pt(a.XMax, a.YMax)}
}

// Empty reports whether the limits enclose no area.
func (a Axes) Empty() bool { return a.XMax <= a.XMin || a.YMax <= a.YMin }

// Panel is one graph. Title, XLabel, YLabel and the series legends are
// already translated to math markup.
type Panel struct {
	Name   string // graph name, e.g. r1.g
	Kind   curve.Kind
	Title  string
	XLabel string
	YLabel string
	Axes   Axes
	Grid   bool
	Legend bool
	Series []curve.Series

	// Layer holds every primitive of the panel in drawing order, series
	// included, plus its diagnostics.
	Layer geom.Layer

	// Catalog is the plot_shapes listing used by a layout or floor plan panel.
	Catalog *catalog.Catalog
}

// Frame returns the region a backend should show: the axes when they are
// set, otherwise the bounds of everything drawn.
func (p *Panel) Frame() geom.BoundingBox {
	if !p.Axes.Empty() {
		return p.Axes.Bounds()
	}
	return p.Layer.Bounds()
}
