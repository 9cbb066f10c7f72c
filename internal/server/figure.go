package server

import (
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// FigureResponse is the wire form of a draw pass, shared by the JSON and
// msgpack encodings.
type FigureResponse struct {
	Region string          `json:"region" msgpack:"region"`
	Panels []PanelResponse `json:"panels" msgpack:"panels"`
}

// PanelResponse is one panel of a figure.
type PanelResponse struct {
	Name        string               `json:"name" msgpack:"name"`
	Kind        string               `json:"kind" msgpack:"kind"`
	Title       string               `json:"title,omitempty" msgpack:"title,omitempty"`
	XLabel      string               `json:"xlabel,omitempty" msgpack:"xlabel,omitempty"`
	YLabel      string               `json:"ylabel,omitempty" msgpack:"ylabel,omitempty"`
	Frame       [4]float64           `json:"frame" msgpack:"frame"` // xmin, ymin, xmax, ymax
	XDiv        int                  `json:"xdiv,omitempty" msgpack:"xdiv,omitempty"`
	YDiv        int                  `json:"ydiv,omitempty" msgpack:"ydiv,omitempty"`
	Grid        bool                 `json:"grid,omitempty" msgpack:"grid,omitempty"`
	Legend      bool                 `json:"legend,omitempty" msgpack:"legend,omitempty"`
	Series      []SeriesResponse     `json:"series,omitempty" msgpack:"series,omitempty"`
	Primitives  []PrimitiveResponse  `json:"primitives" msgpack:"primitives"`
	Diagnostics []DiagnosticResponse `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// SeriesResponse names a curve and its legend entry. Its geometry is part of
// the panel primitives.
type SeriesResponse struct {
	Name     string    `json:"name" msgpack:"name"`
	Legend   string    `json:"legend,omitempty" msgpack:"legend,omitempty"`
	Color    string    `json:"color,omitempty" msgpack:"color,omitempty"`
	Dividers []float64 `json:"dividers,omitempty" msgpack:"dividers,omitempty"`
	Weights  []float64 `json:"weights,omitempty" msgpack:"weights,omitempty"`
}

// PrimitiveResponse is a flattened primitive. Type selects which fields
// are meaningful: a line carries its two ends in Points.
type PrimitiveResponse struct {
	Type      string        `json:"type" msgpack:"type"`
	Points    [][2]float64  `json:"points,omitempty" msgpack:"points,omitempty"`
	Center    *[2]float64   `json:"center,omitempty" msgpack:"center,omitempty"`
	Width     float64       `json:"width,omitempty" msgpack:"width,omitempty"`
	Height    float64       `json:"height,omitempty" msgpack:"height,omitempty"`
	Clip      *[2]float64   `json:"clip,omitempty" msgpack:"clip,omitempty"`
	Radius    float64       `json:"radius,omitempty" msgpack:"radius,omitempty"`
	Start     float64       `json:"start,omitempty" msgpack:"start,omitempty"`
	End       float64       `json:"end,omitempty" msgpack:"end,omitempty"`
	Text      string        `json:"text,omitempty" msgpack:"text,omitempty"`
	HAlign    string        `json:"halign,omitempty" msgpack:"halign,omitempty"`
	VAlign    string        `json:"valign,omitempty" msgpack:"valign,omitempty"`
	Rotation  float64       `json:"rotation,omitempty" msgpack:"rotation,omitempty"`
	Symbol    string        `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
	Size      float64       `json:"size,omitempty" msgpack:"size,omitempty"`
	EdgeWidth float64       `json:"edge_width,omitempty" msgpack:"edge_width,omitempty"`
	Style     StyleResponse `json:"style" msgpack:"style"`
}

// StyleResponse mirrors geom.Style.
type StyleResponse struct {
	Color  string  `json:"color,omitempty" msgpack:"color,omitempty"`
	Width  float64 `json:"width,omitempty" msgpack:"width,omitempty"`
	Dash   string  `json:"dash,omitempty" msgpack:"dash,omitempty"`
	Fill   string  `json:"fill,omitempty" msgpack:"fill,omitempty"`
	Hidden bool    `json:"hidden,omitempty" msgpack:"hidden,omitempty"`
}

// DiagnosticResponse is a skipped element or curve.
type DiagnosticResponse struct {
	Index   int    `json:"index" msgpack:"index"`
	Name    string `json:"name,omitempty" msgpack:"name,omitempty"`
	Class   string `json:"class" msgpack:"class"`
	Message string `json:"message" msgpack:"message"`
}

// ParamResponse is one row of a parameter table.
type ParamResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Settable *bool  `json:"settable,omitempty"`
	Value    any    `json:"value"`
}

func newFigureResponse(fig *taoplot.Figure) FigureResponse {
	out := FigureResponse{Region: fig.Region, Panels: make([]PanelResponse, 0, len(fig.Panels))}
	for i := range fig.Panels {
		out.Panels = append(out.Panels, newPanelResponse(&fig.Panels[i]))
	}
	return out
}

func newPanelResponse(p *taoplot.Panel) PanelResponse {
	f := p.Frame()
	out := PanelResponse{
		Name:       p.Name,
		Kind:       string(p.Kind),
		Title:      p.Title,
		XLabel:     p.XLabel,
		YLabel:     p.YLabel,
		Frame:      [4]float64{f.Min.X, f.Min.Y, f.Max.X, f.Max.Y},
		XDiv:       p.Axes.XDiv,
		YDiv:       p.Axes.YDiv,
		Grid:       p.Grid,
		Legend:     p.Legend,
		Primitives: make([]PrimitiveResponse, 0, len(p.Layer.Primitives)),
	}
	for _, s := range p.Series {
		sr := SeriesResponse{Name: s.Name, Legend: s.Legend}
		switch {
		case s.Line != nil:
			sr.Color = s.Line.Style.Color
		case s.Markers != nil:
			sr.Color = s.Markers.Style.Color
		}
		if h := s.Histogram; h != nil {
			sr.Dividers, sr.Weights = h.Dividers, h.Weights
		}
		out.Series = append(out.Series, sr)
	}
	for _, prim := range p.Layer.Primitives {
		if pr, ok := newPrimitiveResponse(prim); ok {
			out.Primitives = append(out.Primitives, pr)
		}
	}
	for _, d := range p.Layer.Diagnostics {
		dr := DiagnosticResponse{Index: d.Index, Name: d.Name, Class: scene.Class(d.Err)}
		if d.Err != nil {
			dr.Message = d.Err.Error()
		}
		out.Diagnostics = append(out.Diagnostics, dr)
	}
	return out
}

func pair(p geom.Position) [2]float64 { return [2]float64{p.X, p.Y} }

func pairs(pts []geom.Position) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = pair(p)
	}
	return out
}

func newStyleResponse(s geom.Style) StyleResponse {
	return StyleResponse(s)
}

func newPrimitiveResponse(prim geom.Primitive) (PrimitiveResponse, bool) {
	switch p := prim.(type) {
	case geom.Line:
		return PrimitiveResponse{Type: "line", Points: [][2]float64{pair(p.A), pair(p.B)}, Style: newStyleResponse(p.Style)}, true
	case geom.Polyline:
		return PrimitiveResponse{Type: "polyline", Points: pairs(p.Points), Style: newStyleResponse(p.Style)}, true
	case geom.Polygon:
		return PrimitiveResponse{Type: "polygon", Points: pairs(p.Points), Style: newStyleResponse(p.Style)}, true
	case geom.Ellipse:
		c := pair(p.Center)
		pr := PrimitiveResponse{Type: "ellipse", Center: &c, Width: p.Width, Height: p.Height, Style: newStyleResponse(p.Style)}
		if p.Clip != nil {
			pr.Clip = &[2]float64{p.Clip.Min, p.Clip.Max}
		}
		return pr, true
	case geom.Arc:
		c := pair(p.Center)
		return PrimitiveResponse{Type: "arc", Center: &c, Radius: p.Radius, Start: p.Start, End: p.End, Style: newStyleResponse(p.Style)}, true
	case geom.Text:
		return PrimitiveResponse{
			Type:     "text",
			Points:   [][2]float64{pair(p.At)},
			Text:     p.Text,
			HAlign:   string(p.HAlign),
			VAlign:   string(p.VAlign),
			Rotation: p.Rotation,
			Style:    newStyleResponse(p.Style),
		}, true
	case geom.Markers:
		return PrimitiveResponse{
			Type:      "markers",
			Points:    pairs(p.Points),
			Symbol:    p.Symbol,
			Size:      p.Size,
			EdgeWidth: p.EdgeWidth,
			Style:     newStyleResponse(p.Style),
		}, true
	}
	return PrimitiveResponse{}, false
}

func newParamResponses(t *protocol.Table) []ParamResponse {
	out := make([]ParamResponse, 0, t.Len())
	for _, p := range t.Params() {
		pr := ParamResponse{Name: p.Name, Type: p.Type, Value: p.Value()}
		if pr.Type == "" {
			pr.Type = p.Kind.String()
		}
		if p.HasSettable {
			settable := p.Settable
			pr.Settable = &settable
		}
		out = append(out, pr)
	}
	return out
}
