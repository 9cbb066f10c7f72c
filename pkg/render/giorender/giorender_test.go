package giorender

import (
	"image"
	"math"
	"testing"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
)

func TestArcPoints(t *testing.T) {
	pts := arcPoints(geom.Arc{Center: geom.Pt(1, 1), Radius: 2, Start: 0, End: 90})
	require.Len(t, pts, 19)
	assert.InDelta(t, 3, pts[0].X, 1e-9)
	assert.InDelta(t, 1, pts[0].Y, 1e-9)
	last := pts[len(pts)-1]
	assert.InDelta(t, 1, last.X, 1e-9)
	assert.InDelta(t, 3, last.Y, 1e-9)
}

func TestEllipseClip(t *testing.T) {
	pts := ellipsePoints(geom.Ellipse{Center: geom.Pt(0, 0), Width: 4, Height: 2, Clip: &geom.Span{Min: -1, Max: 2}})
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.X, -1.0)
		assert.LessOrEqual(t, p.X, 2.0)
	}
	assert.Len(t, pts, 72)
}

func TestDash(t *testing.T) {
	line := []f32.Point{f32.Pt(0, 0), f32.Pt(10, 0)}
	segs := dash(line, []float64{2, 3})
	require.Len(t, segs, 2)
	assert.Equal(t, f32.Pt(0, 0), segs[0][0])
	assert.InDelta(t, 2, segs[0][len(segs[0])-1].X, 1e-5)
	assert.InDelta(t, 5, segs[1][0].X, 1e-5)
	assert.InDelta(t, 7, segs[1][len(segs[1])-1].X, 1e-5)

	// Runs carry across vertices.
	bent := []f32.Point{f32.Pt(0, 0), f32.Pt(1, 0), f32.Pt(1, 3)}
	segs = dash(bent, []float64{2, 10})
	require.Len(t, segs, 1)
	assert.Len(t, segs[0], 3)
	assert.InDelta(t, 1, segs[0][2].Y, 1e-5)
}

func TestRegularAndStar(t *testing.T) {
	c := f32.Pt(5, 5)
	for _, p := range regular(c, 6, 2, 0) {
		assert.InDelta(t, 2, math.Hypot(float64(p.X-c.X), float64(p.Y-c.Y)), 1e-5)
	}
	assert.Len(t, starPoints(c, 5, 3, 0), 10)
}

func TestDrawLayer(t *testing.T) {
	gtx := layout.Context{
		Ops:         new(op.Ops),
		Constraints: layout.Exact(image.Pt(300, 200)),
	}
	cam := view.NewCamera(300, 200)
	cam.Stretch(geom.BoundingBox{Min: geom.Pt(0, -2), Max: geom.Pt(10, 2)})

	var layer geom.Layer
	layer.Add(
		geom.Line{A: geom.Pt(0, 0), B: geom.Pt(10, 0), Style: geom.Style{Color: "black", Dash: "dashed"}},
		geom.Polygon{Points: []geom.Position{geom.Pt(1, -1), geom.Pt(2, -1), geom.Pt(2, 1)}, Style: geom.Style{Color: "blue", Fill: "blue"}},
		geom.Ellipse{Center: geom.Pt(5, 0), Width: 1, Height: 1, Style: geom.Style{Color: "red"}},
		geom.Arc{Center: geom.Pt(7, 0), Radius: 1, Start: 0, End: 180, Style: geom.Style{Color: "green"}},
		geom.Text{At: geom.Pt(3, 1), Text: `$\beta$`, Rotation: 90, Style: geom.Style{Color: "black"}},
		geom.Markers{Points: []geom.Position{geom.Pt(4, 0)}, Symbol: "*", Size: 8, Style: geom.Style{Color: "red", Fill: "red"}},
		geom.Markers{Points: []geom.Position{geom.Pt(6, 0)}, Symbol: "+", Size: 8, Style: geom.Style{Color: "red"}},
	)
	assert.NotPanics(t, func() { New().DrawLayer(gtx, cam, &layer) })
}
