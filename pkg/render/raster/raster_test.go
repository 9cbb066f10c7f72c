package raster

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

func sampleFigure() *taoplot.Figure {
	line := geom.Polyline{
		Points: []geom.Position{geom.Pt(0, 0), geom.Pt(5, 1), geom.Pt(10, -1)},
		Style:  geom.Style{Color: "blue", Width: 2},
	}
	marks := geom.Markers{
		Points: line.Points,
		Symbol: "o",
		Size:   6,
		Style:  geom.Style{Color: "red", Fill: "red"},
	}
	data := taoplot.Panel{
		Name:   "top.x",
		Kind:   curve.KindData,
		Title:  `$\beta$ [m]`,
		XLabel: "s (m)",
		Axes:   taoplot.Axes{XMin: 0, XMax: 10, YMin: -2, YMax: 2, XDiv: 5, YDiv: 4},
		Grid:   true,
		Legend: true,
		Series: []curve.Series{{Name: "c1", Legend: `$\beta_{x}$`, Line: &line, Markers: &marks}},
	}
	data.Layer.Add(line, marks)

	lay := taoplot.Panel{Name: "r1.g", Kind: curve.KindLatLayout, Axes: data.Axes}
	lay.Layer.Add(
		geom.Line{A: geom.Pt(0, 0), B: geom.Pt(10, 0), Style: geom.Style{Color: "black"}},
		geom.Polygon{
			Points: []geom.Position{geom.Pt(2, -1), geom.Pt(4, -1), geom.Pt(4, 1), geom.Pt(2, 1)},
			Style:  geom.Style{Color: "blue", Fill: "blue"},
		},
		geom.Ellipse{Center: geom.Pt(7, 0), Width: 2, Height: 2, Clip: &geom.Span{Min: 6.5, Max: 10}, Style: geom.Style{Color: "green"}},
		geom.Arc{Center: geom.Pt(9, 0), Radius: 0.5, Start: 0, End: 180, Style: geom.Style{Color: "magenta", Dash: "dashed"}},
		geom.Text{At: geom.Pt(3, 1.2), Text: "Q1", HAlign: geom.AlignCenter, VAlign: geom.AlignBottom, Style: geom.Style{Color: "black"}},
	)
	return &taoplot.Figure{Region: "top", Panels: []taoplot.Panel{data, lay}}
}

func painted(img image.Image) int {
	var n int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 400, 300

	img, err := Render(sampleFigure(), opts)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
	assert.Positive(t, painted(img))
}

func TestRenderEmptyFigure(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 50, 40

	img, err := Render(&taoplot.Figure{}, opts)
	require.NoError(t, err)
	assert.Zero(t, painted(img), "an empty figure is all background")
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(nil, DefaultOptions())
	assert.Error(t, err)

	bad := DefaultOptions()
	bad.Width = 0
	_, err = Render(sampleFigure(), bad)
	assert.Error(t, err)

	bad = DefaultOptions()
	bad.FontSize = -1
	_, err = Render(sampleFigure(), bad)
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 320, 240

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, sampleFigure(), opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 2.5, 5, 7.5, 10}, ticks(0, 10, 4))
	assert.Len(t, ticks(-1, 1, 0), 6)
	assert.Nil(t, ticks(1, 1, 3))
	assert.Equal(t, "0", tickLabel(1e-15))
	assert.Equal(t, "0.25", tickLabel(0.25))
}
