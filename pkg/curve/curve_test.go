package curve

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const curveTable = `name;STR;T;orbit.x
line.color;ENUM;T;Blue
line.pattern;ENUM;T;Dashed
line.width;INT;T;2
symbol.color;ENUM;T;Red
symbol.fill_pattern;ENUM;T;solid_fill
symbol.height;REAL;T;6.0
symbol.type;ENUM;T;circle_filled
symbol.line_width;INT;T;1
draw_symbols;LOGIC;T;T
legend_text;STR;T;\gb\dx\u
`

func style(t *testing.T, text string) Style {
	t.Helper()
	tbl, err := protocol.RequireTable("plot_curve r1.g.c1", text)
	require.NoError(t, err)
	s, err := StyleFromTable(tbl)
	require.NoError(t, err)
	return s
}

func TestHistogramScenario(t *testing.T) {
	h, err := NewHistogram([]geom.Position{geom.Pt(0, 1), geom.Pt(1, 3), geom.Pt(2, 2)}, 3)
	require.NoError(t, err)

	require.Len(t, h.Dividers, 4)
	assert.Equal(t, 0.0, h.Dividers[0])
	assert.Equal(t, 2.0, h.Dividers[3])
	assert.Equal(t, []float64{1, 3, 2}, h.Weights)

	pts := h.Outline.Points
	require.Len(t, pts, 8)
	assert.Equal(t, geom.Pt(0, 0), pts[0])
	assert.Equal(t, geom.Pt(0, 1), pts[1])
	assert.Equal(t, geom.Pt(2, 0), pts[7])
	for i := 1; i+1 < len(pts)-1; i += 2 {
		assert.Equal(t, pts[i].Y, pts[i+1].Y, "bin tops are flat")
	}
}

func TestHistogramSinglePointAndErrors(t *testing.T) {
	h, err := NewHistogram([]geom.Position{geom.Pt(4, 2), geom.Pt(4, 5)}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, 4, 4.5}, h.Dividers)
	assert.Equal(t, []float64{0, 7}, h.Weights)

	_, err = NewHistogram([]geom.Position{geom.Pt(0, 1)}, 0)
	assert.True(t, errors.Is(err, geom.ErrDegenerate))
	_, err = NewHistogram(nil, 3)
	assert.True(t, errors.Is(err, geom.ErrDegenerate))
}

func TestStyleFromTable(t *testing.T) {
	s := style(t, curveTable)
	assert.Equal(t, "blue", s.LineColor)
	assert.Equal(t, "dashed", s.LinePattern)
	assert.Equal(t, 2.0, s.LineWidth)
	assert.Equal(t, "red", s.MarkerColor)
	assert.Equal(t, "red", s.MarkerFill)
	assert.Equal(t, 6.0, s.MarkerSize)
	assert.Equal(t, GlyphCircle, s.MarkerSymbol.Glyph)
	assert.Equal(t, `\gb\dx\u`, s.Legend)
}

func TestStyleFillAndSize(t *testing.T) {
	text := curveTable +
		"symbol.fill_pattern;ENUM;T;hatched\n" +
		"draw_symbols;LOGIC;T;F\n"
	s := style(t, text)
	assert.Equal(t, "none", s.MarkerFill)
	assert.Equal(t, 0.0, s.MarkerSize)
	assert.Equal(t, 0.0, s.MarkerEdgeWidth)

	series, err := Assemble(Curve{Name: "c1", Style: s, Markers: []geom.Position{{X: 1, Y: 2}}}, KindData)
	require.NoError(t, err)
	require.NotNil(t, series.Markers)
	assert.Equal(t, 0.0, series.Markers.Size)
	assert.Equal(t, 0.0, series.Markers.EdgeWidth)
}

func TestStyleLookupMiss(t *testing.T) {
	tbl, err := protocol.ParseTable("plot_curve r1.g.c1", "line.color;ENUM;T;Blue\n")
	require.NoError(t, err)
	_, err = StyleFromTable(tbl)
	assert.True(t, errors.Is(err, protocol.ErrLookupMiss))

	tbl, err = protocol.ParseTable("plot_curve r1.g.c1", curveTable+"symbol.type;ENUM;T;hexagram\n")
	require.NoError(t, err)
	_, err = StyleFromTable(tbl)
	var miss *protocol.LookupMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "symbol", miss.Table)
}

func TestAssembleData(t *testing.T) {
	c := Curve{
		Name:    "c1",
		Points:  []geom.Position{geom.Pt(2, 1), geom.Pt(0, 5), geom.Pt(1, 2), geom.Pt(0, 3)},
		Markers: []geom.Position{geom.Pt(3, 0), geom.Pt(1, 1)},
		Style:   style(t, curveTable),
	}
	s, err := Assemble(c, KindData)
	require.NoError(t, err)
	require.NotNil(t, s.Line)
	require.NotNil(t, s.Markers)
	assert.Nil(t, s.Histogram)

	assert.Equal(t, []geom.Position{geom.Pt(0, 3), geom.Pt(0, 5), geom.Pt(1, 2), geom.Pt(2, 1)}, s.Line.Points)
	assert.Equal(t, []geom.Position{geom.Pt(1, 1), geom.Pt(3, 0)}, s.Markers.Points)
	assert.Equal(t, 1.0, s.Line.Style.Width)
	assert.Equal(t, "dashed", s.Line.Style.Dash)
	assert.Equal(t, 3.0, s.Markers.Size)
	assert.Equal(t, 0.5, s.Markers.EdgeWidth)
	assert.Equal(t, "o", s.Markers.Symbol)
	assert.Equal(t, "red", s.Markers.Style.Fill)
	assert.Len(t, s.Primitives(), 2)
}

func TestAssemblePhaseSpace(t *testing.T) {
	st := style(t, curveTable)
	s, err := Assemble(Curve{Markers: []geom.Position{geom.Pt(0, 0)}, Style: st}, KindPhaseSpace)
	require.NoError(t, err)
	assert.Nil(t, s.Line, "no line points means markers only")
	assert.NotNil(t, s.Markers)

	s, err = Assemble(Curve{Points: []geom.Position{geom.Pt(0, 0)}, Style: st}, KindPhaseSpace)
	require.NoError(t, err)
	assert.NotNil(t, s.Line)
}

func TestAssembleHistogram(t *testing.T) {
	c := Curve{
		Name:   "h",
		Points: []geom.Position{geom.Pt(2, 2), geom.Pt(0, 1), geom.Pt(1, 3)},
		Style:  style(t, curveTable),
		Bins:   3,
	}
	s, err := Assemble(c, KindHistogram)
	require.NoError(t, err)
	require.NotNil(t, s.Histogram)
	assert.Nil(t, s.Line)
	assert.Nil(t, s.Markers)
	assert.Equal(t, []float64{1, 3, 2}, s.Histogram.Weights)
	assert.Equal(t, "red", s.Histogram.Outline.Style.Color)

	bb := s.Bounds()
	assert.Equal(t, 0.0, bb.Min.X)
	assert.Equal(t, 2.0, bb.Max.X)
	assert.Equal(t, 3.0, bb.Max.Y)

	_, err = Assemble(c, KindLatLayout)
	assert.Error(t, err)
}

func TestLookupSymbol(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		glyph Glyph
		sides int
	}{
		{"square", "s", GlyphSquare, 0},
		{"0", "s", GlyphSquare, 0},
		{"6", "s", GlyphSquare, 0},
		{"times", "(6,2,0)", GlyphAsterisk, 6},
		{"3", "(6,2,0)", GlyphAsterisk, 6},
		{"circle", `$\circ$`, GlyphRing, 0},
		{"square_concave", "(4,1,45)", GlyphStarred, 4},
		{"star_of_david", "(6,1,0)", GlyphStarred, 6},
		{"red_cross", "P", GlyphFilledPlus, 0},
		{"Circle_Dot", `$\odot$`, GlyphCircleDot, 0},
		{"-1", ",", GlyphPixel, 0},
		{"-2", ",", GlyphPixel, 0},
		{"-3", "(3,0,0)", GlyphPolygon, 3},
		{"-12", "(12,0,0)", GlyphPolygon, 12},
		{"18", "*", GlyphStar, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LookupSymbol(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.code, s.Code)
			assert.Equal(t, tt.glyph, s.Glyph)
			assert.Equal(t, tt.sides, s.Sides)
		})
	}

	_, err := LookupSymbol("-13")
	assert.ErrorIs(t, err, protocol.ErrLookupMiss)
	_, err = ParseCode("(4,7,0)")
	assert.Error(t, err)

	sq, err := ParseCode("(4,1,45)")
	require.NoError(t, err)
	assert.Equal(t, 45.0, sq.Angle)
}

func TestParsePoints(t *testing.T) {
	pts, err := ParsePoints("1;0.5;1.5\n2;1.0;-2.0D-1\n")
	require.NoError(t, err)
	assert.Equal(t, []geom.Position{geom.Pt(0.5, 1.5), geom.Pt(1, -0.2)}, pts)

	syms, err := ParseSymbols("1;7;0.5;1.5\n")
	require.NoError(t, err)
	assert.Equal(t, []geom.Position{geom.Pt(0.5, 1.5)}, syms)

	_, err = ParseSymbols("1;7;0.5\n")
	var m *protocol.MalformedParameterError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, 3, m.Field)
	assert.Equal(t, "plot_symbol", m.Query)
}
