package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ring = Axis{Min: 0, Max: 360}

func lines(prims []geom.Primitive) []geom.Line {
	var out []geom.Line
	for _, p := range prims {
		if l, ok := p.(geom.Line); ok {
			out = append(out, l)
		}
	}
	return out
}

func texts(prims []geom.Primitive) []geom.Text {
	var out []geom.Text
	for _, p := range prims {
		if t, ok := p.(geom.Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// topEdgeLength sums the horizontal visible segments drawn at height y.
func topEdgeLength(prims []geom.Primitive, y float64) float64 {
	var n float64
	for _, p := range prims {
		switch v := p.(type) {
		case geom.Line:
			if !v.Style.Hidden && v.A.Y == y && v.B.Y == y {
				n += math.Abs(v.B.X - v.A.X)
			}
		case geom.Polygon:
			for i := range v.Points {
				a, b := v.Points[i], v.Points[(i+1)%len(v.Points)]
				if a.Y == y && b.Y == y {
					n += math.Abs(b.X - a.X)
				}
			}
		}
	}
	return n
}

func TestSimpleBoxScenario(t *testing.T) {
	d, err := BuildElement(Element{
		Index: 1, Start: 0, End: 2, LineWidth: 1,
		Shape: "box", Above: 1, Below: 1, Color: "blue", Name: "name",
	}, Axis{Min: 0, Max: 10})
	require.NoError(t, err)
	require.Len(t, d.Primitives, 4)

	rect, ok := d.Primitives[0].(geom.Polygon)
	require.True(t, ok)
	assert.False(t, rect.Style.Filled())
	bb := rect.Bounds()
	assert.Equal(t, geom.Pt(0, -1), bb.Min)
	assert.Equal(t, 2.0, bb.Width())
	assert.Equal(t, 2.0, bb.Height())

	ls := lines(d.Primitives)
	require.Len(t, ls, 2)
	for _, l := range ls {
		assert.True(t, l.Style.Hidden, "box diagonals are zero opacity helpers")
	}

	ts := texts(d.Primitives)
	require.Len(t, ts, 1)
	assert.Equal(t, "name", ts[0].Text)
	assert.InDelta(t, 1, ts[0].At.X, 1e-12)
	assert.InDelta(t, -1.1, ts[0].At.Y, 1e-12)
	assert.Equal(t, geom.AlignCenter, ts[0].HAlign)
	assert.Equal(t, geom.AlignTop, ts[0].VAlign)
	assert.Equal(t, "blue", ts[0].Style.Color)
}

func TestStraightShapes(t *testing.T) {
	tests := []struct {
		shape    string
		lines    int
		polygons int
		ellipses int
	}{
		{"box", 2, 1, 0},
		{"xbox", 2, 1, 0},
		{"x", 2, 0, 0},
		{"bow_tie", 4, 0, 0},
		{"diamond", 4, 0, 0},
		{"circle", 2, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.shape, func(t *testing.T) {
			d, err := BuildElement(Element{Start: 2, End: 6, Shape: tt.shape, Above: 1, Below: 1, Color: "red", Name: "e"}, ring)
			require.NoError(t, err)

			var nl, np, ne int
			for _, p := range d.Primitives {
				switch p.(type) {
				case geom.Line:
					nl++
				case geom.Polygon:
					np++
				case geom.Ellipse:
					ne++
				}
			}
			assert.Equal(t, tt.lines, nl)
			assert.Equal(t, tt.polygons, np)
			assert.Equal(t, tt.ellipses, ne)
			assert.False(t, d.Wrapped)

			bb := geom.NewBoundingBox()
			for _, p := range d.Primitives {
				if _, ok := p.(geom.Text); !ok {
					bb.ExpandBox(p.Bounds())
				}
			}
			assert.Equal(t, 2.0, bb.Min.X)
			assert.Equal(t, 6.0, bb.Max.X)
			assert.LessOrEqual(t, bb.Max.Y, 1.0)
			assert.GreaterOrEqual(t, bb.Min.Y, -1.0)
		})
	}
}

func TestDiamondPoints(t *testing.T) {
	d, err := BuildElement(Element{Start: 0, End: 4, Shape: "diamond", Above: 2, Below: 1, Color: "red"}, ring)
	require.NoError(t, err)
	ls := lines(d.Primitives)
	require.Len(t, ls, 4)
	assert.Equal(t, geom.Pt(0, 0), ls[0].A)
	assert.Equal(t, geom.Pt(2, -1), ls[0].B)
	assert.Equal(t, geom.Pt(2, 2), ls[1].B)
	assert.Equal(t, geom.Pt(4, 0), ls[3].B)
}

func TestWraparoundSymmetry(t *testing.T) {
	for _, shape := range []string{"box", "xbox", "x", "bow_tie", "diamond", "circle"} {
		t.Run(shape, func(t *testing.T) {
			wrapped, err := BuildElement(Element{Start: 350, End: 10, Shape: shape, Above: 1, Below: 1, Color: "blue", Name: "ring"}, ring)
			require.NoError(t, err)
			require.True(t, wrapped.Wrapped)

			assert.InDelta(t, 20, wrapped.Length(), 1e-12)
			require.Len(t, wrapped.Spans, 2)
			assert.Equal(t, geom.Span{Min: 350, Max: 360}, wrapped.Spans[0])
			assert.Equal(t, geom.Span{Min: 0, Max: 10}, wrapped.Spans[1])

			left, err := BuildElement(Element{Start: 350, End: 360, Shape: shape, Above: 1, Below: 1, Color: "blue"}, ring)
			require.NoError(t, err)
			right, err := BuildElement(Element{Start: 0, End: 10, Shape: shape, Above: 1, Below: 1, Color: "blue"}, ring)
			require.NoError(t, err)
			assert.InDelta(t, left.Length()+right.Length(), wrapped.Length(), 1e-12)

			manual := topEdgeLength(left.Primitives, 1) + topEdgeLength(right.Primitives, 1)
			assert.InDelta(t, manual, topEdgeLength(wrapped.Primitives, 1), 1e-12)

			for _, p := range wrapped.Primitives {
				if _, ok := p.(geom.Text); ok {
					continue
				}
				bb := p.Bounds()
				inLeft := bb.Min.X >= 350 && bb.Max.X <= 360
				inRight := bb.Min.X >= 0 && bb.Max.X <= 10
				assert.True(t, inLeft || inRight, "fragment %+v crosses the split", bb)
			}
		})
	}
}

func TestWrappedBoxSegments(t *testing.T) {
	d, err := BuildElement(Element{Start: 350, End: 10, Shape: "box", Above: 1, Below: 2, Color: "blue"}, ring)
	require.NoError(t, err)
	ls := lines(d.Primitives)
	require.Len(t, ls, 6)
	assert.InDelta(t, 20, topEdgeLength(d.Primitives, 1), 1e-12)
	assert.InDelta(t, 20, topEdgeLength(d.Primitives, -2), 1e-12)

	verticals := 0
	for _, l := range ls {
		if l.A.X == l.B.X {
			verticals++
			assert.Contains(t, []float64{350, 10}, l.A.X)
			assert.InDelta(t, 3, l.Length(), 1e-12)
		}
	}
	assert.Equal(t, 2, verticals)
}

func TestWrappedCircleClips(t *testing.T) {
	d, err := BuildElement(Element{Start: 355, End: 15, Shape: "circle", Above: 1, Below: 1, Color: "green"}, ring)
	require.NoError(t, err)

	var es []geom.Ellipse
	for _, p := range d.Primitives {
		if e, ok := p.(geom.Ellipse); ok {
			es = append(es, e)
		}
	}
	require.Len(t, es, 2)
	for _, e := range es {
		assert.InDelta(t, 20, e.Width, 1e-12)
		require.NotNil(t, e.Clip)
	}
	assert.Equal(t, geom.Span{Min: 355, Max: 360}, *es[0].Clip)
	assert.Equal(t, geom.Span{Min: 0, Max: 15}, *es[1].Clip)
	assert.InDelta(t, 365, es[0].Center.X, 1e-12)
	assert.InDelta(t, 5, es[1].Center.X, 1e-12)
}

func TestWrappedLabels(t *testing.T) {
	d, err := BuildElement(Element{Start: 350, End: 10, Shape: "x", Above: 1, Below: 1, Color: "blue", Name: "IP"}, ring)
	require.NoError(t, err)
	ts := texts(d.Primitives)
	require.Len(t, ts, 2)
	assert.Equal(t, geom.AlignRight, ts[0].HAlign)
	assert.Equal(t, 360.0, ts[0].At.X)
	assert.Equal(t, geom.AlignLeft, ts[1].HAlign)
	assert.Equal(t, 0.0, ts[1].At.X)
	assert.InDelta(t, -1.1, ts[1].At.Y, 1e-12)
}

func TestBuildSkipsBadElements(t *testing.T) {
	res := Build([]Element{
		{Index: 1, Start: 0, End: 1, Shape: "box", Above: 1, Below: 1, Color: "red", Name: "ok"},
		{Index: 2, Start: 1, End: 2, Shape: "hexagon", Above: 1, Below: 1, Color: "red", Name: "odd"},
		{Index: 3, Start: 2, End: 2, Shape: "box", Above: 1, Below: 1, Color: "red", Name: "thin"},
		{Index: 4, Start: 2, End: 3, Shape: "box", Above: 1, Below: 1, Color: "", Name: "pale"},
		{Index: 5, Start: 3, End: 4, Shape: "xbox", Above: 1, Below: 1, Color: "red", Name: "ok2"},
	}, Axis{Min: 0, Max: 4})

	require.Len(t, res.Elements, 2)
	assert.Equal(t, 1, res.Elements[0].Index)
	assert.Equal(t, 5, res.Elements[1].Index)

	require.Len(t, res.Diagnostics, 3)
	assert.True(t, errors.Is(res.Diagnostics[0].Err, protocol.ErrLookupMiss))
	assert.True(t, errors.Is(res.Diagnostics[1].Err, geom.ErrDegenerate))
	assert.True(t, errors.Is(res.Diagnostics[2].Err, protocol.ErrLookupMiss))

	layer := res.Layer()
	assert.Len(t, layer.Diagnostics, 3)
	assert.NotEmpty(t, layer.Primitives)
}

func TestParseElements(t *testing.T) {
	text := "1;0.0;0.5;1;XBOX;0.3;0.3;Red;Q1\n" +
		"2;359.5;0.5;2;Box;0.5;0.25;BLUE;B1\n"
	elems, err := ParseElements(text)
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, Element{Index: 1, Start: 0, End: 0.5, LineWidth: 1, Shape: "xbox", Above: 0.3, Below: 0.3, Color: "red", Name: "Q1"}, elems[0])
	assert.True(t, elems[1].Wraps())

	_, err = ParseElements("1;0.0;0.5;1;box;0.3\n")
	var m *protocol.MalformedParameterError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, 6, m.Field)
}

func TestBaseline(t *testing.T) {
	l := Baseline(Axis{Min: -10, Max: 100})
	assert.InDelta(t, -11, l.A.X, 1e-9)
	assert.InDelta(t, 110, l.B.X, 1e-9)
	assert.Equal(t, "black", l.Style.Color)
}
