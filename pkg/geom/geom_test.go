package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	tests := []struct {
		name   string
		l1, l2 HLine
		want   Position
		ok     bool
	}{
		{
			name: "axes",
			l1:   LineThrough(Pt(-1, 0), Pt(1, 0)),
			l2:   LineThrough(Pt(0, -1), Pt(0, 1)),
			want: Pt(0, 0),
			ok:   true,
		},
		{
			name: "diagonals",
			l1:   LineThrough(Pt(0, 0), Pt(2, 2)),
			l2:   LineThrough(Pt(0, 2), Pt(2, 0)),
			want: Pt(1, 1),
			ok:   true,
		},
		{
			name: "offset verticals",
			l1:   LineThrough(Pt(3, 0), Pt(3, 1)),
			l2:   LineThrough(Pt(5, 0), Pt(5, 7)),
			ok:   false,
		},
		{
			name: "degenerate line",
			l1:   LineThrough(Pt(1, 1), Pt(1, 1)),
			l2:   LineThrough(Pt(0, 0), Pt(1, 0)),
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Intersect(tt.l1, tt.l2)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want.X, p.X, 1e-12)
				assert.InDelta(t, tt.want.Y, p.Y, 1e-12)
			}
		})
	}
}

func TestIntersectNearlyParallel(t *testing.T) {
	theta := 0.3
	a := Pt(1.1, 2.2)
	b := Pt(7.3, 4.9)
	l1 := LineThrough(a.Add(Perp(theta).Scale(-0.5)), a.Add(Perp(theta).Scale(0.7)))
	l2 := LineThrough(b.Add(Perp(theta).Scale(-0.5)), b.Add(Perp(theta).Scale(0.7)))
	_, ok := Intersect(l1, l2)
	assert.False(t, ok, "rounding noise must not produce a far away center")
}

func TestPolarAngle(t *testing.T) {
	c := Pt(1, 1)
	assert.InDelta(t, 0, PolarAngle(c, Pt(2, 1)), 1e-12)
	assert.InDelta(t, 90, PolarAngle(c, Pt(1, 2)), 1e-12)
	assert.InDelta(t, 180, PolarAngle(c, Pt(0, 1)), 1e-12)
	assert.InDelta(t, 270, PolarAngle(c, Pt(1, 0)), 1e-12)
	assert.InDelta(t, 315, PolarAngle(c, Pt(2, 0)), 1e-12)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.Equal(t, 350.0, NormalizeDegrees(-10))
	assert.Equal(t, 30.0, NormalizeDegrees(750))
}

func TestArcEndpointsAndBounds(t *testing.T) {
	a := Arc{Center: Pt(0, 0), Radius: 2, Start: 350, End: 370}
	s, e := a.StartPoint(), a.EndPoint()
	assert.InDelta(t, 2*math.Cos(350*math.Pi/180), s.X, 1e-12)
	assert.InDelta(t, 2*math.Sin(10*math.Pi/180), e.Y, 1e-12)
	assert.InDelta(t, 20, a.Sweep(), 1e-12)

	bb := a.Bounds()
	assert.InDelta(t, 2, bb.Max.X, 1e-12, "arc crosses 0 degrees")
}

func TestEllipseClipBounds(t *testing.T) {
	e := Ellipse{Center: Pt(5, 0), Width: 10, Height: 2, Clip: &Span{Min: 5, Max: 20}}
	bb := e.Bounds()
	assert.Equal(t, 5.0, bb.Min.X)
	assert.Equal(t, 10.0, bb.Max.X)
	assert.Equal(t, -1.0, bb.Min.Y)
}

func TestLayerBoundsIncludesHidden(t *testing.T) {
	var l Layer
	l.Add(Line{A: Pt(0, 0), B: Pt(1, 1)})
	l.Add(Line{A: Pt(-3, 0), B: Pt(0, 4), Style: Style{Hidden: true}})
	l.Note(3, "q1", ErrDegenerate)

	bb := l.Bounds()
	assert.Equal(t, -3.0, bb.Min.X)
	assert.Equal(t, 4.0, bb.Max.Y)
	require.Len(t, l.Diagnostics, 1)
	assert.ErrorIs(t, l.Diagnostics[0].Err, ErrDegenerate)
	assert.Contains(t, l.Diagnostics[0].String(), "q1")
}

func TestRotateAbout(t *testing.T) {
	p := RotateAbout(Pt(2, 1), Pt(1, 1), math.Pi/2)
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 2, p.Y, 1e-12)
}
