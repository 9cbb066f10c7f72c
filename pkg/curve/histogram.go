package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
)

// Histogram is a weighted histogram drawn as a step outline.
type Histogram struct {
	Dividers []float64 // len(Weights)+1 bin edges
	Weights  []float64
	Outline  geom.Polyline
}

// NewHistogram bins the x values of pts, weighted by their y values, into
// bins equal bins over [min x, max x]. The last bin is closed on the right.
// pts must be sorted by x.
func NewHistogram(pts []geom.Position, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("histogram needs at least one bin, got %d: %w", bins, geom.ErrDegenerate)
	}
	if len(pts) == 0 {
		return Histogram{}, fmt.Errorf("histogram has no points: %w", geom.ErrDegenerate)
	}

	xs := make([]float64, len(pts))
	ws := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ws[i] = p.X, p.Y
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram bins are half open; nudge the top edge so max x counts.
	counting := append([]float64(nil), dividers...)
	counting[bins] = math.Nextafter(hi, math.Inf(1))
	weights := stat.Histogram(nil, counting, xs, ws)

	h := Histogram{Dividers: dividers, Weights: weights}
	h.Outline.Points = stepOutline(dividers, weights)
	return h, nil
}

// stepOutline traces the bin tops from the baseline and back down.
func stepOutline(dividers, weights []float64) []geom.Position {
	pts := make([]geom.Position, 0, 2*len(weights)+2)
	pts = append(pts, geom.Pt(dividers[0], 0))
	for i, w := range weights {
		pts = append(pts, geom.Pt(dividers[i], w), geom.Pt(dividers[i+1], w))
	}
	return append(pts, geom.Pt(dividers[len(dividers)-1], 0))
}
