package floorplan

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// Orbit is the beam orbit overlay in floor coordinates.
type Orbit struct {
	X     []float64
	Y     []float64
	Color string
}

// ParseOrbit decodes a floor_orbit response. Each line is
// ?;index;x|y;v1;v2;... and values of the same axis are concatenated in
// response order.
func ParseOrbit(text string) (Orbit, error) {
	var o Orbit
	for _, rec := range protocol.Records("floor_orbit", text) {
		if _, err := rec.Int(1); err != nil {
			return Orbit{}, err
		}
		axis, err := rec.Lower(2)
		if err != nil {
			return Orbit{}, err
		}
		vals, err := rec.Reals(3)
		if err != nil {
			return Orbit{}, err
		}
		switch strings.TrimSpace(axis) {
		case "x":
			o.X = append(o.X, vals...)
		case "y":
			o.Y = append(o.Y, vals...)
		}
	}
	return o, nil
}

// Points pairs X and Y values. Unpaired trailing values are dropped.
func (o Orbit) Points() []geom.Position {
	n := min(len(o.X), len(o.Y))
	pts := make([]geom.Position, n)
	for i := range n {
		pts[i] = geom.Pt(o.X[i], o.Y[i])
	}
	return pts
}

// Polyline is the overlay primitive.
func (o Orbit) Polyline() geom.Polyline {
	return geom.Polyline{Points: o.Points(), Style: geom.Style{Color: o.Color, Width: 1}}
}
