package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// parallelTolerance is the relative determinant below which two lines are
// treated as parallel.
const parallelTolerance = 1e-12

func vec(p Position) r2.Vec     { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Position { return Position{X: v.X, Y: v.Y} }

// Add returns p + q.
func (p Position) Add(q Position) Position { return fromVec(r2.Add(vec(p), vec(q))) }

// Sub returns p - q.
func (p Position) Sub(q Position) Position { return fromVec(r2.Sub(vec(p), vec(q))) }

// Scale returns f·p.
func (p Position) Scale(f float64) Position { return fromVec(r2.Scale(f, vec(p))) }

// Lerp returns the point a fraction t of the way from p to q.
func (p Position) Lerp(q Position, t float64) Position {
	return p.Add(q.Sub(p).Scale(t))
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Position) float64 { return r2.Norm(r2.Sub(vec(a), vec(b))) }

// Perp is the unit offset toward the inner side of a trajectory heading theta
// radians: (sin θ, -cos θ). The outer side is -Perp(theta).
func Perp(theta float64) Position {
	return Position{X: math.Sin(theta), Y: -math.Cos(theta)}
}

// RotateAbout rotates p by alpha radians about center.
func RotateAbout(p, center Position, alpha float64) Position {
	return fromVec(r2.Rotate(vec(p), alpha, vec(center)))
}

// HLine is a line in homogeneous form A·x + B·y = C.
type HLine struct {
	A, B, C float64
}

// LineThrough returns the line through p1 and p2.
func LineThrough(p1, p2 Position) HLine {
	return HLine{
		A: p1.Y - p2.Y,
		B: p2.X - p1.X,
		C: p2.X*p1.Y - p1.X*p2.Y,
	}
}

// Intersect solves two lines by Cramer's rule. ok is false when the lines are
// parallel or either is degenerate.
func Intersect(l1, l2 HLine) (p Position, ok bool) {
	n1, n2 := r2.Vec{X: l1.A, Y: l1.B}, r2.Vec{X: l2.A, Y: l2.B}
	scale := r2.Norm(n1) * r2.Norm(n2)
	if scale == 0 {
		return Position{}, false
	}
	d := r2.Cross(n1, n2)
	if math.Abs(d) <= parallelTolerance*scale {
		return Position{}, false
	}
	dx := l1.C*l2.B - l1.B*l2.C
	dy := l1.A*l2.C - l1.C*l2.A
	return Position{X: dx / d, Y: dy / d}, true
}

// PolarAngle returns the angle of p seen from center, in degrees in [0, 360).
func PolarAngle(center, p Position) float64 {
	d := r2.Sub(vec(p), vec(center))
	deg := math.Atan2(d.Y, d.X) * 180 / math.Pi
	return NormalizeDegrees(deg)
}

// NormalizeDegrees maps deg into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
