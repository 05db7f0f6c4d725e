package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a directed pair of points, From -> To.
type Segment struct {
	From r3.Vec
	To   r3.Vec
}

// Vector returns To - From.
func (s Segment) Vector() r3.Vec { return r3.Sub(s.To, s.From) }

// Degenerate reports whether the segment has zero length in either the plane
// or in space, which leaves its direction undefined.
func (s Segment) Degenerate() bool {
	v := s.Vector()
	return r3.Norm(v) == 0 || r2.Norm(flatten(v)) == 0
}

// Angle is a named measurement between two segments. Radians lie in [0, π],
// degrees in [0, 180].
type Angle struct {
	Name           string
	First          Segment
	Second         Segment
	Angle2D        float64
	Angle3D        float64
	Angle2DDegrees float64
	Angle3DDegrees float64
}

// NewAngle measures the angle between the direction vectors of a and b. The 2D
// value uses only the X and Y components. Neither segment may be degenerate.
func NewAngle(name string, a, b Segment) Angle {
	u, v := a.Vector(), b.Vector()
	rad2 := AngleBetween2D(flatten(u), flatten(v))
	rad3 := AngleBetween(u, v)
	return Angle{
		Name:           name,
		First:          a,
		Second:         b,
		Angle2D:        rad2,
		Angle3D:        rad3,
		Angle2DDegrees: Degrees(rad2),
		Angle3DDegrees: Degrees(rad3),
	}
}

// AngleBetween returns the angle in radians between u and v. Both vectors must
// have non-zero length.
func AngleBetween(u, v r3.Vec) float64 {
	return math.Acos(clamp(r3.Dot(r3.Unit(u), r3.Unit(v))))
}

// AngleBetween2D is AngleBetween for planar vectors.
func AngleBetween2D(u, v r2.Vec) float64 {
	return math.Acos(clamp(r2.Dot(r2.Unit(u), r2.Unit(v))))
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// clamp keeps a unit dot product inside the domain of acos.
func clamp(d float64) float64 {
	return math.Max(-1, math.Min(1, d))
}

func flatten(v r3.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}
