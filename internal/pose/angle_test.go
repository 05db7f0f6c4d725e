package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name string
		u, v r3.Vec
		want float64
	}{
		{"Identical unit vectors", r3.Vec{X: 1}, r3.Vec{X: 1}, 0},
		{"Opposite unit vectors", r3.Vec{X: 1}, r3.Vec{X: -1}, math.Pi},
		{"Orthogonal vectors", r3.Vec{X: 1}, r3.Vec{Y: 1}, math.Pi / 2},
		{"Scaled vectors share a direction", r3.Vec{X: 2, Y: 2}, r3.Vec{X: 5, Y: 5}, 0},
		{"Diagonal against axis", r3.Vec{X: 1, Y: 1}, r3.Vec{X: 1}, math.Pi / 4},
		{"Out of plane", r3.Vec{Z: 3}, r3.Vec{X: 1, Y: 1}, math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngleBetween(tt.u, tt.v), epsilon)
		})
	}
}

func TestAngleBetweenUnitVectors(t *testing.T) {
	for _, u := range []r3.Vec{
		{X: 1},
		{Y: 1},
		r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}),
		r3.Unit(r3.Vec{X: -0.3, Y: 0.1, Z: 0.9}),
	} {
		assert.InDelta(t, 0, AngleBetween(u, u), 1e-7, "angle(u, u) for %v", u)
		assert.InDelta(t, math.Pi, AngleBetween(u, r3.Scale(-1, u)), 1e-7, "angle(u, -u) for %v", u)
	}
}

func TestAngleBetweenSymmetric(t *testing.T) {
	pairs := [][2]r3.Vec{
		{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 0.5, Z: 2}},
		{{X: 0.1, Y: -0.7, Z: 0}, {X: 3, Y: 3, Z: -3}},
		{{X: 1000, Y: 1}, {X: 1, Y: 1000}},
	}
	for _, p := range pairs {
		assert.Equal(t, AngleBetween(p[0], p[1]), AngleBetween(p[1], p[0]))
		a, b := flatten(p[0]), flatten(p[1])
		assert.Equal(t, AngleBetween2D(a, b), AngleBetween2D(b, a))
	}
}

func TestAngleBetweenClampsOvershoot(t *testing.T) {
	// Nearly parallel vectors can produce a unit dot product slightly above 1.
	u := r2.Vec{X: 0.1, Y: 0.2}
	v := r2.Vec{X: 0.1 * 3, Y: 0.2 * 3}
	got := AngleBetween2D(u, v)
	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, 0, got, 1e-7)
}

func TestNewAngle(t *testing.T) {
	origin := r3.Vec{}
	a := Segment{From: origin, To: r3.Vec{X: 1}}
	b := Segment{From: origin, To: r3.Vec{X: 1, Z: 1}}

	got := NewAngle("tilt", a, b)

	assert.Equal(t, "tilt", got.Name)
	assert.InDelta(t, 0, got.Angle2D, epsilon, "2D ignores depth")
	assert.InDelta(t, math.Pi/4, got.Angle3D, epsilon)
	assert.Equal(t, Degrees(got.Angle2D), got.Angle2DDegrees)
	assert.Equal(t, Degrees(got.Angle3D), got.Angle3DDegrees)
	assert.InDelta(t, 45, got.Angle3DDegrees, epsilon)
}

func TestNewAngleUsesSegmentDirection(t *testing.T) {
	a := Segment{From: r3.Vec{X: 5, Y: 5}, To: r3.Vec{X: 5, Y: 6}}
	b := Segment{From: r3.Vec{X: -2, Y: 3}, To: r3.Vec{X: -1, Y: 3}}
	got := NewAngle("corner", a, b)
	assert.InDelta(t, 90, got.Angle2DDegrees, epsilon)
	assert.InDelta(t, 90, got.Angle3DDegrees, epsilon)
}

func TestDegrees(t *testing.T) {
	assert.Equal(t, 180.0, Degrees(math.Pi))
	assert.Equal(t, 0.0, Degrees(0))
	assert.InDelta(t, 90, Degrees(math.Pi/2), epsilon)
}

func TestSegmentDegenerate(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	assert.True(t, Segment{From: p, To: p}.Degenerate())
	assert.True(t, Segment{From: p, To: r3.Vec{X: 1, Y: 2, Z: 4}}.Degenerate(), "no planar extent")
	assert.False(t, Segment{From: p, To: r3.Vec{X: 2, Y: 2, Z: 3}}.Degenerate())
}
