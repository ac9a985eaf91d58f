package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray with an origin, a unit direction and a maximum distance
type Ray struct {
	Origin      mgl32.Vec3
	Direction   mgl32.Vec3
	MaxDistance float32
}

// NewRay creates an unbounded ray
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, MaxDistance: math32.Inf(1)}
}

// RayFromEndPoints creates a ray starting at start that reaches end at t == MaxDistance
func RayFromEndPoints(start, end mgl32.Vec3) Ray {
	delta := end.Sub(start)
	length := delta.Len()
	return Ray{
		Origin:      start,
		Direction:   delta.Mul(1.0 / length),
		MaxDistance: length,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
