package lights

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit moves a light on a horizontal circle around Center.
// Spot lights keep aiming at Target while orbiting.
type Orbit struct {
	Center mgl32.Vec3
	Radius float32
	Speed  float32 // radians per second
	Phase  float32 // starting angle in radians
	Target mgl32.Vec3
}

// PositionAt returns the orbit position at the given time in seconds
func (o *Orbit) PositionAt(seconds float32) mgl32.Vec3 {
	angle := o.Phase + o.Speed*seconds
	return o.Center.Add(mgl32.Vec3{
		o.Radius * math32.Cos(angle),
		0,
		o.Radius * math32.Sin(angle),
	})
}

// Apply places the light on the orbit
func (o *Orbit) Apply(l *Light, seconds float32) {
	l.Position = o.PositionAt(seconds)
	if l.Type == Spot {
		l.LookAt(o.Target)
	}
}

func cosDegrees(degrees float32) float32 {
	return math32.Cos(mgl32.DegToRad(degrees))
}
