package lights

import "github.com/go-gl/mathgl/mgl32"

// State is a snapshot of a light taken once per solver iteration
type State struct {
	Position      mgl32.Vec4 // w=1 for point and spot lights, w=0 for directional (xyz points towards the light)
	Intensity     mgl32.Vec4 // RGBA intensity
	Attenuation   mgl32.Vec3 // constant, linear, quadratic
	SpotDirection mgl32.Vec3
	SpotCutoff    mgl32.Vec2 // cosines of the outer and inner cone angles; x <= -0.5 disables the spot factor
	SpotExponent  float32
}

// IsPositional reports whether the light sits at a point in space
func (s State) IsPositional() bool {
	return s.Position.W() == 1
}
