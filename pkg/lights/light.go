package lights

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies how a light emits
type Type int

const (
	Point Type = iota
	Directional
	Spot
)

// String returns the config name of the light type
func (t Type) String() string {
	switch t {
	case Point:
		return "point"
	case Directional:
		return "directional"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts a config name into a light type
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "point":
		return Point, nil
	case "directional", "sun":
		return Directional, nil
	case "spot":
		return Spot, nil
	default:
		return Point, fmt.Errorf("unknown light type: %q", name)
	}
}

// Lights face their local -Z axis; +Z points back towards the light.
var (
	forward  = mgl32.Vec3{0, 0, -1}
	backward = mgl32.Vec3{0, 0, 1}
)

// Light is a dynamic scene light
type Light struct {
	Name         string
	Type         Type
	Position     mgl32.Vec3
	Orientation  mgl32.Quat
	Intensity    mgl32.Vec4
	Attenuation  mgl32.Vec3 // constant, linear, quadratic
	SpotCutoff   mgl32.Vec2 // outer and inner cone angles in degrees
	SpotExponent float32
	Orbit        *Orbit // optional animation, nil for static lights
}

// NewLight creates a light of the given type with neutral defaults
func NewLight(lightType Type) *Light {
	return &Light{
		Type:         lightType,
		Orientation:  mgl32.QuatIdent(),
		Intensity:    mgl32.Vec4{1, 1, 1, 1},
		Attenuation:  mgl32.Vec3{1, 0, 0},
		SpotCutoff:   mgl32.Vec2{90, 90},
		SpotExponent: 1,
	}
}

// NewPointLight creates a point light at position
func NewPointLight(position mgl32.Vec3, intensity mgl32.Vec4) *Light {
	l := NewLight(Point)
	l.Position = position
	l.Intensity = intensity
	return l
}

// NewDirectionalLight creates a light infinitely far away whose rays travel along direction
func NewDirectionalLight(direction mgl32.Vec3, intensity mgl32.Vec4) *Light {
	l := NewLight(Directional)
	l.Intensity = intensity
	l.Orientation = orientationFor(direction)
	return l
}

// NewSpotLight creates a spot light at position aimed at target.
// The light fades from full intensity at innerDegrees to zero at outerDegrees.
func NewSpotLight(position, target mgl32.Vec3, intensity mgl32.Vec4, outerDegrees, innerDegrees, exponent float32) *Light {
	l := NewLight(Spot)
	l.Position = position
	l.Intensity = intensity
	l.SpotCutoff = mgl32.Vec2{outerDegrees, innerDegrees}
	l.SpotExponent = exponent
	l.LookAt(target)
	return l
}

// LookAt orients the light so that its forward axis points at target
func (l *Light) LookAt(target mgl32.Vec3) {
	dir := target.Sub(l.Position)
	if dir.Len() == 0 {
		return
	}
	l.Orientation = orientationFor(dir)
}

// Forward returns the world direction the light shines along
func (l *Light) Forward() mgl32.Vec3 {
	return l.Orientation.Rotate(forward)
}

// Backward returns the world direction pointing back towards the light
func (l *Light) Backward() mgl32.Vec3 {
	return l.Orientation.Rotate(backward)
}

// CurrentState snapshots the light for one solver iteration
func (l *Light) CurrentState() State {
	state := State{
		Intensity:   l.Intensity,
		Attenuation: l.Attenuation,
	}

	if l.Type == Directional {
		state.Position = l.Backward().Vec4(0)
	} else {
		state.Position = l.Position.Vec4(1)
	}

	if l.Type == Spot {
		state.SpotDirection = l.Backward()
		state.SpotCutoff = mgl32.Vec2{
			cosDegrees(l.SpotCutoff.X()),
			cosDegrees(l.SpotCutoff.Y()),
		}
		state.SpotExponent = l.SpotExponent
	} else {
		state.SpotCutoff = mgl32.Vec2{-1, -1}
		state.SpotExponent = 0
	}

	return state
}

// Animate advances the light's orbit, if any, to the given time in seconds
func (l *Light) Animate(seconds float32) {
	if l.Orbit != nil {
		l.Orbit.Apply(l, seconds)
	}
}

func orientationFor(dir mgl32.Vec3) mgl32.Quat {
	return mgl32.QuatBetweenVectors(forward, dir.Normalize())
}
