package lights

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, expected, actual mgl32.Vec3) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-5, "component %d: expected %v, got %v", i, expected, actual)
	}
}

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight(Point)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, l.Attenuation)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, l.Intensity)
	assert.Equal(t, mgl32.Vec2{90, 90}, l.SpotCutoff)
	assert.Equal(t, float32(1), l.SpotExponent)
	vecNear(t, mgl32.Vec3{0, 0, -1}, l.Forward())
	vecNear(t, mgl32.Vec3{0, 0, 1}, l.Backward())
}

func TestCurrentState_Point(t *testing.T) {
	l := NewPointLight(mgl32.Vec3{1, 2, 3}, mgl32.Vec4{2, 2, 2, 1})
	state := l.CurrentState()

	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, state.Position)
	assert.True(t, state.IsPositional())
	assert.Equal(t, mgl32.Vec2{-1, -1}, state.SpotCutoff)
	assert.Equal(t, float32(0), state.SpotExponent)
	assert.Equal(t, mgl32.Vec4{2, 2, 2, 1}, state.Intensity)
}

func TestCurrentState_Directional(t *testing.T) {
	// Sunlight travelling straight down
	l := NewDirectionalLight(mgl32.Vec3{0, -2, 0}, mgl32.Vec4{1, 1, 1, 1})
	state := l.CurrentState()

	assert.False(t, state.IsPositional())
	assert.Equal(t, float32(0), state.Position.W())
	vecNear(t, mgl32.Vec3{0, 1, 0}, state.Position.Vec3())
	assert.Equal(t, mgl32.Vec2{-1, -1}, state.SpotCutoff)
}

func TestCurrentState_Spot(t *testing.T) {
	l := NewSpotLight(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 0, 0}, mgl32.Vec4{1, 1, 1, 1}, 45, 30, 2)
	state := l.CurrentState()

	assert.Equal(t, mgl32.Vec4{0, 5, 0, 1}, state.Position)
	vecNear(t, mgl32.Vec3{0, -1, 0}, l.Forward())
	// The spot direction points back at the light so that it lines up with
	// the patch-to-light vector inside the cone
	vecNear(t, mgl32.Vec3{0, 1, 0}, state.SpotDirection)
	assert.InDelta(t, math32.Cos(mgl32.DegToRad(45)), state.SpotCutoff.X(), 1e-6)
	assert.InDelta(t, math32.Cos(mgl32.DegToRad(30)), state.SpotCutoff.Y(), 1e-6)
	assert.Equal(t, float32(2), state.SpotExponent)
}

func TestLookAt_OppositeDirection(t *testing.T) {
	l := NewLight(Spot)
	l.LookAt(mgl32.Vec3{0, 0, 4})
	vecNear(t, mgl32.Vec3{0, 0, 1}, l.Forward())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
		wantErr  bool
	}{
		{"point", Point, false},
		{"", Point, false},
		{"Directional", Directional, false},
		{"sun", Directional, false},
		{" spot ", Spot, false},
		{"area", Point, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected.String(), got.String())
		})
	}
}

func TestOrbit_Apply(t *testing.T) {
	l := NewSpotLight(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, mgl32.Vec4{1, 1, 1, 1}, 30, 20, 1)
	l.Orbit = &Orbit{
		Center: mgl32.Vec3{0, 2, 0},
		Radius: 1,
		Speed:  math32.Pi / 2,
		Target: mgl32.Vec3{0, 0, 0},
	}

	l.Animate(0)
	vecNear(t, mgl32.Vec3{1, 2, 0}, l.Position)

	l.Animate(1)
	vecNear(t, mgl32.Vec3{0, 2, 1}, l.Position)
	vecNear(t, mgl32.Vec3{0, -2, -1}.Normalize(), l.Forward())
}

func TestAnimate_StaticLight(t *testing.T) {
	l := NewPointLight(mgl32.Vec3{1, 1, 1}, mgl32.Vec4{1, 1, 1, 1})
	l.Animate(10)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Position)
}
