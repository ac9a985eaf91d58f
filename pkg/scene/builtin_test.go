package scene

import (
	"testing"

	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuiltinScene(t *testing.T) {
	for _, info := range BuiltinScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, ok := NewBuiltinScene(info.ID, Config{TexelScale: 0.5})
			require.True(t, ok)
			assert.Equal(t, info.ID, s.Name)
			assert.NotEmpty(t, s.Meshes())
			assert.NotEmpty(t, s.Lights())

			for _, object := range s.Meshes() {
				require.NotNil(t, object.Mesh.Lightmap)
				assert.NotEmpty(t, object.Mesh.Lightmap.Patches)
			}
		})
	}

	_, ok := NewBuiltinScene("missing", Config{})
	assert.False(t, ok)
}

func TestNewRoomScene(t *testing.T) {
	s := NewRoomScene(Config{TexelScale: 0.5})

	meshes := s.Meshes()
	require.Len(t, meshes, 1)
	mesh := meshes[0].Mesh
	assert.Len(t, mesh.Lightmap.QuadSurfaces, 12, "six walls and six box faces")

	// Side walls are tinted
	assert.Greater(t, mesh.Vertices[0].Color.X(), mesh.Vertices[0].Color.Y())
	assert.Greater(t, mesh.Vertices[4].Color.Y(), mesh.Vertices[4].Color.X())

	ceiling := s.FindLight("ceiling")
	require.NotNil(t, ceiling)
	assert.NotNil(t, ceiling.Orbit)

	spot := s.FindLight("spot")
	require.NotNil(t, spot)
	assert.Equal(t, lights.Spot, spot.Type)

	sky := s.FindLight("sky")
	require.NotNil(t, sky)
	assert.Equal(t, lights.Directional, sky.Type)

	var states []lights.State
	for _, light := range s.Lights() {
		states = append(states, light.CurrentState())
	}
	mesh.Lightmap.Process(states)

	var indirect float32
	for _, patch := range mesh.Lightmap.Patches {
		_, bounce := mesh.Lightmap.LightAt(patch.TexelIndex)
		indirect += bounce.X()
	}
	assert.Greater(t, indirect, float32(0), "walls of a closed room exchange light")
}

func TestNewCubeScene(t *testing.T) {
	s := NewCubeScene(Config{})
	require.Len(t, s.Meshes(), 1)
	assert.Len(t, s.Meshes()[0].Mesh.Lightmap.QuadSurfaces, 6)
	require.Len(t, s.Lights(), 1)
	assert.Equal(t, lights.Point, s.Lights()[0].Type)
}
