package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlScene = `# Scene: Box On Floor
name = "box"
texelScale = 0.5

[[meshes]]
name = "floor"

  [[meshes.shapes]]
  type = "quad"
  corners = [[-1.0, 0.0, 1.0], [1.0, 0.0, 1.0], [1.0, 0.0, -1.0], [-1.0, 0.0, -1.0]]

  [[meshes.shapes]]
  type = "cube"
  extent = [0.5, 0.5, 0.5]
  offset = [0.0, 0.25, 0.0]
  color = [0.8, 0.2, 0.2, 1.0]

[[lights]]
name = "key"
type = "spot"
position = [0.0, 2.0, 0.0]
target = [0.0, 0.0, 0.0]
intensity = [1.0, 0.9, 0.8]
spotCutoff = [40.0, 30.0]
spotExponent = 2.0

[[lights]]
name = "sun"
type = "directional"
direction = [0.0, -1.0, 0.0]
intensity = [0.2, 0.2, 0.2, 1.0]
`

const yamlScene = `# Scene: Box On Floor
name: box
texelScale: 0.5
meshes:
  - name: floor
    shapes:
      - type: quad
        corners: [[-1, 0, 1], [1, 0, 1], [1, 0, -1], [-1, 0, -1]]
      - type: cube
        extent: [0.5, 0.5, 0.5]
        offset: [0, 0.25, 0]
        color: [0.8, 0.2, 0.2, 1]
lights:
  - name: key
    type: spot
    position: [0, 2, 0]
    target: [0, 0, 0]
    intensity: [1, 0.9, 0.8]
    spotCutoff: [40, 30]
    spotExponent: 2
  - name: sun
    type: directional
    direction: [0, -1, 0]
    intensity: [0.2, 0.2, 0.2, 1]
`

func TestParseSceneFile_Formats(t *testing.T) {
	tests := []struct {
		ext  string
		data string
	}{
		{".toml", tomlScene},
		{".yaml", yamlScene},
		{".yml", yamlScene},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			file, err := ParseSceneFile([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			assert.Equal(t, "box", file.Name)
			assert.Equal(t, float32(0.5), file.TexelScale)
			require.Len(t, file.Meshes, 1)
			require.Len(t, file.Meshes[0].Shapes, 2)
			assert.Equal(t, "quad", file.Meshes[0].Shapes[0].Type)
			assert.Len(t, file.Meshes[0].Shapes[0].Corners, 4)
			assert.Equal(t, [3]float32{0, 0.25, 0}, file.Meshes[0].Shapes[1].Offset)
			require.NotNil(t, file.Meshes[0].Shapes[1].Color)

			require.Len(t, file.Lights, 2)
			key := file.Lights[0]
			assert.Equal(t, "spot", key.Type)
			require.NotNil(t, key.SpotCutoff)
			assert.Equal(t, [2]float32{40, 30}, *key.SpotCutoff)
			require.NotNil(t, key.SpotExponent)
			assert.Equal(t, float32(2), *key.SpotExponent)
			assert.Nil(t, key.Attenuation)
		})
	}
}

func TestParseSceneFile_Errors(t *testing.T) {
	_, err := ParseSceneFile([]byte("name = 1"), ".json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseSceneFile([]byte("unknownField = 1"), ".toml")
	assert.Error(t, err)

	_, err = ParseSceneFile([]byte("unknownField: 1"), ".yaml")
	assert.Error(t, err)

	_, err = ParseSceneFile([]byte("texelScale = [1"), ".toml")
	assert.Error(t, err)
}

func TestSceneFile_Build(t *testing.T) {
	file, err := ParseSceneFile([]byte(tomlScene), ".toml")
	require.NoError(t, err)

	s, err := file.Build(scene.Config{})
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), s.Config.TexelScale)

	meshes := s.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, "floor", meshes[0].Name)
	mesh := meshes[0].Mesh
	assert.Len(t, mesh.Lightmap.QuadSurfaces, 7)
	assert.Equal(t, mgl32.Vec4{0.8, 0.2, 0.2, 1}, mesh.Vertices[4].Color)

	// The quad faces up
	assert.InDelta(t, 1, mesh.Lightmap.QuadSurfaces[0].Normal.Y(), 1e-6)

	key := s.FindLight("key")
	require.NotNil(t, key)
	assert.Equal(t, lights.Spot, key.Type)
	assert.Equal(t, mgl32.Vec4{1, 0.9, 0.8, 1}, key.Intensity)
	forward := key.Forward()
	assert.InDelta(t, -1, forward.Y(), 1e-5)

	sun := s.FindLight("sun")
	require.NotNil(t, sun)
	state := sun.CurrentState()
	assert.InDelta(t, 1, state.Position.Y(), 1e-5, "directional position points back at the light")
	assert.Zero(t, state.Position.W())
}

func TestSceneFile_BuildConfigOverride(t *testing.T) {
	file := &SceneFile{Name: "empty", TexelScale: 0.5}
	s, err := file.Build(scene.Config{TexelScale: 0.25})
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), s.Config.TexelScale)
}

func TestSceneFile_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		file SceneFile
	}{
		{
			name: "unknown shape",
			file: SceneFile{Meshes: []MeshSpec{{Shapes: []ShapeSpec{{Type: "sphere"}}}}},
		},
		{
			name: "quad with three corners",
			file: SceneFile{Meshes: []MeshSpec{{Shapes: []ShapeSpec{{
				Type:    "quad",
				Corners: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
			}}}}},
		},
		{
			name: "degenerate quad",
			file: SceneFile{Meshes: []MeshSpec{{Shapes: []ShapeSpec{{
				Type:    "quad",
				Corners: [][3]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
			}}}}},
		},
		{
			name: "unknown light type",
			file: SceneFile{Lights: []LightSpec{{Type: "area"}}},
		},
		{
			name: "bad intensity",
			file: SceneFile{Lights: []LightSpec{{Intensity: []float32{1, 1}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Build(scene.Config{})
			assert.Error(t, err)
		})
	}
}

func TestLightSpec_Defaults(t *testing.T) {
	light, err := LightSpec{Position: [3]float32{1, 2, 3}}.Light()
	require.NoError(t, err)

	assert.Equal(t, lights.Point, light.Type)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, light.Position)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, light.Intensity)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, light.Attenuation)
	assert.Equal(t, mgl32.Vec2{90, 90}, light.SpotCutoff)
	assert.Nil(t, light.Orbit)
}

func TestLightSpec_Orbit(t *testing.T) {
	target := [3]float32{0, 0, 0}
	light, err := LightSpec{
		Type:   "spot",
		Target: &target,
		Orbit:  &OrbitSpec{Center: [3]float32{0, 2, 0}, Radius: 1, Speed: 1},
	}.Light()
	require.NoError(t, err)
	require.NotNil(t, light.Orbit)

	// Placed at the start of the orbit
	assert.InDelta(t, 1, light.Position.X(), 1e-5)
	assert.InDelta(t, 2, light.Position.Y(), 1e-5)
	assert.Equal(t, mgl32.Vec3{}, light.Orbit.Target)
}

func TestLoadScene(t *testing.T) {
	t.Run("builtin", func(t *testing.T) {
		s, err := LoadScene("cube", scene.Config{TexelScale: 0.5})
		require.NoError(t, err)
		assert.Equal(t, "cube", s.Name)
	})

	t.Run("path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "floor-box.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlScene), 0o644))

		s, err := LoadScene(path, scene.Config{})
		require.NoError(t, err)
		assert.Equal(t, "box", s.Name)
		assert.Len(t, s.Lights(), 2)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := LoadScene("nowhere", scene.Config{})
		assert.ErrorIs(t, err, ErrUnknownScene)

		_, err = LoadScene("file:nowhere", scene.Config{})
		assert.ErrorIs(t, err, ErrUnknownScene)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScene(filepath.Join(t.TempDir(), "missing.toml"), scene.Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read scene file")
	})
}

func TestLoadSceneFile_NameFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.toml")
	require.NoError(t, os.WriteFile(path, []byte("texelScale = 0.5\n"), 0o644))

	file, err := LoadSceneFile(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", file.Name)
}
