package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedLight(name string, x float32) *lights.Light {
	light := lights.NewPointLight(mgl32.Vec3{x, 1, 0}, mgl32.Vec4{1, 1, 1, 1})
	light.Name = name
	return light
}

func TestApplyLights(t *testing.T) {
	s := scene.New("test", scene.Config{})
	mesh := scene.NewMeshObject("mesh", &scene.Mesh{})
	keep := namedLight("keep", 0)
	drop := namedLight("drop", 0)
	s.Add(mesh)
	s.Add(scene.NewLightObject(keep))
	s.Add(scene.NewLightObject(drop))

	ApplyLights(s, []*lights.Light{namedLight("keep", 5), namedLight("new", 7)})

	s.Lock()
	defer s.Unlock()

	assert.Len(t, s.Objects, 3)
	assert.Same(t, mesh, s.Objects[0], "meshes are untouched")
	assert.Same(t, keep, s.FindLight("keep"), "existing lights are updated in place")
	assert.Equal(t, float32(5), keep.Position.X())
	assert.Nil(t, s.FindLight("drop"))
	require.NotNil(t, s.FindLight("new"))
	assert.Equal(t, float32(7), s.FindLight("new").Position.X())
}

func TestApplyLights_DuplicateNames(t *testing.T) {
	s := scene.New("test", scene.Config{})
	existing := namedLight("lamp", 0)
	s.Add(scene.NewLightObject(existing))

	ApplyLights(s, []*lights.Light{
		namedLight("lamp", 1), namedLight("fill", 2), namedLight("lamp", 3),
		namedLight("fill", 4), namedLight("fill", 5),
	})

	s.Lock()
	defer s.Unlock()

	require.Len(t, s.Lights(), 2, "every name is present once")
	assert.Same(t, existing, s.Lights()[0])
	assert.Equal(t, float32(3), existing.Position.X(), "the last definition wins")
	assert.Equal(t, "fill", s.Lights()[1].Name)
	assert.Equal(t, float32(5), s.Lights()[1].Position.X())
}

func TestApplyLights_ObjectWithoutLight(t *testing.T) {
	s := scene.New("test", scene.Config{})
	empty := &scene.Object{Kind: scene.LightObject, Name: "empty"}
	s.Add(empty)
	s.Add(scene.NewLightObject(namedLight("old", 0)))

	require.NotPanics(t, func() {
		ApplyLights(s, []*lights.Light{nil, namedLight("new", 1)})
	})

	s.Lock()
	defer s.Unlock()

	require.Len(t, s.Objects, 2)
	assert.Same(t, empty, s.Objects[0], "objects without a light are left alone")
	require.Len(t, s.Lights(), 1)
	assert.Equal(t, "new", s.Lights()[0].Name)
}

func TestLightWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlScene), 0o644))

	file, err := LoadSceneFile(path)
	require.NoError(t, err)
	s, err := file.Build(scene.Config{})
	require.NoError(t, err)

	watcher, err := NewLightWatcher(path, s)
	require.NoError(t, err)
	defer watcher.Close()

	reloaded := make(chan int, 16)
	watcher.OnReload(func(count int, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- count:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	updated := tomlScene + `
[[lights]]
name = "fill"
position = [1.0, 1.0, 1.0]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	// Truncating writes may be observed half way, wait for the complete file
	timeout := time.After(5 * time.Second)
	for count := 0; count != 3; {
		select {
		case count = <-reloaded:
		case <-timeout:
			t.Fatal("lights were not reloaded")
		}
	}

	s.Lock()
	assert.Len(t, s.Lights(), 3)
	assert.NotNil(t, s.FindLight("fill"))
	s.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestLightWatcher_ReloadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lights:\n  - type: area\n"), 0o644))

	s := scene.New("test", scene.Config{})
	watcher, err := NewLightWatcher(path, s)
	require.NoError(t, err)
	defer watcher.Close()

	_, err = watcher.Reload()
	assert.Error(t, err)
	assert.Empty(t, s.Objects)
}

func TestNewLightWatcher_MissingDirectory(t *testing.T) {
	_, err := NewLightWatcher(filepath.Join(t.TempDir(), "missing", "scene.toml"), scene.New("test", scene.Config{}))
	assert.Error(t, err)
}
