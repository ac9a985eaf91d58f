package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownScene is returned when a scene name matches neither a built-in scene nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// SceneFile is the on-disk description of a scene, decoded from TOML or YAML
type SceneFile struct {
	Name        string      `toml:"name" yaml:"name"`
	TexelScale  float32     `toml:"texelScale" yaml:"texelScale"`
	DumpFactors bool        `toml:"dumpFactors" yaml:"dumpFactors"`
	Meshes      []MeshSpec  `toml:"meshes" yaml:"meshes"`
	Lights      []LightSpec `toml:"lights" yaml:"lights"`
}

// MeshSpec describes one mesh built from cubes and quads
type MeshSpec struct {
	Name   string      `toml:"name" yaml:"name"`
	Shapes []ShapeSpec `toml:"shapes" yaml:"shapes"`
}

// ShapeSpec is one primitive added to a mesh.
// Type is "cube", "cube-interior" or "quad".
type ShapeSpec struct {
	Type    string       `toml:"type" yaml:"type"`
	Extent  [3]float32   `toml:"extent" yaml:"extent"`
	Offset  [3]float32   `toml:"offset" yaml:"offset"`
	Color   *[4]float32  `toml:"color" yaml:"color"`
	Corners [][3]float32 `toml:"corners" yaml:"corners"` // quad only, counter-clockwise seen from the front
}

// LightSpec describes a light. Unset optional fields keep the light defaults.
type LightSpec struct {
	Name         string      `toml:"name" yaml:"name"`
	Type         string      `toml:"type" yaml:"type"`
	Position     [3]float32  `toml:"position" yaml:"position"`
	Target       *[3]float32 `toml:"target" yaml:"target"`       // spot lights aim here
	Direction    *[3]float32 `toml:"direction" yaml:"direction"` // travel direction of directional lights
	Intensity    []float32   `toml:"intensity" yaml:"intensity"` // RGB or RGBA
	Attenuation  *[3]float32 `toml:"attenuation" yaml:"attenuation"`
	SpotCutoff   *[2]float32 `toml:"spotCutoff" yaml:"spotCutoff"` // outer and inner angle in degrees
	SpotExponent *float32    `toml:"spotExponent" yaml:"spotExponent"`
	Orbit        *OrbitSpec  `toml:"orbit" yaml:"orbit"`
}

// OrbitSpec animates a light on a horizontal circle
type OrbitSpec struct {
	Center [3]float32 `toml:"center" yaml:"center"`
	Radius float32    `toml:"radius" yaml:"radius"`
	Speed  float32    `toml:"speed" yaml:"speed"`
	Phase  float32    `toml:"phase" yaml:"phase"`
}

// ParseSceneFile decodes scene data in the format named by ext (".toml", ".yaml" or ".yml")
func ParseSceneFile(data []byte, ext string) (*SceneFile, error) {
	var file SceneFile
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode TOML scene: %w", err)
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode YAML scene: %w", err)
		}
	default:
		return nil, fmt.Errorf("scene extension %q: %w", ext, ErrUnsupportedFormat)
	}
	return &file, nil
}

// LoadSceneFile reads and decodes a scene file, choosing the format from the extension
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	file, err := ParseSceneFile(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return file, nil
}

// Build creates the scene, packing and solving the lightmap of every mesh.
// Settings in config take precedence over the ones in the file.
func (f *SceneFile) Build(config scene.Config) (*scene.Scene, error) {
	if config.TexelScale <= 0 {
		config.TexelScale = f.TexelScale
	}
	config.DumpFactors = config.DumpFactors || f.DumpFactors

	s := scene.New(f.Name, config)

	for i, spec := range f.Meshes {
		mesh, err := spec.Build(config)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i)
		}
		s.Add(scene.NewMeshObject(name, mesh))
	}

	for i, spec := range f.Lights {
		light, err := spec.Light()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		if light.Name == "" {
			light.Name = fmt.Sprintf("light-%d", i)
		}
		s.Add(scene.NewLightObject(light))
	}

	return s, nil
}

// Build adds every shape to a fresh mesh builder and builds the mesh
func (m MeshSpec) Build(config scene.Config) (*scene.Mesh, error) {
	builder := scene.NewMeshBuilder().WithConfig(config)

	for i, shape := range m.Shapes {
		color := mgl32.Vec4{1, 1, 1, 1}
		if shape.Color != nil {
			color = mgl32.Vec4(*shape.Color)
		}
		builder.SetColor(color).SetOffset(mgl32.Vec3(shape.Offset))

		switch strings.ToLower(shape.Type) {
		case "cube":
			builder.AddCube(mgl32.Vec3(shape.Extent))
		case "cube-interior":
			builder.AddCubeInterior(mgl32.Vec3(shape.Extent))
		case "quad":
			if len(shape.Corners) != 4 {
				return nil, fmt.Errorf("shape %d: quad needs 4 corners, got %d", i, len(shape.Corners))
			}
			p1 := mgl32.Vec3(shape.Corners[0])
			normal := mgl32.Vec3(shape.Corners[1]).Sub(p1).Cross(mgl32.Vec3(shape.Corners[3]).Sub(p1))
			if normal.Len() == 0 {
				return nil, fmt.Errorf("shape %d: degenerate quad", i)
			}
			normal = normal.Normalize()

			builder.NewBaseVertex()
			for _, corner := range shape.Corners {
				builder.AddPositionNormal(mgl32.Vec3(corner), normal)
			}
			builder.AddQuad(0, 1, 2, 3)
		default:
			return nil, fmt.Errorf("shape %d: unknown shape type %q", i, shape.Type)
		}
	}

	return builder.Mesh(), nil
}

// Light creates the described light
func (l LightSpec) Light() (*lights.Light, error) {
	lightType, err := lights.ParseType(l.Type)
	if err != nil {
		return nil, err
	}

	light := lights.NewLight(lightType)
	light.Name = l.Name
	light.Position = mgl32.Vec3(l.Position)

	switch len(l.Intensity) {
	case 0:
	case 3:
		light.Intensity = mgl32.Vec4{l.Intensity[0], l.Intensity[1], l.Intensity[2], 1}
	case 4:
		light.Intensity = mgl32.Vec4{l.Intensity[0], l.Intensity[1], l.Intensity[2], l.Intensity[3]}
	default:
		return nil, fmt.Errorf("intensity needs 3 or 4 components, got %d", len(l.Intensity))
	}

	if l.Attenuation != nil {
		light.Attenuation = mgl32.Vec3(*l.Attenuation)
	}
	if l.SpotCutoff != nil {
		light.SpotCutoff = mgl32.Vec2(*l.SpotCutoff)
	}
	if l.SpotExponent != nil {
		light.SpotExponent = *l.SpotExponent
	}

	switch {
	case l.Direction != nil:
		light.LookAt(light.Position.Add(mgl32.Vec3(*l.Direction)))
	case l.Target != nil:
		light.LookAt(mgl32.Vec3(*l.Target))
	}

	if l.Orbit != nil {
		light.Orbit = &lights.Orbit{
			Center: mgl32.Vec3(l.Orbit.Center),
			Radius: l.Orbit.Radius,
			Speed:  l.Orbit.Speed,
			Phase:  l.Orbit.Phase,
		}
		if l.Target != nil {
			light.Orbit.Target = mgl32.Vec3(*l.Target)
		}
		light.Orbit.Apply(light, 0)
	}

	return light, nil
}

// LoadScene resolves name to a built-in scene, a discovered scene file
// ("file:<name>") or a path to a scene file, and builds it
func LoadScene(name string, config scene.Config) (*scene.Scene, error) {
	if s, ok := scene.NewBuiltinScene(name, config); ok {
		return s, nil
	}

	path := name
	if fileName, ok := strings.CutPrefix(name, "file:"); ok {
		path = findSceneFile(fileName)
		if path == "" {
			return nil, fmt.Errorf("scene %q: %w", name, ErrUnknownScene)
		}
	} else if filepath.Ext(name) == "" {
		return nil, fmt.Errorf("scene %q: %w", name, ErrUnknownScene)
	}

	file, err := LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	return file.Build(config)
}

// findSceneFile returns the first discovered scene file with the given base name
func findSceneFile(name string) string {
	scenes, err := scene.ListSceneFiles()
	if err != nil {
		return ""
	}
	for _, info := range scenes {
		if info.ID == "file:"+name {
			return info.FilePath
		}
	}
	return ""
}
