package scene

import (
	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/go-gl/mathgl/mgl32"
)

// NewCubeScene creates a single half-unit cube lit by one point light
func NewCubeScene(config Config) *Scene {
	s := New("cube", config)

	mesh := NewMeshBuilder().
		WithConfig(config).
		AddCube(mgl32.Vec3{0.5, 0.5, 0.5}).
		Mesh()
	s.Add(NewMeshObject("cube", mesh))

	light := lights.NewPointLight(mgl32.Vec3{0.6, 0.8, 0.7}, mgl32.Vec4{1, 1, 1, 1})
	light.Name = "key"
	s.Add(NewLightObject(light))

	return s
}

// NewRoomScene creates a closed room with colored side walls and a box
// standing on the floor, lit by an orbiting point light, a spot light
// and a dim directional skylight
func NewRoomScene(config Config) *Scene {
	s := New("room", config)

	const roomSize = 3.0
	const boxSize = 0.8
	white := mgl32.Vec4{0.73, 0.73, 0.73, 1}

	builder := NewMeshBuilder().
		WithConfig(config).
		SetColor(white).
		AddCubeInterior(mgl32.Vec3{roomSize, roomSize, roomSize})

	// Side walls, +X red and -X green, as emitted by AddCubeInterior
	tintWall(builder, 0, mgl32.Vec4{0.65, 0.05, 0.05, 1})
	tintWall(builder, 1, mgl32.Vec4{0.12, 0.45, 0.15, 1})

	mesh := builder.
		SetColor(white).
		SetOffset(mgl32.Vec3{0.4, -roomSize/2 + boxSize/2, 0.3}).
		AddCube(mgl32.Vec3{boxSize, boxSize, boxSize}).
		Mesh()
	s.Add(NewMeshObject("room", mesh))

	ceiling := lights.NewPointLight(mgl32.Vec3{0, 1.2, 0}, mgl32.Vec4{0.8, 0.8, 0.75, 1})
	ceiling.Name = "ceiling"
	ceiling.Attenuation = mgl32.Vec3{1, 0.1, 0.05}
	ceiling.Orbit = &lights.Orbit{
		Center: mgl32.Vec3{0, 1.2, 0},
		Radius: 0.8,
		Speed:  0.5,
	}
	s.Add(NewLightObject(ceiling))

	spot := lights.NewSpotLight(
		mgl32.Vec3{-1.2, 1.2, 1.2},
		mgl32.Vec3{0.4, -1.1, 0.3},
		mgl32.Vec4{1, 0.9, 0.7, 1},
		35, 25, 1)
	spot.Name = "spot"
	s.Add(NewLightObject(spot))

	sky := lights.NewDirectionalLight(mgl32.Vec3{0.2, -1, 0.1}, mgl32.Vec4{0.15, 0.15, 0.2, 1})
	sky.Name = "sky"
	s.Add(NewLightObject(sky))

	return s
}

// tintWall recolors the four vertices of a face emitted by a cube helper
func tintWall(b *MeshBuilder, face int, color mgl32.Vec4) {
	for i := face * 4; i < face*4+4 && i < len(b.vertices); i++ {
		b.vertices[i].Color = color
	}
}

// builtinScenes maps scene IDs to their constructors
var builtinScenes = map[string]func(Config) *Scene{
	"cube": NewCubeScene,
	"room": NewRoomScene,
}

// NewBuiltinScene creates the built-in scene with the given ID
func NewBuiltinScene(id string, config Config) (*Scene, bool) {
	create, ok := builtinScenes[id]
	if !ok {
		return nil, false
	}
	return create(config), true
}
