package scene

import (
	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the generic mesh vertex
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
	Texcoord mgl32.Vec2 // Lightmap atlas coordinate, filled in by MeshBuilder.Mesh
}

// Mesh is indexed triangle geometry with an optional lightmap
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Lightmap *lightmap.Lightmap
}

// TriangleCount returns the number of indexed triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// MeshBuilder accumulates vertices and quads and registers every quad
// with a lightmap packer
type MeshBuilder struct {
	vertices   []Vertex
	indices    []uint32
	baseVertex uint32
	color      mgl32.Vec4
	offset     mgl32.Vec3
	packer     *lightmap.Packer
}

// NewMeshBuilder creates a builder with white vertex color and default lightmap settings
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{
		color:  mgl32.Vec4{1, 1, 1, 1},
		packer: lightmap.NewPacker(),
	}
}

// WithConfig applies the lightmap settings of a scene
func (b *MeshBuilder) WithConfig(config Config) *MeshBuilder {
	b.packer.SetTexelScale(config.TexelScale)
	if config.FactorWorkers != 0 {
		b.packer.SetFactorWorkers(config.FactorWorkers)
	}
	if config.DumpFactors {
		path := config.FactorDumpPath
		if path == "" {
			path = lightmap.FactorDumpFile
		}
		b.packer.SetFactorDump(path)
	}
	return b
}

// SetTextureAllocator selects the texture the built lightmap uploads to
func (b *MeshBuilder) SetTextureAllocator(allocator lightmap.TextureAllocator) *MeshBuilder {
	b.packer.SetTextureAllocator(allocator)
	return b
}

// SetColor sets the color of the vertices added afterwards
func (b *MeshBuilder) SetColor(color mgl32.Vec4) *MeshBuilder {
	b.color = color
	return b
}

// SetOffset translates the positions of the vertices added afterwards
func (b *MeshBuilder) SetOffset(offset mgl32.Vec3) *MeshBuilder {
	b.offset = offset
	return b
}

// NewBaseVertex makes subsequent indices relative to the next vertex
func (b *MeshBuilder) NewBaseVertex() *MeshBuilder {
	b.baseVertex = uint32(len(b.vertices))
	return b
}

// AddVertex appends a vertex as is
func (b *MeshBuilder) AddVertex(vertex Vertex) *MeshBuilder {
	b.vertices = append(b.vertices, vertex)
	return b
}

// AddPositionNormal appends a vertex with the current color and offset
func (b *MeshBuilder) AddPositionNormal(position, normal mgl32.Vec3) *MeshBuilder {
	return b.AddVertex(Vertex{
		Position: position.Add(b.offset),
		Normal:   normal,
		Color:    b.color,
	})
}

// AddIndex appends an index relative to the base vertex
func (b *MeshBuilder) AddIndex(index uint32) *MeshBuilder {
	b.indices = append(b.indices, index+b.baseVertex)
	return b
}

// AddQuad emits the triangles (i1, i2, i3) and (i3, i4, i1) and registers
// the quad as a lightmap surface. Indices are relative to the base vertex.
func (b *MeshBuilder) AddQuad(i1, i2, i3, i4 uint32) *MeshBuilder {
	b.AddIndex(i1).AddIndex(i2).AddIndex(i3)
	b.AddIndex(i3).AddIndex(i4).AddIndex(i1)

	base := b.baseVertex
	b.packer.AddQuadSurface(
		b.vertices[i1+base].Position,
		b.vertices[i2+base].Position,
		b.vertices[i3+base].Position,
		b.vertices[i4+base].Position,
		i1+base, i2+base, i3+base, i4+base)
	return b
}

type cubeFace struct {
	corners [4]mgl32.Vec3 // Signs applied to the half extent
	normal  mgl32.Vec3
	flip    bool // Emit the quad as (3, 2, 1, 0)
}

// Outward facing cube faces
var cubeFaces = [6]cubeFace{
	{[4]mgl32.Vec3{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}}, mgl32.Vec3{1, 0, 0}, false},
	{[4]mgl32.Vec3{{-1, 1, 1}, {-1, -1, 1}, {-1, -1, -1}, {-1, 1, -1}}, mgl32.Vec3{-1, 0, 0}, true},
	{[4]mgl32.Vec3{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}, mgl32.Vec3{0, 1, 0}, false},
	{[4]mgl32.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, -1, -1}, {-1, -1, -1}}, mgl32.Vec3{0, -1, 0}, true},
	{[4]mgl32.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}, mgl32.Vec3{0, 0, 1}, false},
	{[4]mgl32.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}}, mgl32.Vec3{0, 0, -1}, true},
}

// AddCube adds a box of the given extent centered on the offset, facing outwards
func (b *MeshBuilder) AddCube(extent mgl32.Vec3) *MeshBuilder {
	return b.addCubeFaces(extent, false)
}

// AddCubeInterior adds a box of the given extent centered on the offset, facing inwards
func (b *MeshBuilder) AddCubeInterior(extent mgl32.Vec3) *MeshBuilder {
	return b.addCubeFaces(extent, true)
}

func (b *MeshBuilder) addCubeFaces(extent mgl32.Vec3, interior bool) *MeshBuilder {
	half := extent.Mul(0.5)
	for _, face := range cubeFaces {
		normal := face.normal
		flip := face.flip
		if interior {
			normal = normal.Mul(-1)
			flip = !flip
		}

		b.NewBaseVertex()
		for _, corner := range face.corners {
			position := mgl32.Vec3{corner[0] * half[0], corner[1] * half[1], corner[2] * half[2]}
			b.AddPositionNormal(position, normal)
		}
		if flip {
			b.AddQuad(3, 2, 1, 0)
		} else {
			b.AddQuad(0, 1, 2, 3)
		}
	}
	return b
}

// SurfaceCount returns the number of quads registered so far
func (b *MeshBuilder) SurfaceCount() int {
	return b.packer.SurfaceCount()
}

// Mesh builds the lightmap, writes its atlas coordinates into the vertices
// and returns the finished mesh. The builder must not be reused afterwards.
func (b *MeshBuilder) Mesh() *Mesh {
	lm := b.packer.BuildLightmap()
	b.packer.ApplyTexcoords(func(index uint32, texcoord mgl32.Vec2) {
		b.vertices[index].Texcoord = texcoord
	})

	return &Mesh{
		Vertices: b.vertices,
		Indices:  b.indices,
		Lightmap: lm,
	}
}
