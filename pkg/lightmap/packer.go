package lightmap

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxTextureWidth is the widest row the shelf packer fills before wrapping
	MaxTextureWidth = 2048

	// DefaultTexelScale is the world size covered by one lightmap texel
	DefaultTexelScale float32 = 0.2
)

// Packer collects the quads of a mesh and packs them into a single lightmap atlas
type Packer struct {
	surfaces   []QuadSurface
	texelScale float32
	textures   TextureAllocator
	dumpPath   string
	workers    int
}

// NewPacker creates a packer using DefaultTexelScale and in-memory textures
func NewPacker() *Packer {
	return &Packer{
		texelScale: DefaultTexelScale,
		textures:   ImageTextureAllocator{},
		workers:    1,
	}
}

// SetTexelScale overrides the world size of one texel. Non-positive values are ignored.
func (p *Packer) SetTexelScale(scale float32) {
	if scale > 0 {
		p.texelScale = scale
	}
}

// TexelScale returns the world size of one texel
func (p *Packer) TexelScale() float32 {
	return p.texelScale
}

// SetTextureAllocator selects where built lightmaps allocate their texture
func (p *Packer) SetTextureAllocator(allocator TextureAllocator) {
	p.textures = allocator
}

// SetFactorDump enables writing the view factor matrix to path after solving.
// An empty path disables the dump.
func (p *Packer) SetFactorDump(path string) {
	p.dumpPath = path
}

// SetFactorWorkers spreads the view factor rows over n workers, one per CPU
// when n <= 0. The default of 1 solves on the building goroutine.
func (p *Packer) SetFactorWorkers(n int) {
	p.workers = n
}

// FactorWorkers returns the worker count used by BuildLightmap
func (p *Packer) FactorWorkers() int {
	return p.workers
}

// AddQuadSurface registers a planar quad and its four mesh vertex indices
func (p *Packer) AddQuadSurface(p1, p2, p3, p4 mgl32.Vec3, i1, i2, i3, i4 uint32) {
	normal := p2.Sub(p1).Cross(p4.Sub(p1)).Normalize()
	u, v := core.ProjectionAxes(core.BestMatchingDirection(normal))

	p.surfaces = append(p.surfaces, QuadSurface{
		Positions: [4]mgl32.Vec3{p1, p2, p3, p4},
		Texcoords: [4]mgl32.Vec2{
			core.ProjectToPlanes(p1, u, v),
			core.ProjectToPlanes(p2, u, v),
			core.ProjectToPlanes(p3, u, v),
			core.ProjectToPlanes(p4, u, v),
		},
		Normal:  normal,
		Indices: [4]uint32{i1, i2, i3, i4},
		Index:   len(p.surfaces),
	})
}

// Surfaces returns the registered surfaces
func (p *Packer) Surfaces() []QuadSurface {
	return p.surfaces
}

// SurfaceCount returns the number of registered surfaces
func (p *Packer) SurfaceCount() int {
	return len(p.surfaces)
}

type sortedSurface struct {
	area    float32
	box     core.Box2
	surface *QuadSurface
}

// BuildLightmap packs every surface, rasterizes the patches, solves the view
// factors and allocates the runtime buffers. Packing rewrites the surface
// texture coordinates in place, so it must be called only once.
func (p *Packer) BuildLightmap() *Lightmap {
	log := core.Logger()

	width, height := p.pack(p.sortedByArea())
	lightmap := NewLightmap(width, height)

	raster := newRasterizer(lightmap)
	for i := range p.surfaces {
		raster.rasterizeSurface(&p.surfaces[i])
	}
	log.Debug("lightmap patches rasterized",
		slog.Int("patches", len(lightmap.Patches)),
		slog.Int("width", width),
		slog.Int("height", height))

	// Normalize to texel centers
	texcoordScale := mgl32.Vec2{1.0 / float32(width), 1.0 / float32(height)}
	for i := range p.surfaces {
		surface := &p.surfaces[i]
		for j, tc := range surface.Texcoords {
			surface.Texcoords[j] = mgl32.Vec2{
				(tc[0] + 0.5) * texcoordScale[0],
				(tc[1] + 0.5) * texcoordScale[1],
			}
		}
	}

	lightmap.QuadSurfaces = make([]CompactQuadSurface, len(p.surfaces))
	for i, surface := range p.surfaces {
		lightmap.QuadSurfaces[i] = NewCompactQuadSurface(surface)
	}

	stats := lightmap.ComputeRadiosityFactorsWith(p.workers)
	log.Info("lightmap built",
		slog.Int("surfaces", len(p.surfaces)),
		slog.Int("patches", len(lightmap.Patches)),
		slog.Int("visible", stats.Visible),
		slog.Int("occluded", stats.Occluded))

	if p.dumpPath != "" {
		if err := lightmap.DumpViewFactors(p.dumpPath); err != nil {
			log.Warn("failed to dump view factors", slog.String("path", p.dumpPath), slog.Any("error", err))
		}
	}

	var texture Texture
	if p.textures != nil {
		texture = p.textures.NewTexture2D()
	}
	lightmap.CreateBuffers(texture)
	return lightmap
}

// sortedByArea orders the surfaces by ascending projected area, so smaller
// surfaces are packed first
func (p *Packer) sortedByArea() []sortedSurface {
	sorted := make([]sortedSurface, len(p.surfaces))
	for i := range p.surfaces {
		surface := &p.surfaces[i]
		box := core.NewBox2FromPoints(surface.Texcoords[:]...)
		sorted[i] = sortedSurface{area: box.Area(), box: box, surface: surface}
	}
	slices.SortStableFunc(sorted, func(a, b sortedSurface) int {
		return cmp.Compare(a.area, b.area)
	})
	return sorted
}

// pack places the sorted surfaces on shelves and returns the atlas size.
// Texture coordinates are left in integer texel space.
func (p *Packer) pack(sorted []sortedSurface) (width, height int) {
	column, row := 0, 0
	currentHeight, maxWidth := 0, 0

	for _, entry := range sorted {
		box := entry.box
		surface := entry.surface

		extent := box.Extent()
		cellWidth := core.CeilInt(extent.X() / p.texelScale)
		cellHeight := core.CeilInt(extent.Y() / p.texelScale)

		// Wrap to a new shelf
		if cellWidth+column+1 > MaxTextureWidth {
			maxWidth = max(maxWidth, column+1)
			column = 0
			row += currentHeight + 1
			currentHeight = 0
		}
		currentHeight = max(cellHeight, currentHeight)

		offset := mgl32.Vec2{float32(column), float32(row)}
		for i, tc := range surface.Texcoords {
			surface.Texcoords[i] = mgl32.Vec2{
				(tc[0]-box.Min[0])/p.texelScale + offset[0],
				(tc[1]-box.Min[1])/p.texelScale + offset[1],
			}
		}
		surface.Cell = core.NewBox2FromPoints(surface.Texcoords[:]...)

		column += cellWidth + 1
	}

	maxWidth = max(maxWidth, column+1)
	if currentHeight > 0 {
		row += currentHeight
	}

	return core.NextPowerOfTwo(maxWidth), core.NextPowerOfTwo(row)
}

// ApplyTexcoords hands the final normalized coordinates of every surface
// corner to set, keyed by mesh vertex index
func (p *Packer) ApplyTexcoords(set func(index uint32, texcoord mgl32.Vec2)) {
	for _, surface := range p.surfaces {
		for i := 0; i < 4; i++ {
			set(surface.Indices[i], surface.Texcoords[i])
		}
	}
}
