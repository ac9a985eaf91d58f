package lightmap

import (
	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// rasterizer emits one patch per covered atlas texel.
// The first triangle to cover a texel owns it.
type rasterizer struct {
	lightmap   *Lightmap
	usedTexels []bool
}

func newRasterizer(lightmap *Lightmap) *rasterizer {
	return &rasterizer{
		lightmap:   lightmap,
		usedTexels: make([]bool, lightmap.Width*lightmap.Height),
	}
}

// rasterizeSurface splits the quad along its p0-p2 diagonal
func (r *rasterizer) rasterizeSurface(s *QuadSurface) {
	n := s.Normal
	r.rasterizeTriangle(s.Index,
		s.Positions[0], s.Positions[1], s.Positions[2],
		s.Texcoords[0], s.Texcoords[1], s.Texcoords[2],
		n, n, n)
	r.rasterizeTriangle(s.Index,
		s.Positions[2], s.Positions[3], s.Positions[0],
		s.Texcoords[2], s.Texcoords[3], s.Texcoords[0],
		n, n, n)
}

// rasterizeTriangle walks the triangle bounding box with incremental edge functions
func (r *rasterizer) rasterizeTriangle(surfaceIndex int,
	p1, p2, p3 mgl32.Vec3,
	tc1, tc2, tc3 mgl32.Vec2,
	n1, n2, n3 mgl32.Vec3,
) {
	// Rewind so that covered texels have non-negative edge functions
	if core.EdgeOrientation(tc1, tc2, tc3) < 0 {
		p1, p3 = p3, p1
		tc1, tc3 = tc3, tc1
		n1, n3 = n3, n1
	}

	width := r.lightmap.Width
	height := r.lightmap.Height

	box := core.NewBox2FromPoints(tc1, tc2, tc3)
	minX := max(int(box.Min.X()), 0)
	minY := max(int(box.Min.Y()), 0)
	maxX := min(core.CeilInt(box.Max.X()), width-1)
	maxY := min(core.CeilInt(box.Max.Y()), height-1)

	// Edge function steps along x and y
	f12 := mgl32.Vec2{tc1.Y() - tc2.Y(), tc2.X() - tc1.X()}
	f23 := mgl32.Vec2{tc2.Y() - tc3.Y(), tc3.X() - tc2.X()}
	f31 := mgl32.Vec2{tc3.Y() - tc1.Y(), tc1.X() - tc3.X()}

	minP := mgl32.Vec2{float32(minX), float32(minY)}
	rowW1 := core.EdgeOrientation(tc2, tc3, minP)
	rowW2 := core.EdgeOrientation(tc3, tc1, minP)
	rowW3 := core.EdgeOrientation(tc1, tc2, minP)

	for ty := minY; ty <= maxY; ty++ {
		w1, w2, w3 := rowW1, rowW2, rowW3

		for tx := minX; tx <= maxX; tx++ {
			if w1 >= 0 && w2 >= 0 && w3 >= 0 {
				r.emitPatch(surfaceIndex, ty*width+tx, w1, w2, w3, p1, p2, p3, n1, n2, n3)
			}

			w1 += f23.X()
			w2 += f31.X()
			w3 += f12.X()
		}

		rowW1 += f23.Y()
		rowW2 += f31.Y()
		rowW3 += f12.Y()
	}
}

func (r *rasterizer) emitPatch(surfaceIndex, texelIndex int,
	w1, w2, w3 float32,
	p1, p2, p3 mgl32.Vec3,
	n1, n2, n3 mgl32.Vec3,
) {
	if r.usedTexels[texelIndex] {
		return
	}

	// Degenerate triangles have all weights at zero
	normFactor := w1 + w2 + w3
	if normFactor <= 0 {
		return
	}
	r.usedTexels[texelIndex] = true

	pw1 := w1 / normFactor
	pw2 := w2 / normFactor
	pw3 := w3 / normFactor

	r.lightmap.Patches = append(r.lightmap.Patches, Patch{
		Position:     p1.Mul(pw1).Add(p2.Mul(pw2)).Add(p3.Mul(pw3)),
		Normal:       n1.Mul(pw1).Add(n2.Mul(pw2)).Add(n3.Mul(pw3)).Normalize(),
		TexelIndex:   texelIndex,
		SurfaceIndex: surfaceIndex,
	})
}
