package lightmap

import "github.com/go-gl/mathgl/mgl32"

// addSquareZ registers an axis-aligned square lying in the plane z, spanning
// [x0, x0+size] x [y0, y0+size], facing +Z when up is set and -Z otherwise
func addSquareZ(p *Packer, z, x0, y0, size float32, up bool) {
	base := uint32(p.SurfaceCount() * 4)
	a := mgl32.Vec3{x0, y0, z}
	b := mgl32.Vec3{x0 + size, y0, z}
	c := mgl32.Vec3{x0 + size, y0 + size, z}
	d := mgl32.Vec3{x0, y0 + size, z}
	if up {
		p.AddQuadSurface(a, b, c, d, base, base+1, base+2, base+3)
	} else {
		p.AddQuadSurface(a, d, c, b, base, base+1, base+2, base+3)
	}
}

// newTestPacker uses an exactly representable texel scale
func newTestPacker() *Packer {
	p := NewPacker()
	p.SetTexelScale(0.25)
	return p
}

func patchesOf(lm *Lightmap, surface int) []int {
	var indices []int
	for i, patch := range lm.Patches {
		if patch.SurfaceIndex == surface {
			indices = append(indices, i)
		}
	}
	return indices
}
