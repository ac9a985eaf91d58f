package lightmap

import (
	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// QuadSurface is a planar quad registered with the packer
type QuadSurface struct {
	Positions [4]mgl32.Vec3 // World space corners
	Texcoords [4]mgl32.Vec2 // Projected, then packed, then normalized lightmap coordinates
	Normal    mgl32.Vec3    // normalize(cross(p2-p1, p4-p1))
	Indices   [4]uint32     // Owning mesh vertex indices
	Index     int           // Position among all surfaces of the packer
	Cell      core.Box2     // Packed texel rectangle, set by BuildLightmap
}

// CompactQuadSurface is the plane and polygon of a quad, kept at runtime for occlusion tests
type CompactQuadSurface struct {
	Normal    mgl32.Vec3
	Distance  float32 // Signed plane distance: dot(Normal, p) for points p on the plane
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	Vertices  [4]mgl32.Vec2 // Corners projected on Tangent and Bitangent, counter-clockwise
}

// NewCompactQuadSurface builds the plane and orthonormal basis of a quad
func NewCompactQuadSurface(source QuadSurface) CompactQuadSurface {
	dest := CompactQuadSurface{Normal: source.Normal}
	for _, p := range source.Positions {
		dest.Distance += dest.Normal.Dot(p) * 0.25
	}

	tangent, bitangent := core.ProjectionAxes(core.BestMatchingDirection(dest.Normal))

	// Gram-Schmidt against the normal, then against the tangent
	n := dest.Normal
	dest.Tangent = tangent.Sub(n.Mul(tangent.Dot(n))).Normalize()
	dest.Bitangent = bitangent.
		Sub(n.Mul(bitangent.Dot(n))).
		Sub(dest.Tangent.Mul(bitangent.Dot(dest.Tangent))).
		Normalize()

	for i, p := range source.Positions {
		dest.Vertices[i] = dest.project(p)
	}

	// The basis is left-handed for quads facing a negative axis, which flips
	// the projected winding. Containment needs the interior on the left.
	v := dest.Vertices
	if core.EdgeOrientation(v[0], v[1], v[2])+core.EdgeOrientation(v[0], v[2], v[3]) < 0 {
		dest.Vertices = [4]mgl32.Vec2{v[0], v[3], v[2], v[1]}
	}
	return dest
}

func (q *CompactQuadSurface) project(p mgl32.Vec3) mgl32.Vec2 {
	return mgl32.Vec2{q.Tangent.Dot(p), q.Bitangent.Dot(p)}
}

// Contains reports whether a point already on the plane lies inside the quad.
// Points on an edge count as inside.
func (q *CompactQuadSurface) Contains(p mgl32.Vec3) bool {
	projected := q.project(p)
	for i := 0; i < 4; i++ {
		if core.IsRightOf(q.Vertices[i], q.Vertices[(i+1)%4], projected) {
			return false
		}
	}
	return true
}

// Intersect returns the ray parameter of the hit with the quad, or a negative value on a miss
func (q *CompactQuadSurface) Intersect(ray core.Ray) float32 {
	t := rayPlaneIntersection(ray, q.Normal, q.Distance)
	if t < 0 {
		return t
	}
	if !q.Contains(ray.At(t)) {
		return -1
	}
	return t
}

// rayPlaneIntersection returns -1 for rays parallel to the plane
func rayPlaneIntersection(ray core.Ray, normal mgl32.Vec3, distance float32) float32 {
	den := ray.Direction.Dot(normal)
	if core.CloseTo(den, 0) {
		return -1
	}
	return (distance - ray.Origin.Dot(normal)) / den
}
