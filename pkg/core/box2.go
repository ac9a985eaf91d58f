package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box2 represents an axis-aligned 2D bounding box
type Box2 struct {
	Min mgl32.Vec2 // Minimum corner
	Max mgl32.Vec2 // Maximum corner
}

// EmptyBox2 returns an inverted box that any inserted point will replace
func EmptyBox2() Box2 {
	inf := math32.Inf(1)
	return Box2{
		Min: mgl32.Vec2{inf, inf},
		Max: mgl32.Vec2{-inf, -inf},
	}
}

// NewBox2 creates a box from its corner coordinates
func NewBox2(minX, minY, maxX, maxY float32) Box2 {
	return Box2{Min: mgl32.Vec2{minX, minY}, Max: mgl32.Vec2{maxX, maxY}}
}

// NewBox2FromPoints creates a box bounding all given points
func NewBox2FromPoints(points ...mgl32.Vec2) Box2 {
	box := EmptyBox2()
	for _, p := range points {
		box.InsertPoint(p)
	}
	return box
}

// InsertPoint grows the box to contain point
func (b *Box2) InsertPoint(point mgl32.Vec2) {
	b.Min[0] = math32.Min(b.Min[0], point[0])
	b.Min[1] = math32.Min(b.Min[1], point[1])
	b.Max[0] = math32.Max(b.Max[0], point[0])
	b.Max[1] = math32.Max(b.Max[1], point[1])
}

// InsertBox grows the box to contain other
func (b *Box2) InsertBox(other Box2) {
	b.Min[0] = math32.Min(b.Min[0], other.Min[0])
	b.Min[1] = math32.Min(b.Min[1], other.Min[1])
	b.Max[0] = math32.Max(b.Max[0], other.Max[0])
	b.Max[1] = math32.Max(b.Max[1], other.Max[1])
}

// IsEmpty reports whether no point has been inserted
func (b Box2) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

// Extent returns the size of the box along each axis
func (b Box2) Extent() mgl32.Vec2 {
	return b.Max.Sub(b.Min)
}

// Area returns the surface covered by the box
func (b Box2) Area() float32 {
	extent := b.Extent()
	return extent[0] * extent[1]
}

// Overlaps reports whether the interiors of two boxes intersect
func (b Box2) Overlaps(other Box2) bool {
	return b.Min[0] < other.Max[0] && other.Min[0] < b.Max[0] &&
		b.Min[1] < other.Max[1] && other.Min[1] < b.Max[1]
}
