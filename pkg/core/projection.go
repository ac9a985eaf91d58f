package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Directions holds the six signed axes twice, so that Directions[i+2] and
// Directions[i+4] are valid for any i < 6 without wrapping.
var Directions = [12]mgl32.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},

	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// BestMatchingDirection returns the index of the signed axis closest to v.
// Ties resolve to the lowest index.
func BestMatchingDirection(v mgl32.Vec3) int {
	bestIndex := 0
	bestMatch := math32.Inf(-1)
	for i := 0; i < 6; i++ {
		lambda := v.Dot(Directions[i])
		if lambda > bestMatch {
			bestIndex = i
			bestMatch = lambda
		}
	}
	return bestIndex
}

// ProjectionAxes returns the two axes spanning the plane orthogonal to Directions[best]
func ProjectionAxes(best int) (u, v mgl32.Vec3) {
	return Directions[best+2], Directions[best+4]
}

// ProjectToPlanes projects position on the u and v axes
func ProjectToPlanes(position, u, v mgl32.Vec3) mgl32.Vec2 {
	return mgl32.Vec2{position.Dot(u), position.Dot(v)}
}

// EdgeOrientation returns the signed doubled area of the triangle (e1, e2, p).
// Positive when p lies to the left of the edge e1->e2.
func EdgeOrientation(e1, e2, p mgl32.Vec2) float32 {
	u := e2.Sub(e1)
	v := p.Sub(e1)
	return u[0]*v[1] - u[1]*v[0]
}

// IsRightOf reports whether p lies strictly to the right of the edge e1->e2
func IsRightOf(e1, e2, p mgl32.Vec2) bool {
	return EdgeOrientation(e1, e2, p) < -FloatEpsilon
}
