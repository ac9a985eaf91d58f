package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FloatEpsilon is the tolerance used for all approximate float comparisons
const FloatEpsilon float32 = 0.0001

// CloseTo reports whether a and b differ by at most FloatEpsilon
func CloseTo(a, b float32) bool {
	delta := b - a
	return -FloatEpsilon <= delta && delta <= FloatEpsilon
}

// CloseToVec3 compares two vectors component by component
func CloseToVec3(a, b mgl32.Vec3) bool {
	return CloseTo(a.X(), b.X()) && CloseTo(a.Y(), b.Y()) && CloseTo(a.Z(), b.Z())
}

// Smoothstep performs Hermite interpolation between edge0 and edge1.
// Equal edges degrade to a step function.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// NextPowerOfTwo returns the smallest power of two that is >= value (1 for value <= 1)
func NextPowerOfTwo(value int) int {
	result := 1
	for result < value {
		result <<= 1
	}
	return result
}

// CeilInt rounds up to the nearest integer
func CeilInt(v float32) int {
	return int(math32.Ceil(v))
}
