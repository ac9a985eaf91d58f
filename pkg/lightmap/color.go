package lightmap

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// encodeColorChannel maps [0, 1] to [0, 255], truncating and clamping
func encodeColorChannel(f float32) uint32 {
	v := f * 255
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint32(v)
}

// EncodeColor packs a color as r | g<<8 | b<<16 | a<<24
func EncodeColor(c mgl32.Vec4) uint32 {
	r := encodeColorChannel(c.X())
	g := encodeColorChannel(c.Y())
	b := encodeColorChannel(c.Z())
	a := encodeColorChannel(c.W())
	return r | g<<8 | b<<16 | a<<24
}

// DecodeColor unpacks a color produced by EncodeColor
func DecodeColor(packed uint32) color.RGBA {
	return color.RGBA{
		R: uint8(packed),
		G: uint8(packed >> 8),
		B: uint8(packed >> 16),
		A: uint8(packed >> 24),
	}
}
