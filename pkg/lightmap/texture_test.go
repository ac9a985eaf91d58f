package lightmap

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageTexture_Storage(t *testing.T) {
	texture := NewImageTexture()
	texture.SetStorage2D(3, 8, 2, RGBA8)

	sizes := [][2]int{{8, 2}, {4, 1}, {2, 1}}
	for level, size := range sizes {
		img := texture.Image(level)
		require.NotNil(t, img, "level %d", level)
		assert.Equal(t, size[0], img.Rect.Dx())
		assert.Equal(t, size[1], img.Rect.Dy())
	}
	assert.Nil(t, texture.Image(3))
	assert.Nil(t, texture.Image(-1))
}

func TestImageTexture_Upload(t *testing.T) {
	texture := NewImageTexture()
	texture.SetStorage2D(1, 4, 4, RGBA8)

	// 2x2 region at (3, 2), partially outside the image
	pixels := []uint32{0xff0000ff, 0xff00ff00, 0xffff0000, 0x80808080}
	texture.UploadLevel(0, 3, 2, 2, 2, pixels)
	assert.Equal(t, uint64(1), texture.Generation())

	img := texture.Image(0)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(3, 2))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(3, 3))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))

	// Out of range levels are ignored
	texture.UploadLevel(2, 0, 0, 1, 1, pixels)
	assert.Equal(t, uint64(1), texture.Generation())
}

func TestImageTexture_ImageIsACopy(t *testing.T) {
	texture := NewImageTexture()
	texture.SetStorage2D(1, 1, 1, RGBA8)
	texture.UploadLevel(0, 0, 0, 1, 1, []uint32{0xffffffff})

	img := texture.Image(0)
	img.Pix[0] = 0
	assert.Equal(t, uint8(255), texture.Image(0).Pix[0])
}

func TestImageTexture_Filtering(t *testing.T) {
	texture := NewImageTexture()
	assert.False(t, texture.IsLinear())
	assert.False(t, texture.IsClampedToEdge())

	texture.SetLinearFiltering()
	texture.ClampToEdge()
	assert.True(t, texture.IsLinear())
	assert.True(t, texture.IsClampedToEdge())

	texture.SetNearestFiltering()
	assert.False(t, texture.IsLinear())
}

func TestImageTexture_Scale(t *testing.T) {
	texture := NewImageTexture()
	texture.SetStorage2D(1, 2, 1, RGBA8)
	texture.UploadLevel(0, 0, 0, 2, 1, []uint32{0xff0000ff, 0xffff0000})

	t.Run("nearest keeps texels sharp", func(t *testing.T) {
		texture.SetNearestFiltering()
		img := texture.Scale(8, 4)
		assert.Equal(t, 8, img.Rect.Dx())
		assert.Equal(t, 4, img.Rect.Dy())
		assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
		assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(7, 3))
	})

	t.Run("linear blends between texels", func(t *testing.T) {
		texture.SetLinearFiltering()
		img := texture.Scale(8, 4)
		middle := img.RGBAAt(4, 1)
		assert.Greater(t, middle.R, uint8(0))
		assert.Greater(t, middle.B, uint8(0))
	})

	t.Run("no storage", func(t *testing.T) {
		img := NewImageTexture().Scale(2, 2)
		assert.Equal(t, color.RGBA{}, img.RGBAAt(1, 1))
	})
}

func TestLightmap_CreateBuffersConfiguresTexture(t *testing.T) {
	lm := buildFacingPair(false, false)
	texture, ok := lm.Texture().(*ImageTexture)
	require.True(t, ok)

	assert.True(t, texture.IsLinear())
	assert.True(t, texture.IsClampedToEdge())
	img := texture.Image(0)
	require.NotNil(t, img)
	assert.Equal(t, lm.Width, img.Rect.Dx())
	assert.Equal(t, lm.Height, img.Rect.Dy())
}

func TestLightmap_NilTexture(t *testing.T) {
	p := newTestPacker()
	p.SetTextureAllocator(nil)
	addSquareZ(p, 0, 0, 0, 1, true)
	lm := p.BuildLightmap()

	lm.Process(nil)
	assert.Nil(t, lm.ValidTexture())
	assert.Equal(t, lm.ComputedCount(), lm.UploadedCount())
}
