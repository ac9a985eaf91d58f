package lightmap

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// TextureFormat identifies the texel layout of a texture
type TextureFormat int

const (
	// RGBA8 stores one byte per channel, red first
	RGBA8 TextureFormat = iota
)

// Texture is the upload sink a lightmap writes its pixels to
type Texture interface {
	SetStorage2D(levels, width, height int, format TextureFormat)
	UploadLevel(level, x, y, width, height int, pixels []uint32)
	SetLinearFiltering()
	SetNearestFiltering()
	ClampToEdge()
}

// TextureAllocator creates the texture of a newly built lightmap
type TextureAllocator interface {
	NewTexture2D() Texture
}

// ImageTextureAllocator creates in-memory ImageTextures
type ImageTextureAllocator struct{}

// NewTexture2D implements TextureAllocator
func (ImageTextureAllocator) NewTexture2D() Texture {
	return NewImageTexture()
}

// ImageTexture is an in-memory Texture backed by image.RGBA levels.
// Readers may call Image and Scale concurrently with uploads.
type ImageTexture struct {
	mu          sync.RWMutex
	levels      []*image.RGBA
	linear      bool
	clampToEdge bool
	generation  uint64
}

// NewImageTexture creates a texture without storage
func NewImageTexture() *ImageTexture {
	return &ImageTexture{}
}

// SetStorage2D allocates the mip chain, halving each level down to 1x1
func (t *ImageTexture) SetStorage2D(levels, width, height int, format TextureFormat) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.levels = t.levels[:0]
	for i := 0; i < levels; i++ {
		t.levels = append(t.levels, image.NewRGBA(image.Rect(0, 0, width, height)))
		width = max(width/2, 1)
		height = max(height/2, 1)
	}
}

// UploadLevel copies packed r | g<<8 | b<<16 | a<<24 pixels into a region of a level
func (t *ImageTexture) UploadLevel(level, x, y, width, height int, pixels []uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level < 0 || level >= len(t.levels) {
		return
	}
	img := t.levels[level]
	region := image.Rect(x, y, x+width, y+height).Intersect(img.Rect)

	for py := region.Min.Y; py < region.Max.Y; py++ {
		for px := region.Min.X; px < region.Max.X; px++ {
			packed := pixels[(py-y)*width+(px-x)]
			offset := img.PixOffset(px, py)
			img.Pix[offset+0] = uint8(packed)
			img.Pix[offset+1] = uint8(packed >> 8)
			img.Pix[offset+2] = uint8(packed >> 16)
			img.Pix[offset+3] = uint8(packed >> 24)
		}
	}
	t.generation++
}

// SetLinearFiltering selects bilinear scaling
func (t *ImageTexture) SetLinearFiltering() {
	t.mu.Lock()
	t.linear = true
	t.mu.Unlock()
}

// SetNearestFiltering selects nearest neighbor scaling
func (t *ImageTexture) SetNearestFiltering() {
	t.mu.Lock()
	t.linear = false
	t.mu.Unlock()
}

// ClampToEdge records the edge sampling mode
func (t *ImageTexture) ClampToEdge() {
	t.mu.Lock()
	t.clampToEdge = true
	t.mu.Unlock()
}

// IsLinear reports whether bilinear filtering is selected
func (t *ImageTexture) IsLinear() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.linear
}

// IsClampedToEdge reports whether edge clamping is selected
func (t *ImageTexture) IsClampedToEdge() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clampToEdge
}

// Generation counts the uploads performed so far
func (t *ImageTexture) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Image returns a copy of a level, or nil if it does not exist
func (t *ImageTexture) Image(level int) *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if level < 0 || level >= len(t.levels) {
		return nil
	}
	src := t.levels[level]
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// Scale resamples level 0 into a width x height image using the texture filter
func (t *ImageTexture) Scale(width, height int) *image.RGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if len(t.levels) == 0 {
		return dst
	}

	var interpolator draw.Interpolator = draw.NearestNeighbor
	if t.linear {
		interpolator = draw.BiLinear
	}
	src := t.levels[0]
	interpolator.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}
