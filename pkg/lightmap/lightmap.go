package lightmap

import (
	"image"
	"sync"

	"github.com/chewxy/math32"
	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/lights"
	"github.com/go-gl/mathgl/mgl32"
)

// Patch is one radiosity sample, owning exactly one atlas texel
type Patch struct {
	Position     mgl32.Vec3
	Normal       mgl32.Vec3
	TexelIndex   int // Row-major texel index in the atlas
	SurfaceIndex int // Owning quad surface, excluded from its own occlusion tests
}

// spotSentinel is the cutoff cosine at or below which a light is not a spot light
const spotSentinel float32 = -0.5

// Lightmap holds the patches of a packed atlas and iteratively computes their lighting.
//
// Process runs on a single worker goroutine and writes into the back buffer
// without holding any lock. The front and back buffers swap under mu, and
// the consumer re-uploads the front buffer through ValidTexture. The light
// of the completed iteration is published alongside for LightAt.
type Lightmap struct {
	Width          int
	Height         int
	Patches        []Patch
	QuadSurfaces   []CompactQuadSurface
	ViewFactors    []float32 // len(Patches)² row-major, symmetric
	ViewFactorsDen []float32 // Reflectivity / row sum, 0 for patches without visible partners

	// Worker-owned accumulation buffers, indexed by texel
	directLight      []mgl32.Vec4
	indirectLight    []mgl32.Vec4
	oldIndirectLight []mgl32.Vec4
	patchByTexel     []int

	mu            sync.Mutex
	frontBuffer   []uint32
	backBuffer    []uint32
	frontDirect   []mgl32.Vec4
	frontIndirect []mgl32.Vec4
	texture       Texture
	computedCount uint64
	uploadedCount uint64
}

// NewLightmap creates an empty lightmap of the given atlas size
func NewLightmap(width, height int) *Lightmap {
	return &Lightmap{Width: width, Height: height}
}

// CreateBuffers allocates the pixel and light buffers, sets up the texture
// and uploads the initial black front buffer. A nil texture disables uploads.
func (lm *Lightmap) CreateBuffers(texture Texture) {
	texels := lm.Width * lm.Height

	lm.directLight = make([]mgl32.Vec4, texels)
	lm.indirectLight = make([]mgl32.Vec4, texels)
	lm.oldIndirectLight = make([]mgl32.Vec4, texels)

	lm.patchByTexel = make([]int, texels)
	for i := range lm.patchByTexel {
		lm.patchByTexel[i] = -1
	}
	for i, patch := range lm.Patches {
		lm.patchByTexel[patch.TexelIndex] = i
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.frontBuffer = make([]uint32, texels)
	lm.backBuffer = make([]uint32, texels)
	lm.frontDirect = make([]mgl32.Vec4, texels)
	lm.frontIndirect = make([]mgl32.Vec4, texels)
	lm.texture = texture
	if texture != nil {
		texture.SetStorage2D(1, lm.Width, lm.Height, RGBA8)
		texture.SetLinearFiltering()
		texture.ClampToEdge()
		texture.UploadLevel(0, 0, 0, lm.Width, lm.Height, lm.frontBuffer)
	}
	lm.uploadedCount = 0
	lm.computedCount = 0
}

// Process computes one iteration: direct light, one indirect bounce,
// encoding into the back buffer and a buffer swap
func (lm *Lightmap) Process(states []lights.State) {
	lm.computeDirectLights(states)
	lm.computeIndirectLightBounce()

	for i := range lm.backBuffer {
		lm.backBuffer[i] = EncodeColor(lm.directLight[i].Add(lm.indirectLight[i]))
	}

	lm.swapBuffers()
}

func (lm *Lightmap) computeDirectLights(states []lights.State) {
	for _, patch := range lm.Patches {
		var color mgl32.Vec4
		for _, light := range states {
			lightPosition := light.Position.Vec3()
			w := light.Position.W()

			// Directional lights are never shadowed
			if w == 1 && lm.IsRayOccluded(patch.Position, patch.SurfaceIndex, lightPosition, noSurface) {
				continue
			}

			lightDir := lightPosition.Sub(patch.Position.Mul(w))
			distance := lightDir.Len()
			l := lightDir.Mul(1 / distance)
			nDotL := math32.Max(l.Dot(patch.Normal), 0)
			if nDotL > 0 {
				color = color.Add(light.Intensity.Mul(nDotL * attenuation(light, l, distance)))
			}
		}

		lm.directLight[patch.TexelIndex] = color
	}
}

// attenuation combines the spot cone falloff with distance attenuation
func attenuation(light lights.State, l mgl32.Vec3, distance float32) float32 {
	return spotFactor(light, l) /
		(light.Attenuation.X() + light.Attenuation.Y()*distance + light.Attenuation.Z()*distance*distance)
}

// spotFactor is 1 for lights whose cutoff cosine is at or below the sentinel
func spotFactor(light lights.State, l mgl32.Vec3) float32 {
	if light.SpotCutoff.X() <= spotSentinel {
		return 1
	}
	nDotS := light.SpotDirection.Dot(l)
	return math32.Pow(core.Smoothstep(light.SpotCutoff.X(), light.SpotCutoff.Y(), nDotS), light.SpotExponent)
}

// computeIndirectLightBounce redistributes the previous bounce plus the
// direct light once across every visible pair. Each transfer is scaled by
// the denominator of the emitting patch.
func (lm *Lightmap) computeIndirectLightBounce() {
	lm.indirectLight, lm.oldIndirectLight = lm.oldIndirectLight, lm.indirectLight
	clear(lm.indirectLight)

	n := len(lm.Patches)
	for i := 0; i < n; i++ {
		source := lm.Patches[i]
		sourceDen := lm.ViewFactorsDen[i]
		row := lm.ViewFactors[i*n : (i+1)*n]

		for j := i + 1; j < n; j++ {
			factor := row[j]
			if factor == 0 {
				continue
			}
			dest := lm.Patches[j]
			destDen := lm.ViewFactorsDen[j]

			s, d := source.TexelIndex, dest.TexelIndex
			sourceEnergy := lm.oldIndirectLight[s].Add(lm.directLight[s])
			destEnergy := lm.oldIndirectLight[d].Add(lm.directLight[d])

			lm.indirectLight[s] = lm.indirectLight[s].Add(destEnergy.Mul(factor * destDen))
			lm.indirectLight[d] = lm.indirectLight[d].Add(sourceEnergy.Mul(factor * sourceDen))
		}
	}
}

func (lm *Lightmap) swapBuffers() {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.computedCount++
	lm.frontBuffer, lm.backBuffer = lm.backBuffer, lm.frontBuffer
	copy(lm.frontDirect, lm.directLight)
	copy(lm.frontIndirect, lm.indirectLight)
}

// ValidTexture re-uploads the front buffer if a newer iteration was computed
// since the last upload, and returns the texture. Call it from the consumer side only.
func (lm *Lightmap) ValidTexture() Texture {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.uploadedCount != lm.computedCount {
		if lm.texture != nil {
			lm.texture.UploadLevel(0, 0, 0, lm.Width, lm.Height, lm.frontBuffer)
		}
		lm.uploadedCount = lm.computedCount
	}
	return lm.texture
}

// Texture returns the texture without checking for pending uploads
func (lm *Lightmap) Texture() Texture {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.texture
}

// ComputedCount returns the number of completed Process calls
func (lm *Lightmap) ComputedCount() uint64 {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.computedCount
}

// UploadedCount returns the computed count at the last texture upload
func (lm *Lightmap) UploadedCount() uint64 {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.uploadedCount
}

// FrontBuffer returns a copy of the latest completed pixels
func (lm *Lightmap) FrontBuffer() []uint32 {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return append([]uint32(nil), lm.frontBuffer...)
}

// PatchAt returns the patch index owning texel (x, y), or -1
func (lm *Lightmap) PatchAt(x, y int) int {
	if x < 0 || y < 0 || x >= lm.Width || y >= lm.Height || lm.patchByTexel == nil {
		return -1
	}
	return lm.patchByTexel[y*lm.Width+x]
}

// TexelColor returns the latest completed color of texel (x, y)
func (lm *Lightmap) TexelColor(x, y int) uint32 {
	if x < 0 || y < 0 || x >= lm.Width || y >= lm.Height {
		return 0
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.frontBuffer == nil {
		return 0
	}
	return lm.frontBuffer[y*lm.Width+x]
}

// LightAt returns the direct and indirect light of the last completed
// iteration at a texel. Safe to call while Process runs.
func (lm *Lightmap) LightAt(texel int) (direct, indirect mgl32.Vec4) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if texel < 0 || texel >= len(lm.frontDirect) {
		return direct, indirect
	}
	return lm.frontDirect[texel], lm.frontIndirect[texel]
}

// Image returns the latest completed pixels as an image
func (lm *Lightmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, lm.Width, lm.Height))
	for i, packed := range lm.FrontBuffer() {
		c := DecodeColor(packed)
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img
}
