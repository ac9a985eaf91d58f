package renderer

import (
	"image"

	"github.com/df07/go-radiosity-lightmap/pkg/scene"
)

// LightmapStats describes the state of one mesh lightmap
type LightmapStats struct {
	Mesh      int     `json:"mesh"`      // Index among the mesh objects of the scene
	Name      string  `json:"name"`      // Mesh object name
	Width     int     `json:"width"`     // Atlas width in texels
	Height    int     `json:"height"`    // Atlas height in texels
	Patches   int     `json:"patches"`   // Number of radiosity patches
	Computed  uint64  `json:"computed"`  // Completed solver iterations
	Uploaded  uint64  `json:"uploaded"`  // Iterations visible in the texture
	Luminance float64 `json:"luminance"` // Average luminance of the covered texels
}

// CollectStats gathers the statistics of every mesh lightmap of a scene
func CollectStats(s *scene.Scene) []LightmapStats {
	s.Lock()
	meshes := s.Meshes()
	s.Unlock()

	stats := make([]LightmapStats, 0, len(meshes))
	for i, object := range meshes {
		lm := object.Mesh.Lightmap
		if lm == nil {
			continue
		}

		img := lm.Image()
		var covered []int
		for _, patch := range lm.Patches {
			covered = append(covered, patch.TexelIndex)
		}

		stats = append(stats, LightmapStats{
			Mesh:      i,
			Name:      object.Name,
			Width:     lm.Width,
			Height:    lm.Height,
			Patches:   len(lm.Patches),
			Computed:  lm.ComputedCount(),
			Uploaded:  lm.UploadedCount(),
			Luminance: averageLuminanceAt(img, covered),
		})
	}
	return stats
}

// luminance uses the Rec. 709 weights on [0, 1] channels
func luminance(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// CalculateAverageLuminance returns the mean luminance over all pixels
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	count := bounds.Dx() * bounds.Dy()
	if count == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sum += luminance(c.R, c.G, c.B)
		}
	}
	return sum / float64(count)
}

// averageLuminanceAt averages the luminance of the given row-major pixel indices
func averageLuminanceAt(img *image.RGBA, texels []int) float64 {
	if len(texels) == 0 {
		return 0
	}

	width := img.Bounds().Dx()
	var sum float64
	for _, texel := range texels {
		c := img.RGBAAt(texel%width, texel/width)
		sum += luminance(c.R, c.G, c.B)
	}
	return sum / float64(len(texels))
}
