package lightmap

import (
	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Reflectivity is the fraction of received energy every patch re-emits
const Reflectivity float32 = 0.8

// noSurface disables the end point exclusion of IsRayOccluded
const noSurface = -1

// FactorStats counts the patch pairs facing each other
type FactorStats struct {
	Visible  int // Pairs passing the orientation and occlusion tests
	Occluded int // Pairs facing each other but blocked by another surface
}

// ComputeRadiosityFactors fills the symmetric view factor matrix and the
// per-patch normalization denominators on the calling goroutine. Every pair
// is tested against every surface, so the cost grows with patches² × surfaces.
func (lm *Lightmap) ComputeRadiosityFactors() FactorStats {
	return lm.ComputeRadiosityFactorsWith(1)
}

// ComputeRadiosityFactorsWith is ComputeRadiosityFactors with the rows
// spread over numWorkers workers, runtime.NumCPU() when numWorkers <= 0.
// One worker runs every row in order on the calling goroutine. The result
// does not depend on the worker count.
func (lm *Lightmap) ComputeRadiosityFactorsWith(numWorkers int) FactorStats {
	n := len(lm.Patches)
	lm.ViewFactors = make([]float32, n*n)
	lm.ViewFactorsDen = make([]float32, n)

	var stats FactorStats
	if numWorkers == 1 {
		for i := 0; i < n; i++ {
			rowStats := lm.computeFactorRow(i)
			stats.Visible += rowStats.Visible
			stats.Occluded += rowStats.Occluded
		}
	} else {
		pool := newFactorWorkerPool(lm, numWorkers)
		pool.Start()
		for i := 0; i < n; i++ {
			pool.SubmitTask(i)
		}
		pool.Stop()

		for {
			rowStats, ok := pool.GetResult()
			if !ok {
				break
			}
			stats.Visible += rowStats.Visible
			stats.Occluded += rowStats.Occluded
		}
	}

	for i := 0; i < n; i++ {
		var rowSum float32
		for _, factor := range lm.ViewFactors[i*n : (i+1)*n] {
			rowSum += factor
		}
		if !core.CloseTo(rowSum, 0) {
			lm.ViewFactorsDen[i] = Reflectivity / rowSum
		}
	}

	return stats
}

// computeFactorRow fills the pairs (i, j > i) and their mirror (j, i).
// Rows write disjoint cells, so they can run concurrently.
func (lm *Lightmap) computeFactorRow(i int) FactorStats {
	var stats FactorStats
	n := len(lm.Patches)
	source := &lm.Patches[i]

	for j := i + 1; j < n; j++ {
		dest := &lm.Patches[j]

		if core.CloseToVec3(dest.Position, source.Position) {
			continue
		}

		direction := dest.Position.Sub(source.Position).Normalize()
		destVisibility := direction.Mul(-1).Dot(dest.Normal)
		if destVisibility < 0 {
			continue
		}
		sourceVisibility := direction.Dot(source.Normal)
		if sourceVisibility < 0 {
			continue
		}

		if lm.IsRayOccluded(source.Position, source.SurfaceIndex, dest.Position, dest.SurfaceIndex) {
			stats.Occluded++
			continue
		}

		stats.Visible++
		factor := destVisibility * sourceVisibility
		lm.ViewFactors[i*n+j] = factor
		lm.ViewFactors[j*n+i] = factor
	}
	return stats
}

// ViewFactor returns the factor between patches i and j
func (lm *Lightmap) ViewFactor(i, j int) float32 {
	return lm.ViewFactors[i*len(lm.Patches)+j]
}

// IsRayOccluded reports whether any surface other than the two end point
// surfaces blocks the segment between start and end
func (lm *Lightmap) IsRayOccluded(start mgl32.Vec3, startSurface int, end mgl32.Vec3, endSurface int) bool {
	ray := core.RayFromEndPoints(start, end)
	for i := range lm.QuadSurfaces {
		if i == startSurface || i == endSurface {
			continue
		}

		t := lm.QuadSurfaces[i].Intersect(ray)
		if t > 0 && t < ray.MaxDistance {
			return true
		}
	}
	return false
}
