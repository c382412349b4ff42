// Package meanshift implements the per-point adaptive mean-shift
// iteration: build a kernel around the current center, query the
// spatial index, recompute the centroid, and repeat until convergence
// or an iteration cap is reached.
package meanshift

import (
	"math"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/kernel"
	"github.com/canopyscan/ams3d/internal/raster"
	"github.com/canopyscan/ams3d/internal/spatialindex"
)

// Params configures a single Locate call. Ground, DRatio, and HRatio are
// always rasters: a scalar value is wrapped in raster.Constant by the
// orchestration layer, so this type alone covers the normalized-height,
// ground-raster, and fully-flexible variants described by the spec.
type Params struct {
	MinHeightAboveGround float64
	ConvergenceDistance  float64
	MaxCentroids         int

	Ground raster.Source[float64]
	DRatio raster.Source[float64]
	HRatio raster.Source[float64]
}

// Mode is the result of locating one candidate point's mean-shift mode.
type Mode struct {
	Point geom.Point3D
	Trace []geom.Point3D
}

// Locate runs the mean-shift iteration for candidate c against idx,
// returning its mode and (if the caller wants it) its centroid trace.
//
// The canopy ratios and ground elevation are read once, at c's original
// xy, and held fixed for the whole iteration (DESIGN.md's Open Question
// resolution): re-reading them at the moving center would make the
// kernel depend on terrain/canopy data far from the original candidate
// as it drifts sideways. The kernel's own height and radius still track
// the current iterate's above-ground height each step, since that is
// the candidate the kernel is built "around" at every iteration (spec
// step 1) — only the ratios/ground inputs to that derivation are pinned.
func Locate(c geom.Point3D, idx *spatialindex.Index, p Params, wantTrace bool) Mode {
	if !c.IsFinite() {
		return Mode{Point: geom.NaNPoint}
	}

	xy := geom.XY(c)

	groundZ, err := p.Ground.ValueAt(xy)
	if err != nil {
		return Mode{Point: geom.NaNPoint}
	}
	dRatio, err := p.DRatio.ValueAt(xy)
	if err != nil || math.IsNaN(dRatio) {
		return Mode{Point: geom.NaNPoint}
	}
	hRatio, err := p.HRatio.ValueAt(xy)
	if err != nil || math.IsNaN(hRatio) {
		return Mode{Point: geom.NaNPoint}
	}
	if math.IsNaN(groundZ) {
		return Mode{Point: geom.NaNPoint}
	}

	heightAboveGround := c.Z - groundZ
	if math.IsNaN(heightAboveGround) || math.IsInf(heightAboveGround, 0) {
		return Mode{Point: geom.NaNPoint}
	}
	if heightAboveGround < p.MinHeightAboveGround {
		return Mode{Point: geom.NaNPoint}
	}

	var trace []geom.Point3D
	current := c

	for i := 0; i < p.MaxCentroids; i++ {
		currentHeightAboveGround := current.Z - groundZ
		k := kernel.New(geom.XY(current), currentHeightAboveGround, groundZ, dRatio, hRatio)

		next, err := k.Centroid(idx)
		if err != nil {
			// Degenerate step: converge at the previous center. If this
			// happened on the very first iteration, there is no prior
			// centroid to report — the candidate itself is not a mode.
			if i == 0 {
				return Mode{Point: geom.NaNPoint}
			}
			return Mode{Point: current, Trace: trace}
		}

		if wantTrace {
			trace = append(trace, next)
		}

		dist := geom.Distance3D(next, current)
		current = next
		if dist <= p.ConvergenceDistance {
			return Mode{Point: current, Trace: trace}
		}
	}

	return Mode{Point: current, Trace: trace}
}
