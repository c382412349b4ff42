// Package kernel implements the AMS3D asymmetric truncated vertical
// cylinder kernel (Ferraz et al. 2012) and its weighted-centroid
// operation over a spatial index.
package kernel

import (
	"fmt"
	"math"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/raster"
	"github.com/canopyscan/ams3d/internal/spatialindex"
)

// GaussianGamma is the fixed coefficient of the vertical Gaussian
// profile weight, exp(GaussianGamma * s_v).
const GaussianGamma = -5.0

// ErrDegenerate indicates Centroid's cylinder query was empty or the
// total weight over its candidates was zero; the mean-shift driver
// treats this as convergence at the previous step, not as a failure.
type ErrDegenerate struct {
	Candidates  int
	TotalWeight float64
}

func (e *ErrDegenerate) Error() string {
	if e.Candidates == 0 {
		return "kernel: empty cylinder query, no candidate points"
	}
	return fmt.Sprintf("kernel: zero total weight over %d candidate points", e.Candidates)
}

// Kernel is an asymmetric truncated vertical cylinder: a cylinder of
// radius r and height h whose lower quarter (relative to its
// unclamped symmetric center) is truncated at the ground, so its
// bottom never falls below ground level while its full height h is
// preserved by extending upward.
type Kernel struct {
	center geom.Point2D

	radius float64
	radius2 float64

	bottomZ float64
	centerZ float64
	topZ    float64

	halfHeight   float64
	halfHeight2  float64
}

// New builds the kernel for a candidate at xyCenter whose above-ground
// height is heightAboveGround and whose ground elevation (in the same
// units as z) is groundZ. dRatio and hRatio are crown_diameter/tree_height
// and crown_height/tree_height respectively.
//
// The kernel's absolute bottom/top/center elevations are groundZ plus the
// cylinder's above-ground elevations, so in the normalized-height variant
// where groundZ is 0 this degenerates to the above-ground values directly.
func New(xyCenter geom.Point2D, heightAboveGround, groundZ, dRatio, hRatio float64) Kernel {
	h := heightAboveGround * hRatio
	r := (heightAboveGround * dRatio) / 2

	bottomAG := math.Max(0, heightAboveGround-h/4)
	bottomZ := groundZ + bottomAG
	topZ := bottomZ + h
	centerZ := bottomZ + h/2
	halfHeight := h / 2

	return Kernel{
		center:      xyCenter,
		radius:      r,
		radius2:     r * r,
		bottomZ:     bottomZ,
		centerZ:     centerZ,
		topZ:        topZ,
		halfHeight:  halfHeight,
		halfHeight2: halfHeight * halfHeight,
	}
}

// Center returns the kernel's xy center.
func (k Kernel) Center() geom.Point2D { return k.center }

// BottomZ, CenterZ, TopZ return the kernel's vertical extent.
func (k Kernel) BottomZ() float64 { return k.bottomZ }
func (k Kernel) CenterZ() float64 { return k.centerZ }
func (k Kernel) TopZ() float64    { return k.topZ }

// Centroid queries idx for all points inside the kernel's truncated
// cylinder and returns their Epanechnikov (horizontal) x Gaussian
// (vertical, gamma=-5) weighted centroid.
//
// The published formulation applies the profile functions to distances,
// which square their arguments; this implementation passes the already
// -squared relative distances and omits the inner squaring, which is
// numerically identical and is why the vertical term is computed
// relative to the kernel's center directly rather than to its boundary.
func (k Kernel) Centroid(idx *spatialindex.Index) (geom.Point3D, error) {
	candidates := idx.VerticalCylinder(k.center, k.radius, k.bottomZ, k.topZ)
	if len(candidates) == 0 {
		return geom.Point3D{}, &ErrDegenerate{Candidates: 0}
	}

	weights := make([]float64, len(candidates))
	var totalWeight float64
	for i, p := range candidates {
		dx, dy := p.X-k.center.X, p.Y-k.center.Y
		sh := (dx*dx + dy*dy) / k.radius2

		dz := p.Z - k.centerZ
		sv := (dz * dz) / k.halfHeight2

		weights[i] = (1 - sh) * math.Exp(GaussianGamma*sv)
		totalWeight += weights[i]
	}

	centroid, err := geom.WeightedMean(candidates, weights)
	if err != nil {
		return geom.Point3D{}, &ErrDegenerate{Candidates: len(candidates), TotalWeight: totalWeight}
	}
	return centroid, nil
}

// BottomHeightGrid returns the per-cell kernel bottom elevations, in the
// storage order of heightAboveGround's values, computed from an
// above-ground-height grid, a canopy-height ratio grid and a
// ground-elevation grid (a ratio or ground source with a single value is
// applied to every cell), for callers who want to visualize kernel extent without running
// mean-shift. It is not used by the mean-shift driver itself — the
// driver always derives a kernel's bottom from the candidate's own
// height, not from a precomputed grid.
func BottomHeightGrid(heightAboveGround, hRatio, ground raster.Source[float64]) []float64 {
	values := heightAboveGround.Values()
	out := make([]float64, len(values))
	hRatioValues := hRatio.Values()
	groundValues := ground.Values()
	for i, hAG := range values {
		r := hRatioValues[0]
		if len(hRatioValues) == len(values) {
			r = hRatioValues[i]
		}
		g := groundValues[0]
		if len(groundValues) == len(values) {
			g = groundValues[i]
		}
		h := hAG * r
		out[i] = g + math.Max(0, hAG-h/4)
	}
	return out
}
