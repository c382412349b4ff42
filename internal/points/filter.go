// Package points provides lazily-advancing, forward-only filtered
// sequences over a Point3D slice, used to feed the spatial index's
// bulk-load constructor. Each predicate skips non-finite points and
// points below an applicable minimum above-ground height, so the index
// never stores a point the mean-shift driver could not legally query.
package points

import (
	"iter"
	"math"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/raster"
)

// Filter decides whether to keep a point. It is evaluated once per
// point during bulk-load materialization, never re-evaluated.
type Filter func(p geom.Point3D) bool

// FiniteAboveHeight keeps points with all-finite coordinates and
// z >= minZ. Used by the normalized-height orchestration variant, where
// z is already expressed as height above ground.
func FiniteAboveHeight(minZ float64) Filter {
	return func(p geom.Point3D) bool {
		return p.IsFinite() && p.Z >= minZ
	}
}

// FiniteAboveGround keeps points with all-finite coordinates and
// above-ground height (z - ground.ValueAtUnchecked(xy)) finite and
// >= minHeightAboveGround.
func FiniteAboveGround(minHeightAboveGround float64, ground raster.Source[float64]) Filter {
	return func(p geom.Point3D) bool {
		if !p.IsFinite() {
			return false
		}
		hAG := p.Z - ground.ValueAtUnchecked(geom.XY(p))
		if math.IsNaN(hAG) || math.IsInf(hAG, 0) {
			return false
		}
		return hAG >= minHeightAboveGround
	}
}

// FiniteAboveGroundGrid is like FiniteAboveGround but reads the minimum
// above-ground height from a per-cell raster rather than a scalar.
func FiniteAboveGroundGrid(minHeightAboveGround raster.Source[float64], ground raster.Source[float64]) Filter {
	return func(p geom.Point3D) bool {
		if !p.IsFinite() {
			return false
		}
		xy := geom.XY(p)
		g := ground.ValueAtUnchecked(xy)
		m := minHeightAboveGround.ValueAtUnchecked(xy)
		if math.IsNaN(g) || math.IsInf(g, 0) || math.IsNaN(m) || math.IsInf(m, 0) {
			return false
		}
		hAG := p.Z - g
		if math.IsNaN(hAG) || math.IsInf(hAG, 0) {
			return false
		}
		return hAG >= m
	}
}

// Seq returns a lazy, forward-only, non-restartable sequence over pts
// that yields only the elements f keeps, in original order. It never
// copies points; each yielded value is the slice element itself.
func Seq(pts []geom.Point3D, f Filter) iter.Seq[geom.Point3D] {
	return func(yield func(geom.Point3D) bool) {
		for _, p := range pts {
			if !f(p) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
