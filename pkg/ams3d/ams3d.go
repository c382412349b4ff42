// Package ams3d implements Adaptive Mean Shift (AMS3D) tree-crown mode
// finding over airborne LiDAR point clouds, following Ferraz et al.
// (2012). For each input point, it iteratively relocates an asymmetric
// cylindrical kernel until its weighted centroid converges; the
// converged location is the point's "mode." Points belonging to the
// same tree crown converge to nearly identical modes clustered just
// below the crown apex. Downstream clustering of modes into crown IDs
// (e.g. DBSCAN) is out of scope for this package.
//
// # Basic usage
//
//	points := []ams3d.Point{{X: 50, Y: 50, Z: 12}, ...} // already above-ground heights
//	result := ams3d.LocateModesNormalized(points, ams3d.DefaultParams())
//	for i, mode := range result.Modes {
//	    fmt.Printf("point %d -> mode %+v\n", i, mode)
//	}
//
// # Ground-referenced elevations
//
// When z is an absolute elevation rather than an already-normalized
// above-ground height, supply a ground raster:
//
//	result := ams3d.LocateModesTerraneous(points, groundRaster, ams3d.DefaultParams())
//
// # Flexible ratios
//
// When canopy ratios vary spatially (rather than being fixed scalars),
// supply per-cell rasters for the diameter/height ratios as well:
//
//	result := ams3d.LocateModesFlexible(points, groundRaster, dRatioRaster, hRatioRaster, ams3d.DefaultParams())
package ams3d

import (
	"fmt"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/kernel"
	"github.com/canopyscan/ams3d/internal/meanshift"
	"github.com/canopyscan/ams3d/internal/points"
	"github.com/canopyscan/ams3d/internal/raster"
	"github.com/canopyscan/ams3d/internal/spatialindex"
)

// Point is a 3D LiDAR point as the host supplies it: x, y in planar
// coordinates, z either an above-ground height (normalized variant) or
// an absolute elevation (ground-raster / flexible variants).
type Point = geom.Point3D

// RasterSource is the read-only grid/constant contract for ground
// elevation and canopy ratio inputs. Build one with NewGrid or
// NewConstant.
type RasterSource = raster.Source[float64]

// NewGrid constructs a rectangular raster of scalar values, row-major
// from top-left (max y, min x) to bottom-right.
func NewGrid(values []float64, rows, cols int, xMin, xMax, yMin, yMax float64) RasterSource {
	return raster.NewGrid(values, rows, cols, xMin, xMax, yMin, yMax)
}

// NewConstant wraps a scalar as a RasterSource that answers every query
// with the same value.
func NewConstant(value float64) RasterSource {
	return raster.NewConstant(value)
}

// WithValues returns a raster with the same shape/extent as r but
// different cell values, for callers re-running mode location over an
// updated ground or ratio surface without rebuilding extent metadata.
// This is a build-time operation: a shape mismatch aborts the call
// rather than being encoded per-point, so the underlying error is
// wrapped here the way pkg/s57's LoadRegion wraps BuildIndexFromDir's
// error at its own package boundary.
func WithValues(r RasterSource, values []float64) (RasterSource, error) {
	out, err := r.CopyWithValues(values)
	if err != nil {
		return nil, fmt.Errorf("copy raster values: %w", err)
	}
	return out, nil
}

// Params configures a mean-shift run.
type Params struct {
	// MinPointHeightAboveGround rejects candidates whose above-ground
	// height is below this threshold (short-circuits to a NaN mode).
	MinPointHeightAboveGround float64

	// CentroidConvergenceDistance (epsilon) is the Euclidean distance
	// below which consecutive centroids are considered converged.
	CentroidConvergenceDistance float64

	// MaxNumCentroidsPerMode (N) caps the number of mean-shift
	// iterations per point.
	MaxNumCentroidsPerMode int

	// CrownDiameterToTreeHeight and CrownHeightToTreeHeight are the two
	// canopy-shape ratios used to derive kernel geometry from a
	// candidate's above-ground height, when not overridden per-cell by
	// LocateModesFlexible.
	CrownDiameterToTreeHeight float64
	CrownHeightToTreeHeight   float64

	// MinPointHeightAboveGroundGrid, if set, overrides
	// MinPointHeightAboveGround as the index's pre-filtering threshold
	// in LocateModesFlexible with a per-cell minimum read from this
	// raster instead of a single scalar (e.g. a terrain-dependent
	// floor that is stricter in open ground than under tall canopy).
	// Ignored by LocateModesNormalized and LocateModesTerraneous, and
	// unrelated to the scalar MinPointHeightAboveGround still used for
	// each candidate's own live above-ground-height rejection check.
	MinPointHeightAboveGroundGrid RasterSource

	// AlsoReturnCentroids requests the full per-point centroid trace in
	// the result, in addition to each point's mode.
	AlsoReturnCentroids bool

	// ShowProgress, if true and Progress is nil, installs a no-op
	// progress hook so meanshift.Run's bookkeeping runs identically
	// whether or not the caller wants per-tick notifications; set
	// Progress directly for an actual callback.
	ShowProgress bool

	// Progress is consulted every 2000 completed points. Returning true
	// requests cooperative cancellation; unfinished points are returned
	// as NaN-point modes with empty traces.
	Progress func(done, total int) (cancel bool)

	// Parallel enables concurrent point processing across a worker
	// pool; Workers overrides the default (runtime.NumCPU()).
	Parallel bool
	Workers  int
}

// DefaultParams returns reasonable starting parameters: a height floor
// of 2, epsilon=0.05, a 50-iteration cap, and the canopy ratios from
// Ferraz et al. (2012)'s worked conifer example (crown diameter ~0.6x
// tree height, crown height ~0.6x tree height).
func DefaultParams() Params {
	return Params{
		MinPointHeightAboveGround:   2,
		CentroidConvergenceDistance: 0.05,
		MaxNumCentroidsPerMode:      50,
		CrownDiameterToTreeHeight:   0.6,
		CrownHeightToTreeHeight:     0.6,
	}
}

// Result collects the per-point modes and, if requested, the flattened
// centroid traces with their owning point indices.
type Result struct {
	// Modes is aligned 1:1 with the input points; invalid or rejected
	// inputs yield a NaN point (test with geom.Point3D.IsNaN via the
	// point's own IsNaN method, exposed as Point).
	Modes []Point

	// Centroids is the flattened, in-input-order list of every
	// centroid produced across all points, present only when
	// Params.AlsoReturnCentroids is true.
	Centroids []Point

	// PointIndices associates each entry in Centroids with its owning
	// input index, enabling reassembly into per-point traces.
	PointIndices []int

	// Cancelled is true if a Progress callback requested cancellation
	// before all points were processed.
	Cancelled bool
}

func toMeanshiftParams(ground, dRatio, hRatio raster.Source[float64], p Params) meanshift.Params {
	return meanshift.Params{
		MinHeightAboveGround: p.MinPointHeightAboveGround,
		ConvergenceDistance:  p.CentroidConvergenceDistance,
		MaxCentroids:         p.MaxNumCentroidsPerMode,
		Ground:               ground,
		DRatio:               dRatio,
		HRatio:               hRatio,
	}
}

func runOptions(p Params) meanshift.RunOptions {
	progress := p.Progress
	if progress == nil && p.ShowProgress {
		progress = func(done, total int) bool { return false }
	}
	return meanshift.RunOptions{
		Parallel:  p.Parallel,
		Workers:   p.Workers,
		WantTrace: p.AlsoReturnCentroids,
		Progress:  progress,
	}
}

func assembleResult(r meanshift.Result) Result {
	out := Result{Modes: r.Modes, Cancelled: r.Cancelled}
	if r.Traces == nil {
		return out
	}
	for i, trace := range r.Traces {
		for _, c := range trace {
			out.Centroids = append(out.Centroids, c)
			out.PointIndices = append(out.PointIndices, i)
		}
	}
	return out
}

// LocateModesNormalized locates modes for points whose z is already an
// above-ground height (no ground raster needed).
func LocateModesNormalized(pts []Point, p Params) Result {
	ground := raster.NewConstant(0.0)
	dRatio := raster.NewConstant(p.CrownDiameterToTreeHeight)
	hRatio := raster.NewConstant(p.CrownHeightToTreeHeight)

	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveHeight(p.MinPointHeightAboveGround)))
	msParams := toMeanshiftParams(ground, dRatio, hRatio, p)
	r := meanshift.Run(pts, idx, msParams, runOptions(p))
	return assembleResult(r)
}

// LocateModesTerraneous locates modes for points whose z is an absolute
// elevation, using ground to compute above-ground heights.
func LocateModesTerraneous(pts []Point, ground RasterSource, p Params) Result {
	dRatio := raster.NewConstant(p.CrownDiameterToTreeHeight)
	hRatio := raster.NewConstant(p.CrownHeightToTreeHeight)

	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveGround(p.MinPointHeightAboveGround, ground)))
	msParams := toMeanshiftParams(ground, dRatio, hRatio, p)
	r := meanshift.Run(pts, idx, msParams, runOptions(p))
	return assembleResult(r)
}

// LocateModesFlexible locates modes for points whose z is an absolute
// elevation, with ground elevation and both canopy ratios each supplied
// as a raster (build a constant raster with NewConstant to keep one of
// them scalar). If p.MinPointHeightAboveGroundGrid is set, the index is
// pre-filtered against that per-cell minimum instead of the scalar
// p.MinPointHeightAboveGround.
func LocateModesFlexible(pts []Point, ground, dRatio, hRatio RasterSource, p Params) Result {
	var filter points.Filter
	if p.MinPointHeightAboveGroundGrid != nil {
		filter = points.FiniteAboveGroundGrid(p.MinPointHeightAboveGroundGrid, ground)
	} else {
		filter = points.FiniteAboveGround(p.MinPointHeightAboveGround, ground)
	}

	idx := spatialindex.Build(points.Seq(pts, filter))
	msParams := toMeanshiftParams(ground, dRatio, hRatio, p)
	r := meanshift.Run(pts, idx, msParams, runOptions(p))
	return assembleResult(r)
}

// BottomHeightGrid returns the per-cell kernel bottom elevations, in the
// storage order of heightAboveGround's values, computed from an
// above-ground-height grid, a canopy-height-ratio grid and a
// ground-elevation grid. It is an optional visualization helper, not used by any
// LocateModes* entry point — see DESIGN.md's Open Question notes.
func BottomHeightGrid(heightAboveGround, hRatio, ground RasterSource) []float64 {
	return kernel.BottomHeightGrid(heightAboveGround, hRatio, ground)
}
