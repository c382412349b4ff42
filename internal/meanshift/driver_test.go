package meanshift

import (
	"math"
	"math/rand"
	"testing"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/points"
	"github.com/canopyscan/ams3d/internal/raster"
	"github.com/canopyscan/ams3d/internal/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizedParams(minH, eps float64, maxN int, dRatio, hRatio float64) Params {
	return Params{
		MinHeightAboveGround: minH,
		ConvergenceDistance:  eps,
		MaxCentroids:         maxN,
		Ground:               raster.NewConstant(0.0),
		DRatio:               raster.NewConstant(dRatio),
		HRatio:               raster.NewConstant(hRatio),
	}
}

// Scenario A: single tower.
func TestLocate_SingleTower(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var pts []geom.Point3D
	for i := 0; i < 1000; i++ {
		angle := rng.Float64() * 2 * math.Pi
		radius := rng.Float64() * 2
		pts = append(pts, geom.Point3D{
			X: 50 + radius*math.Cos(angle),
			Y: 50 + radius*math.Sin(angle),
			Z: rng.Float64() * 20,
		})
	}

	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveHeight(1)))
	p := normalizedParams(1, 0.01, 50, 0.2, 0.5)

	for _, c := range pts {
		if c.Z < 1 {
			continue
		}
		mode := Locate(c, idx, p, false)
		require.False(t, mode.Point.IsNaN(), "candidate %+v produced NaN mode", c)
		dx, dy := mode.Point.X-50, mode.Point.Y-50
		assert.LessOrEqual(t, math.Hypot(dx, dy), 0.2+1e-6)
		assert.GreaterOrEqual(t, mode.Point.Z, 15.0-1e-6)
		assert.LessOrEqual(t, mode.Point.Z, 20.0+1e-6)
	}
}

// Scenario B: rejection by height.
func TestLocate_RejectByHeight(t *testing.T) {
	idx := spatialindex.Build(points.Seq(nil, points.FiniteAboveHeight(1)))
	p := normalizedParams(1, 0.01, 50, 0.2, 0.5)

	mode := Locate(geom.Point3D{X: 0, Y: 0, Z: 0.5}, idx, p, true)
	assert.True(t, mode.Point.IsNaN())
	assert.Empty(t, mode.Trace)
}

// Scenario C: NaN input.
func TestLocate_NaNInput(t *testing.T) {
	idx := spatialindex.Build(points.Seq(nil, points.FiniteAboveHeight(1)))
	p := normalizedParams(1, 0.01, 50, 0.2, 0.5)

	mode := Locate(geom.Point3D{X: math.NaN(), Y: 0, Z: 10}, idx, p, true)
	assert.True(t, mode.Point.IsNaN())
	assert.Empty(t, mode.Trace)
}

// Scenario D: flat sheet.
func TestLocate_FlatSheet(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var pts []geom.Point3D
	for i := 0; i < 10000; i++ {
		pts = append(pts, geom.Point3D{
			X: rng.Float64() * 100,
			Y: rng.Float64() * 100,
			Z: 10,
		})
	}
	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveHeight(0)))
	p := normalizedParams(0, 0.05, 5, 0.1, 0.5)

	// sample a handful of interior points (kernel radius 0.5, keep away from edges)
	for i := 0; i < 20; i++ {
		c := pts[i]
		if c.X < 5 || c.X > 95 || c.Y < 5 || c.Y > 95 {
			continue
		}
		mode := Locate(c, idx, p, true)
		require.False(t, mode.Point.IsNaN())
		dist := math.Hypot(mode.Point.X-c.X, mode.Point.Y-c.Y)
		assert.LessOrEqual(t, dist, 1.0)
		assert.LessOrEqual(t, len(mode.Trace), 5)
	}
}

// Scenario F: iteration cap.
func TestLocate_IterationCap(t *testing.T) {
	// Two points straddling the candidate, with a kernel that spans both.
	// The centroid keeps creeping upward (about 10.76, 10.83, 10.84), so
	// with epsilon = 0 the convergence test never passes and the cap ends
	// the iteration; assert the cap is respected and the mode is not NaN.
	pts := []geom.Point3D{
		{X: 0, Y: 0, Z: 9},
		{X: 0, Y: 0, Z: 11},
	}
	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveHeight(0)))
	p := normalizedParams(0, 0, 3, 1.0, 1.0)

	mode := Locate(geom.Point3D{X: 0, Y: 0, Z: 10}, idx, p, true)
	assert.False(t, mode.Point.IsNaN())
	assert.LessOrEqual(t, len(mode.Trace), 3)
}

func TestLocate_OutOfExtentRaster(t *testing.T) {
	idx := spatialindex.Build(points.Seq(nil, points.FiniteAboveHeight(0)))
	p := Params{
		MinHeightAboveGround: 0,
		ConvergenceDistance:  0.1,
		MaxCentroids:         10,
		Ground:               raster.NewGrid([]float64{0}, 1, 1, -1, 1, -1, 1),
		DRatio:               raster.NewConstant(0.2),
		HRatio:               raster.NewConstant(0.5),
	}
	mode := Locate(geom.Point3D{X: 100, Y: 100, Z: 10}, idx, p, false)
	assert.True(t, mode.Point.IsNaN())
}
