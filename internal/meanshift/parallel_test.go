package meanshift

import (
	"testing"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/points"
	"github.com/canopyscan/ams3d/internal/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTowerIndex() (*spatialindex.Index, []geom.Point3D) {
	var pts []geom.Point3D
	for x := -2.0; x <= 2.0; x += 0.5 {
		for z := 1.0; z <= 20.0; z += 1.0 {
			pts = append(pts, geom.Point3D{X: 50 + x, Y: 50, Z: z})
		}
	}
	idx := spatialindex.Build(points.Seq(pts, points.FiniteAboveHeight(1)))
	return idx, pts
}

func TestRun_SerialAndParallelAgree(t *testing.T) {
	idx, pts := buildTowerIndex()
	p := normalizedParams(1, 0.05, 50, 0.2, 0.5)

	serial := Run(pts, idx, p, RunOptions{Parallel: false})
	parallel := Run(pts, idx, p, RunOptions{Parallel: true, Workers: 4})

	require.Equal(t, len(serial.Modes), len(parallel.Modes))
	for i := range serial.Modes {
		assert.Equal(t, serial.Modes[i], parallel.Modes[i], "index %d", i)
	}
}

func TestRun_ProgressCancellation(t *testing.T) {
	idx, pts := buildTowerIndex()
	// duplicate to exceed one progress tick
	big := make([]geom.Point3D, 0, len(pts)*1000)
	for i := 0; i < 1000; i++ {
		big = append(big, pts...)
	}
	p := normalizedParams(1, 0.05, 50, 0.2, 0.5)

	calls := 0
	result := Run(big, idx, p, RunOptions{
		Parallel: false,
		Progress: func(done, total int) bool {
			calls++
			return true // cancel on first tick
		},
	})

	assert.True(t, result.Cancelled)
	assert.Greater(t, calls, 0)
}

func TestRun_ProgressCompletes(t *testing.T) {
	idx, pts := buildTowerIndex()
	p := normalizedParams(1, 0.05, 50, 0.2, 0.5)

	var lastDone, lastTotal int
	Run(pts, idx, p, RunOptions{
		Parallel: false,
		Progress: func(done, total int) bool {
			lastDone, lastTotal = done, total
			return false
		},
	})
	assert.Equal(t, len(pts), lastTotal)
	assert.Equal(t, len(pts), lastDone)
}
