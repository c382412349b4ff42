package points

import (
	"math"
	"slices"
	"testing"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/raster"
	"github.com/stretchr/testify/assert"
)

func TestFiniteAboveHeight(t *testing.T) {
	pts := []geom.Point3D{
		{X: 0, Y: 0, Z: 0.5},
		{X: 1, Y: 1, Z: 2},
		{X: math.NaN(), Y: 0, Z: 10},
	}
	f := FiniteAboveHeight(1)
	var kept []geom.Point3D
	for p := range Seq(pts, f) {
		kept = append(kept, p)
	}
	assert.Equal(t, []geom.Point3D{{X: 1, Y: 1, Z: 2}}, kept)
}

func TestFiniteAboveGround(t *testing.T) {
	ground := raster.NewConstant(100.0)
	pts := []geom.Point3D{
		{X: 0, Y: 0, Z: 100.5}, // hAG = 0.5, below min
		{X: 0, Y: 0, Z: 105},   // hAG = 5, kept
	}
	f := FiniteAboveGround(1, ground)
	var kept []geom.Point3D
	for p := range Seq(pts, f) {
		kept = append(kept, p)
	}
	assert.Len(t, kept, 1)
	assert.Equal(t, 105.0, kept[0].Z)
}

func TestFiniteAboveGroundGrid(t *testing.T) {
	ground := raster.NewConstant(0.0)
	minH := raster.NewConstant(2.0)
	pts := []geom.Point3D{
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: 3},
	}
	f := FiniteAboveGroundGrid(minH, ground)
	var kept []geom.Point3D
	for p := range Seq(pts, f) {
		kept = append(kept, p)
	}
	assert.Equal(t, []geom.Point3D{{X: 0, Y: 0, Z: 3}}, kept)
}

func TestSeq_EarlyStop(t *testing.T) {
	pts := []geom.Point3D{{Z: 5}, {Z: 6}, {Z: 7}}
	f := FiniteAboveHeight(0)
	var kept []float64
	for p := range Seq(pts, f) {
		kept = append(kept, p.Z)
		if len(kept) == 2 {
			break
		}
	}
	assert.True(t, slices.Equal([]float64{5, 6}, kept))
}
