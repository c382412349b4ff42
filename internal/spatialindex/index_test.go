package spatialindex

import (
	"testing"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/canopyscan/ams3d/internal/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(pts []geom.Point3D) *Index {
	return Build(points.Seq(pts, points.FiniteAboveHeight(0)))
}

func TestBuild_Len(t *testing.T) {
	pts := []geom.Point3D{{0, 0, 1}, {1, 1, 2}, {2, 2, 3}}
	idx := buildTestIndex(pts)
	assert.Equal(t, 3, idx.Len())
}

func TestBuild_FiltersExcluded(t *testing.T) {
	pts := []geom.Point3D{{0, 0, -1}, {1, 1, 2}}
	idx := buildTestIndex(pts)
	require.Equal(t, 1, idx.Len())
}

func TestVerticalCylinder(t *testing.T) {
	pts := []geom.Point3D{
		{X: 0, Y: 0, Z: 5},  // inside
		{X: 10, Y: 0, Z: 5}, // too far horizontally
		{X: 0, Y: 0, Z: 50}, // too far vertically
		{X: 1, Y: 1, Z: 5},  // inside (dist ~1.41 < 2)
	}
	idx := buildTestIndex(pts)

	got := idx.VerticalCylinder(geom.Point2D{X: 0, Y: 0}, 2, 0, 10)
	assert.Len(t, got, 2)
}

func TestVerticalCylinder_InclusiveBounds(t *testing.T) {
	pts := []geom.Point3D{
		{X: 2, Y: 0, Z: 10}, // exactly on radius and zTop
	}
	idx := buildTestIndex(pts)
	got := idx.VerticalCylinder(geom.Point2D{X: 0, Y: 0}, 2, 0, 10)
	assert.Len(t, got, 1)
}

func TestVerticalCylinder_Empty(t *testing.T) {
	idx := buildTestIndex(nil)
	got := idx.VerticalCylinder(geom.Point2D{X: 0, Y: 0}, 2, 0, 10)
	assert.Empty(t, got)
}
