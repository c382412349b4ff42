// Package spatialindex provides an R*-tree spatial index over 3D points,
// bulk-loaded from a filtered point sequence, supporting the
// vertical-cylinder range queries the kernel needs.
//
// Reference: the R-tree itself is github.com/dhconnelly/rtreego, the same
// library used for 2D chart-bounds indexing elsewhere in this codebase's
// lineage; here it indexes 3D LiDAR points instead.
package spatialindex

import (
	"iter"

	"github.com/canopyscan/ams3d/internal/geom"
	"github.com/dhconnelly/rtreego"
)

const (
	// Fanout is the R*-tree node fan-out fixed by the contract.
	Fanout = 8

	dims = 3

	// minBranch is the R*-tree minimum branching factor; rtreego wants
	// min <= max/2, so 4 pairs with Fanout=8.
	minBranch = 4

	// pointEpsilon gives each indexed point a vanishingly small but
	// strictly positive bounding box, since rtreego.NewRect rejects
	// zero-length sides and our entries are true points, not regions.
	pointEpsilon = 1e-9
)

// indexedPoint adapts geom.Point3D to rtreego.Spatial.
type indexedPoint struct {
	p geom.Point3D
}

// Bounds implements rtreego.Spatial.
func (ip indexedPoint) Bounds() rtreego.Rect {
	origin := rtreego.Point{ip.p.X - pointEpsilon, ip.p.Y - pointEpsilon, ip.p.Z - pointEpsilon}
	lengths := []float64{2 * pointEpsilon, 2 * pointEpsilon, 2 * pointEpsilon}
	rect, _ := rtreego.NewRect(origin, lengths)
	return rect
}

// Index is an immutable, bulk-loaded R*-tree over the 3D points supplied
// at construction. It is safe to query concurrently from multiple
// goroutines once built.
type Index struct {
	rtree *rtreego.Rtree
	n     int
}

// Build bulk-loads an Index from a filtered point sequence. Per the
// design notes, the sequence is materialized into a slice once and
// handed to the tree's bulk-loading constructor in one call — points are
// never Insert()-ed one at a time, since one-by-one insertion yields a
// badly balanced tree.
func Build(seq iter.Seq[geom.Point3D]) *Index {
	var objs []rtreego.Spatial
	for p := range seq {
		objs = append(objs, indexedPoint{p: p})
	}
	tree := rtreego.NewTree(dims, minBranch, Fanout, objs...)
	return &Index{rtree: tree, n: len(objs)}
}

// Len returns the number of points contained in the index.
func (idx *Index) Len() int { return idx.n }

// VerticalCylinder returns all indexed points whose (x, y) lies within
// radius of center and whose z lies in the inclusive range
// [zBottom, zTop]. The order of the result is unspecified.
//
// Implemented as a bounding-box candidate query refined by the exact
// predicate: z in range AND horizontal squared distance <= radius^2.
func (idx *Index) VerticalCylinder(center geom.Point2D, radius, zBottom, zTop float64) []geom.Point3D {
	if radius <= 0 || zTop <= zBottom {
		return nil
	}

	origin := rtreego.Point{center.X - radius, center.Y - radius, zBottom}
	lengths := []float64{2 * radius, 2 * radius, zTop - zBottom}
	box, err := rtreego.NewRect(origin, lengths)
	if err != nil {
		return nil
	}

	candidates := idx.rtree.SearchIntersect(box)
	r2 := radius * radius

	result := make([]geom.Point3D, 0, len(candidates))
	for _, c := range candidates {
		p := c.(indexedPoint).p
		if p.Z < zBottom || p.Z > zTop {
			continue
		}
		dx, dy := p.X-center.X, p.Y-center.Y
		if dx*dx+dy*dy > r2 {
			continue
		}
		result = append(result, p)
	}
	return result
}
