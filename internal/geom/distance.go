package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateSum indicates WeightedMean was called with weights that
// sum to zero (including the empty-points case).
type ErrDegenerateSum struct {
	NumPoints int
	WeightSum float64
}

func (e *ErrDegenerateSum) Error() string {
	return fmt.Sprintf("geom: weighted sum of weights is zero over %d points (sum=%g)", e.NumPoints, e.WeightSum)
}

func toVec(p Point3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

func fromVec(v r3.Vec) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// SquaredDistance3D returns the squared Euclidean ("comparable") distance
// between a and b. Cheaper than Distance3D and ordering-equivalent to it.
func SquaredDistance3D(a, b Point3D) float64 {
	d := r3.Sub(toVec(a), toVec(b))
	return r3.Dot(d, d)
}

// Distance3D returns the Euclidean distance between a and b.
func Distance3D(a, b Point3D) float64 {
	return math.Sqrt(SquaredDistance3D(a, b))
}

// SquaredDistance2D returns the squared Euclidean distance between the
// horizontal projections of a and b.
func SquaredDistance2D(a, b Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// WeightedMean returns the weighted centroid of pts with the corresponding
// weights, componentwise: (sum(w_i * p_i)) / (sum w_i). It fails with
// ErrDegenerateSum if the weights sum to zero (including the empty case).
func WeightedMean(pts []Point3D, weights []float64) (Point3D, error) {
	if len(pts) == 0 {
		return Point3D{}, &ErrDegenerateSum{NumPoints: 0}
	}

	sumW := 0.0
	for _, w := range weights {
		sumW += w
	}
	if sumW == 0 {
		return Point3D{}, &ErrDegenerateSum{NumPoints: len(pts), WeightSum: sumW}
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	zs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}

	return Point3D{
		X: stat.Mean(xs, weights),
		Y: stat.Mean(ys, weights),
		Z: stat.Mean(zs, weights),
	}, nil
}

// Add returns a + b.
func Add(a, b Point3D) Point3D {
	return fromVec(r3.Add(toVec(a), toVec(b)))
}

// Scale returns f * p.
func Scale(f float64, p Point3D) Point3D {
	return fromVec(r3.Scale(f, toVec(p)))
}
