// Package geom provides the 2D/3D point value types and distance metrics
// shared by the spatial index, kernel, and mean-shift driver.
package geom

import "math"

// Point2D is an (x, y) location in the horizontal plane.
type Point2D struct {
	X, Y float64
}

// Point3D is an (x, y, z) location. A Point3D with a NaN coordinate is
// used throughout this module as the "no result" sentinel; use IsNaN to
// test for it.
type Point3D struct {
	X, Y, Z float64
}

// NaNPoint is the canonical "no valid mode" sentinel value.
var NaNPoint = Point3D{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}

// XY projects p onto the horizontal plane.
func XY(p Point3D) Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

// IsFinite reports whether all of p's coordinates are finite.
func (p Point3D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// IsNaN reports whether p is the NaN-point sentinel (any coordinate NaN).
func (p Point3D) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)
}

// IsFinite reports whether both of p's coordinates are finite.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
