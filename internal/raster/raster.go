// Package raster provides a read-only rectangular grid of scalar values
// indexed by world (x, y) coordinates, plus a degenerate single-value
// variant, behind a common Source interface.
//
// Both variants store values row-major from top-left (max y, min x) to
// bottom-right, matching the convention used by most GIS raster formats:
// row index increases as y decreases, column index increases as x increases.
package raster

import (
	"fmt"
	"math"

	"github.com/canopyscan/ams3d/internal/geom"
)

// ErrOutOfExtent indicates a queried coordinate lies outside a raster's
// bounding rectangle.
type ErrOutOfExtent struct {
	X, Y                   float64
	XMin, XMax, YMin, YMax float64
}

func (e *ErrOutOfExtent) Error() string {
	return fmt.Sprintf("raster: coordinate (%g, %g) outside extent [%g,%g]x[%g,%g]",
		e.X, e.Y, e.XMin, e.XMax, e.YMin, e.YMax)
}

// ErrInvalidCoordinate indicates a queried point has a non-finite x or y
// coordinate.
type ErrInvalidCoordinate struct {
	X, Y float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("raster: non-finite coordinate (%g, %g)", e.X, e.Y)
}

// ErrShapeMismatch indicates CopyWithValues was called with a
// replacement slice of the wrong length.
type ErrShapeMismatch struct {
	Expected, Actual int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("raster: replacement values have length %d, want %d", e.Actual, e.Expected)
}

// Source is the read-only raster contract consumed by the spatial index,
// kernel, and mean-shift driver. Grid and Constant both implement it.
type Source[T any] interface {
	// Values returns the underlying cell values, in storage order.
	Values() []T

	// HasValueAt reports whether p lies within the raster's extent.
	HasValueAt(p geom.Point2D) bool

	// ValueAt returns the cell value at p, failing if p is outside the
	// extent or has a non-finite coordinate.
	ValueAt(p geom.Point2D) (T, error)

	// ValueAtUnchecked returns the cell value at p with undefined
	// behavior if p lies outside the extent. Used on hot paths after an
	// earlier HasValueAt check, or when the caller accepts a garbage
	// (possibly NaN-propagating) result.
	ValueAtUnchecked(p geom.Point2D) T

	// CopyWithValues returns a raster with identical shape/extent but
	// different cell values.
	CopyWithValues(values []T) (Source[T], error)
}

// Grid is a row-major rectangular raster of scalar values.
type Grid[T any] struct {
	values []T
	rows   int
	cols   int
	xMin   float64
	xMax   float64
	yMin   float64
	yMax   float64

	rowHeight float64
	colWidth  float64
}

// NewGrid constructs a Grid. It panics if rows*cols != len(values) or if
// the extent is degenerate (xMax <= xMin or yMax <= yMin) — these are
// programmer errors at construction time, not runtime data conditions.
func NewGrid[T any](values []T, rows, cols int, xMin, xMax, yMin, yMax float64) *Grid[T] {
	if rows*cols != len(values) {
		panic(fmt.Sprintf("raster: rows*cols (%d*%d=%d) != len(values) (%d)", rows, cols, rows*cols, len(values)))
	}
	if xMax <= xMin || yMax <= yMin {
		panic("raster: degenerate extent")
	}
	return &Grid[T]{
		values:    values,
		rows:      rows,
		cols:      cols,
		xMin:      xMin,
		xMax:      xMax,
		yMin:      yMin,
		yMax:      yMax,
		rowHeight: (yMax - yMin) / float64(rows),
		colWidth:  (xMax - xMin) / float64(cols),
	}
}

// Values returns the underlying row-major cell values.
func (g *Grid[T]) Values() []T { return g.values }

// HasValueAt reports whether p lies in the closed bounding rectangle.
func (g *Grid[T]) HasValueAt(p geom.Point2D) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return false
	}
	return p.X >= g.xMin && p.X <= g.xMax && p.Y >= g.yMin && p.Y <= g.yMax
}

// cellIndex computes the row/col for p, clamping the boundary cases:
// y == yMin clamps the row index down from
// numRows to numRows-1, and symmetrically x == xMax clamps the column
// index down from numCols to numCols-1.
func (g *Grid[T]) cellIndex(p geom.Point2D) (row, col int) {
	row = int(math.Floor((g.yMax - p.Y) / g.rowHeight))
	if row >= g.rows {
		row = g.rows - 1
	}
	if row < 0 {
		row = 0
	}
	col = int(math.Floor((p.X - g.xMin) / g.colWidth))
	if col >= g.cols {
		col = g.cols - 1
	}
	if col < 0 {
		col = 0
	}
	return row, col
}

// ValueAt returns the cell value at p.
func (g *Grid[T]) ValueAt(p geom.Point2D) (T, error) {
	var zero T
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return zero, &ErrInvalidCoordinate{X: p.X, Y: p.Y}
	}
	if !g.HasValueAt(p) {
		return zero, &ErrOutOfExtent{
			X: p.X, Y: p.Y,
			XMin: g.xMin, XMax: g.xMax, YMin: g.yMin, YMax: g.yMax,
		}
	}
	return g.ValueAtUnchecked(p), nil
}

// ValueAtUnchecked returns the cell value at p without bounds checking.
func (g *Grid[T]) ValueAtUnchecked(p geom.Point2D) T {
	row, col := g.cellIndex(p)
	return g.values[row*g.cols+col]
}

// CopyWithValues returns a Grid with the same shape/extent but different
// cell values.
func (g *Grid[T]) CopyWithValues(values []T) (Source[T], error) {
	if len(values) != len(g.values) {
		return nil, &ErrShapeMismatch{Expected: len(g.values), Actual: len(values)}
	}
	cp := *g
	cp.values = values
	return &cp, nil
}
