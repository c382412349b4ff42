package raster

import "github.com/canopyscan/ams3d/internal/geom"

// Constant is the degenerate single-value raster: it answers HasValueAt
// true everywhere and returns its one value unconditionally, used to
// adapt a scalar ground elevation or canopy ratio to the Source[T]
// interface the kernel and driver consume.
type Constant[T any] struct {
	value T
}

// NewConstant wraps a scalar value as a Source[T].
func NewConstant[T any](value T) *Constant[T] {
	return &Constant[T]{value: value}
}

// Values returns a single-element slice containing the constant value.
func (c *Constant[T]) Values() []T { return []T{c.value} }

// HasValueAt always returns true.
func (c *Constant[T]) HasValueAt(p geom.Point2D) bool { return true }

// ValueAt always returns the constant value; it never fails, since a
// constant raster has no extent to fall outside of and no coordinate
// dependency to be invalid for.
func (c *Constant[T]) ValueAt(p geom.Point2D) (T, error) { return c.value, nil }

// ValueAtUnchecked returns the constant value.
func (c *Constant[T]) ValueAtUnchecked(p geom.Point2D) T { return c.value }

// CopyWithValues returns a new Constant carrying values[0]. It fails with
// ErrShapeMismatch unless values has exactly one entry.
func (c *Constant[T]) CopyWithValues(values []T) (Source[T], error) {
	if len(values) != 1 {
		return nil, &ErrShapeMismatch{Expected: 1, Actual: len(values)}
	}
	return NewConstant(values[0]), nil
}
