// Package grid normalizes sampled density data into a canonical rectangular
// grid with explicit axis coordinates. Input densities may arrive as a flat
// slice (shape inferred or reconstructed from axes) or as pre-shaped rows;
// either way the result is a row-major Grid whose first dimension matches the
// X axis and second dimension matches the Y axis.
package grid

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNonSquare is returned when a flat density has no axes and its
	// length is not a perfect square, so no grid shape can be inferred.
	ErrNonSquare = errors.New("grid: cannot infer a square grid from a non-square-length flat array")

	// ErrAxisPairing is returned when exactly one of the two axes is
	// supplied. Axes must be given together or not at all.
	ErrAxisPairing = errors.New("grid: x and y must be both set or both unset")

	// ErrShapeMismatch is returned when the product of the axis lengths
	// does not equal the density element count.
	ErrShapeMismatch = errors.New("grid: shapes of x, y and pdf do not match")

	// ErrRagged is returned by FromRows when the rows have uneven lengths.
	ErrRagged = errors.New("grid: rows have uneven lengths")

	// ErrEmpty is returned when the density contains no samples.
	ErrEmpty = errors.New("grid: density has no samples")
)

// Grid is a canonical two-dimensional density sample. Data is row-major with
// Rows*Cols elements; X holds the coordinate of each row and Y the coordinate
// of each column, so len(X) == Rows and len(Y) == Cols always hold.
type Grid struct {
	Data []float64
	Rows int
	Cols int
	X    []float64
	Y    []float64
}

// Normalize canonicalizes a flat density slice with optional axes.
//
// With both axes nil the shape is inferred: the length must be a perfect
// square s*s, the grid becomes s by s and both axes are synthesized as s
// evenly spaced points over [0, 1]. With both axes set, len(x)*len(y) must
// equal len(pdf) and the grid is shaped (len(x), len(y)). Supplying exactly
// one axis is an error. The caller's slices are copied, never aliased.
func Normalize(pdf []float64, x, y []float64) (*Grid, error) {
	if len(pdf) == 0 {
		return nil, ErrEmpty
	}

	switch {
	case x == nil && y == nil:
		s := isqrt(len(pdf))
		if s*s != len(pdf) {
			return nil, fmt.Errorf("%w: %d elements", ErrNonSquare, len(pdf))
		}
		return build(pdf, Linspace(0, 1, s), Linspace(0, 1, s))

	case x == nil || y == nil:
		return nil, ErrAxisPairing

	default:
		if len(x)*len(y) != len(pdf) {
			return nil, fmt.Errorf("%w: %d*%d != %d", ErrShapeMismatch, len(x), len(y), len(pdf))
		}
		return build(pdf, x, y)
	}
}

// NormalizeIndexes behaves like Normalize but lets the caller pass axes as a
// single paired argument. indexes[0] overrides x and indexes[1] overrides y
// when present; missing entries leave the named arguments untouched.
func NormalizeIndexes(pdf []float64, x, y []float64, indexes [][]float64) (*Grid, error) {
	if len(indexes) > 0 {
		x = indexes[0]
	}
	if len(indexes) > 1 {
		y = indexes[1]
	}
	return Normalize(pdf, x, y)
}

// FromRows canonicalizes an already two-dimensional density. The shape is
// accepted as-is and axes are synthesized as evenly spaced coordinates over
// [0, 1] matching each dimension's length.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d", ErrRagged, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return build(data, Linspace(0, 1, len(rows)), Linspace(0, 1, cols))
}

func build(data, x, y []float64) (*Grid, error) {
	g := &Grid{
		Data: append([]float64(nil), data...),
		Rows: len(x),
		Cols: len(y),
		X:    append([]float64(nil), x...),
		Y:    append([]float64(nil), y...),
	}
	// Postcondition shared by every constructor path.
	if g.Rows != len(g.X) || g.Cols != len(g.Y) || g.Rows*g.Cols != len(g.Data) {
		return nil, fmt.Errorf("%w: grid %dx%d with %d elements", ErrShapeMismatch, g.Rows, g.Cols, len(g.Data))
	}
	return g, nil
}

// At returns the density value at row i, column j.
func (g *Grid) At(i, j int) float64 {
	return g.Data[i*g.Cols+j]
}

// MinMax returns the smallest and largest density values.
func (g *Grid) MinMax() (min, max float64) {
	min, max = g.Data[0], g.Data[0]
	for _, v := range g.Data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Sorted returns the density values in ascending order as a fresh slice.
func (g *Grid) Sorted() []float64 {
	p := append([]float64(nil), g.Data...)
	sort.Float64s(p)
	return p
}

// Linspace returns n evenly spaced points from a to b inclusive. A single
// point collapses to {a}.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	pts := make([]float64, n)
	if n == 1 {
		pts[0] = a
		return pts
	}
	step := (b - a) / float64(n-1)
	for i := range pts {
		pts[i] = a + float64(i)*step
	}
	pts[n-1] = b
	return pts
}

// isqrt returns the integer square root of n (floor).
func isqrt(n int) int {
	if n < 0 {
		return 0
	}
	s := 0
	for (s+1)*(s+1) <= n {
		s++
	}
	return s
}
