// Package isolevels computes contour threshold sets ("iso-levels") over a
// canonical density grid. Three schemes are provided: value-equidistant cut
// points, thresholds equalizing the probability mass of each induced bin, and
// thresholds equalizing the horizontal extent of each bin along the
// sorted-density curve. The package also scores how a grid's mass splits
// under a given threshold set.
package isolevels

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/asver12/iso-value-selection/internal/grid"
)

// DefaultK is the resolution used when the caller does not choose one.
const DefaultK = 5

// ErrBadResolution is returned for resolutions below one.
var ErrBadResolution = errors.New("isolevels: resolution must be a positive integer")

// EquiValue returns k-1 thresholds equidistant in value space, strictly
// between the grid's minimum and maximum. k == 1 yields an empty set.
func EquiValue(g *grid.Grid, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrBadResolution, k)
	}
	min, max := g.MinMax()
	levels := make([]float64, 0, k-1)
	step := (max - min) / float64(k)
	for i := 1; i < k; i++ {
		levels = append(levels, min+float64(i)*step)
	}
	return levels, nil
}

// EquiProbPerLevel returns thresholds cutting the density into k bins of
// equal probability mass. The thresholds are values of the sorted density at
// the points where its cumulative sum crosses each i/k fraction of the total.
func EquiProbPerLevel(g *grid.Grid, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrBadResolution, k)
	}

	p := g.Sorted()
	cum := make([]float64, len(p))
	floats.CumSum(cum, p)
	total := cum[len(cum)-1]

	levels := make([]float64, 0, k-1)
	for i := 1; i < k; i++ {
		target := total * float64(i) / float64(k)
		j := sort.SearchFloat64s(cum, target)
		if j >= len(p) {
			j = len(p) - 1
		}
		levels = append(levels, p[j])
	}
	return levels, nil
}

// EquiHorizontalProbPerLevel returns thresholds at equal index spacing along
// the sorted-density curve, so each bin covers the same number of grid cells.
func EquiHorizontalProbPerLevel(g *grid.Grid, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrBadResolution, k)
	}

	p := g.Sorted()
	levels := make([]float64, 0, k-1)
	for i := 1; i < k; i++ {
		j := i * len(p) / k
		if j >= len(p) {
			j = len(p) - 1
		}
		levels = append(levels, p[j])
	}
	return levels, nil
}

// ContourLevelWeight returns the probability mass of each of the
// len(levels)+1 bins induced by the thresholds, normalized by the grid's
// total mass. Thresholds are applied in ascending order; the input slice is
// not modified.
func ContourLevelWeight(levels []float64, g *grid.Grid) []float64 {
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	weights := make([]float64, len(sorted)+1)
	for _, v := range g.Data {
		// First bin whose upper threshold is not exceeded by v.
		bin := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= v })
		weights[bin] += v
	}

	if total := floats.Sum(g.Data); total != 0 {
		floats.Scale(1/total, weights)
	}
	return weights
}

// CrossingIndexes returns, for each level, the first index at which the
// ascending sequence p exceeds that level. Levels above every value of p map
// to len(p).
func CrossingIndexes(levels, p []float64) []int {
	idx := make([]int, len(levels))
	for i, lvl := range levels {
		idx[i] = sort.Search(len(p), func(j int) bool { return p[j] > lvl })
	}
	return idx
}
