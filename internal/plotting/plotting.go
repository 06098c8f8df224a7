// Package plotting renders comparative visualizations of a density grid
// under several iso-level selection schemes: per-scheme bar summaries of bin
// probability mass, side-by-side contour plots, and sorted-density step plots
// annotated with level and crossing lines. Figures are written as PNG files.
package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/asver12/iso-value-selection/internal/grid"
	"github.com/asver12/iso-value-selection/internal/isolevels"
)

// ErrLengthMismatch is returned when the per-scheme sequences passed to a
// comparison do not have equal lengths.
var ErrLengthMismatch = errors.New("plotting: all arguments must be sequences of equal length")

// DefaultLabels titles the three schemes in their fixed computation order:
// value-equidistant, probability-equidistant by count, and
// probability-equidistant by horizontal extent.
var DefaultLabels = [3]string{"old", "vertical", "horizontal"}

// Config carries the explicit orchestrator settings. Zero values fall back
// to DefaultLabels and the "plots" output directory.
type Config struct {
	Labels    [3]string
	OutputDir string
}

// DefaultConfig returns the stock comparison configuration.
func DefaultConfig() Config {
	return Config{Labels: DefaultLabels, OutputDir: "plots"}
}

// SchemeLevels records one scheme's thresholds and bin weights at one
// resolution.
type SchemeLevels struct {
	K       int
	Scheme  string
	Levels  []float64
	Weights []float64
}

// RunResult summarizes a combined comparison run: the resolutions covered,
// every computed level set, and the figure files written.
type RunResult struct {
	Resolutions []int
	Levels      []SchemeLevels
	Figures     []string
}

// LevelWeightBars builds one bar panel per scheme showing the probability
// mass of each bin induced by that scheme's thresholds. k thresholds cut the
// density into k+1 bins, labelled L1..L(k+1) in threshold order. The three
// argument sequences must have equal length.
func LevelWeightBars(levelsPerScheme [][]float64, densities []*grid.Grid, labels []string) (*Figure, error) {
	if len(levelsPerScheme) != len(densities) || len(levelsPerScheme) != len(labels) {
		return nil, ErrLengthMismatch
	}

	f := newFigure(labels, 4*vg.Inch, 2*vg.Inch)
	for i, levels := range levelsPerScheme {
		weights := isolevels.ContourLevelWeight(levels, densities[i])

		bars, err := plotter.NewBarChart(plotter.Values(weights), vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("bar chart for %q: %w", labels[i], err)
		}
		bars.LineStyle.Width = 0

		p := f.Panels[i]
		p.Add(bars)

		binLabels := make([]string, len(weights))
		for j := range weights {
			binLabels[j] = fmt.Sprintf("L%d", j+1)
		}
		p.NominalX(binLabels...)
	}
	return f, nil
}

// ContourComparison builds one contour panel per scheme over the same grid,
// each using that scheme's deduplicated, sorted thresholds and titled with
// its label.
func ContourComparison(levelsPerScheme [][]float64, g *grid.Grid, labels []string) (*Figure, error) {
	if len(levelsPerScheme) != len(labels) {
		return nil, ErrLengthMismatch
	}

	f := newFigure(labels, 4*vg.Inch, 4*vg.Inch)
	for i, levels := range levelsPerScheme {
		p := f.Panels[i]
		p.X.Label.Text = "x"
		p.Y.Label.Text = "y"

		unique := dedupSorted(levels)
		if len(unique) == 0 {
			// A single bin draws no contour lines.
			continue
		}
		c := plotter.NewContour(
			gridXYZ{g},
			unique,
			palette.Rainbow(len(unique), palette.Blue, palette.Red, 1, 1, 1),
		)
		p.Add(c)
	}
	return f, nil
}

// Density builds a step plot of the sorted density values, with a horizontal
// line per level and a dashed vertical line where each level first crosses
// the curve.
func Density(levels []float64, g *grid.Grid) (*Figure, error) {
	p := g.Sorted()
	f := newFigure([]string{"density"}, 6*vg.Inch, 4*vg.Inch)
	panel := f.Panels[0]

	xMax := float64(len(p) - 1)
	if err := addHLine(panel, 0, xMax, zeroLineColor, zeroLineWidth); err != nil {
		return nil, err
	}
	if err := addLevelLines(panel, levels, xMax); err != nil {
		return nil, err
	}
	if err := addCrossingLines(panel, levels, p, p[len(p)-1]); err != nil {
		return nil, err
	}
	if err := addStep(panel, p); err != nil {
		return nil, err
	}
	return f, nil
}

// CumulativeDensity builds a step plot of the cumulative sum of the sorted
// density values, with dashed vertical lines at the indexes bounding the
// given levels.
func CumulativeDensity(levels []float64, g *grid.Grid) (*Figure, error) {
	p := g.Sorted()
	cum := make([]float64, len(p))
	sum := 0.0
	for i, v := range p {
		sum += v
		cum[i] = sum
	}

	f := newFigure([]string{"cumulative density"}, 6*vg.Inch, 4*vg.Inch)
	panel := f.Panels[0]

	xMax := float64(len(p) - 1)
	if err := addHLine(panel, 0, xMax, zeroLineColor, zeroLineWidth); err != nil {
		return nil, err
	}
	if err := addCrossingLines(panel, levels, p, cum[len(cum)-1]); err != nil {
		return nil, err
	}
	if err := addStep(panel, cum); err != nil {
		return nil, err
	}
	return f, nil
}

// Combined runs the full comparison pipeline over one normalized grid: for
// each resolution it derives the three level sets in fixed scheme order,
// writes one bar-weight figure per resolution, then one contour-comparison
// figure per resolution in the same order. All figures land in
// cfg.OutputDir.
func Combined(g *grid.Grid, res Resolutions, cfg Config) (*RunResult, error) {
	if res.Len() == 0 {
		res = DefaultResolutions()
	}
	if cfg.Labels == ([3]string{}) {
		cfg.Labels = DefaultLabels
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultConfig().OutputDir
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ks := res.Values()
	result := &RunResult{Resolutions: ks}

	// Derive every level set before rendering anything, so a bad resolution
	// aborts with no partial figures on disk.
	levelSets := make([][][]float64, len(ks))
	for i, k := range ks {
		ev, err := isolevels.EquiValue(g, k)
		if err != nil {
			return nil, err
		}
		pv, err := isolevels.EquiProbPerLevel(g, k)
		if err != nil {
			return nil, err
		}
		hv, err := isolevels.EquiHorizontalProbPerLevel(g, k)
		if err != nil {
			return nil, err
		}
		levelSets[i] = [][]float64{ev, pv, hv}

		for s, levels := range levelSets[i] {
			result.Levels = append(result.Levels, SchemeLevels{
				K:       k,
				Scheme:  cfg.Labels[s],
				Levels:  levels,
				Weights: isolevels.ContourLevelWeight(levels, g),
			})
		}
	}

	for i, k := range ks {
		labels := resolutionLabels(cfg.Labels, k)
		fig, err := LevelWeightBars(levelSets[i], []*grid.Grid{g, g, g}, labels)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("level_weights_k%02d.png", k))
		if err := fig.Save(path); err != nil {
			return nil, err
		}
		result.Figures = append(result.Figures, path)
		Logf("wrote %s", path)
	}

	for i, k := range ks {
		fig, err := ContourComparison(levelSets[i], g, resolutionLabels(cfg.Labels, k))
		if err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("contour_comparison_k%02d.png", k))
		if err := fig.Save(path); err != nil {
			return nil, err
		}
		result.Figures = append(result.Figures, path)
		Logf("wrote %s", path)
	}

	return result, nil
}

func resolutionLabels(labels [3]string, k int) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = fmt.Sprintf("%s (k=%d)", l, k)
	}
	return out
}

// addStep adds a post-step line through the values at indexes 0..n-1.
func addStep(p *plot.Plot, values []float64) error {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.StepStyle = plotter.PostStep
	p.Add(line)
	return nil
}

// addLevelLines adds one horizontal line per level across [0, xMax].
func addLevelLines(p *plot.Plot, levels []float64, xMax float64) error {
	for _, lvl := range levels {
		if err := addHLine(p, lvl, xMax, markLineColor, zeroLineWidth); err != nil {
			return err
		}
	}
	return nil
}

// addCrossingLines adds a dashed vertical line at the index where each level
// first crosses the ascending sequence sorted.
func addCrossingLines(p *plot.Plot, levels, sorted []float64, yMax float64) error {
	for _, idx := range isolevels.CrossingIndexes(levels, sorted) {
		line, err := plotter.NewLine(plotter.XYs{
			{X: float64(idx), Y: 0},
			{X: float64(idx), Y: yMax},
		})
		if err != nil {
			return err
		}
		line.Color = markLineColor
		line.Width = zeroLineWidth
		line.Dashes = crossingDashes
		p.Add(line)
	}
	return nil
}

func addHLine(p *plot.Plot, y, xMax float64, c color.Color, w vg.Length) error {
	line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: xMax, Y: y}})
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = w
	p.Add(line)
	return nil
}

// dedupSorted returns the distinct values of levels in ascending order.
func dedupSorted(levels []float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// gridXYZ adapts a grid.Grid to the plotter contour interface. Screen X maps
// to the grid's column axis and screen Y to its row axis.
type gridXYZ struct{ g *grid.Grid }

func (d gridXYZ) Dims() (c, r int)   { return d.g.Cols, d.g.Rows }
func (d gridXYZ) Z(c, r int) float64 { return d.g.At(r, c) }
func (d gridXYZ) X(c int) float64    { return d.g.Y[c] }
func (d gridXYZ) Y(r int) float64    { return d.g.X[r] }
