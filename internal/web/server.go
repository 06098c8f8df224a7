// Package web serves the iso-level comparison as interactive go-echarts
// pages: per-scheme bin-weight bars, the sorted-density curve with threshold
// mark lines, and a grid heatmap. It is the browser-facing counterpart of
// the PNG figures produced by the plotting package.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/asver12/iso-value-selection/internal/grid"
	"github.com/asver12/iso-value-selection/internal/isolevels"
	"github.com/asver12/iso-value-selection/internal/plotting"
)

// viridis-like ramp for the heatmap visual map.
var heatColors = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// Server renders comparison charts for one normalized grid.
type Server struct {
	grid   *grid.Grid
	res    plotting.Resolutions
	labels [3]string
	mux    *http.ServeMux
}

// NewServer builds a server for the given grid and resolutions. A zero
// labels array falls back to plotting.DefaultLabels.
func NewServer(g *grid.Grid, res plotting.Resolutions, labels [3]string) *Server {
	if labels == ([3]string{}) {
		labels = plotting.DefaultLabels
	}
	s := &Server{grid: g, res: res, labels: labels, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleDashboard)
	s.mux.HandleFunc("/bars", s.handleBars)
	s.mux.HandleFunc("/density", s.handleDensity)
	s.mux.HandleFunc("/heatmap", s.handleHeatmap)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// resolution picks the level count from the ?k= query parameter, defaulting
// to the first configured resolution.
func (s *Server) resolution(r *http.Request) (int, error) {
	ks := s.res.Values()
	if len(ks) == 0 {
		ks = []int{isolevels.DefaultK}
	}
	k := ks[0]
	if q := r.URL.Query().Get("k"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 {
			return 0, fmt.Errorf("invalid resolution %q", q)
		}
		k = v
	}
	return k, nil
}

// levelSets computes the three schemes' thresholds at resolution k, in the
// fixed scheme order.
func (s *Server) levelSets(k int) ([][]float64, error) {
	ev, err := isolevels.EquiValue(s.grid, k)
	if err != nil {
		return nil, err
	}
	pv, err := isolevels.EquiProbPerLevel(s.grid, k)
	if err != nil {
		return nil, err
	}
	hv, err := isolevels.EquiHorizontalProbPerLevel(s.grid, k)
	if err != nil {
		return nil, err
	}
	return [][]float64{ev, pv, hv}, nil
}

// handleDashboard renders a simple page with iframes to the individual
// charts.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	k, err := s.resolution(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Iso-Level Comparison</title></head>
<body style="background:#111;color:#eee;font-family:sans-serif">
<h2>Iso-level comparison (k=%d, grid %dx%d)</h2>
<iframe src="/bars?k=%d" style="width:100%%;height:520px;border:0"></iframe>
<iframe src="/density?k=%d" style="width:100%%;height:520px;border:0"></iframe>
<iframe src="/heatmap?k=%d" style="width:100%%;height:620px;border:0"></iframe>
</body>
</html>`, k, s.grid.Rows, s.grid.Cols, k, k, k)
}

// handleBars renders one grouped bar chart: for each scheme, the probability
// mass of each bin induced by its thresholds.
func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	k, err := s.resolution(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sets, err := s.levelSets(k)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Level Weights", Theme: "dark", Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Bin probability mass per scheme", Subtitle: fmt.Sprintf("k=%d", k)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	binLabels := make([]string, k)
	for i := range binLabels {
		binLabels[i] = fmt.Sprintf("L%d", i+1)
	}
	bar.SetXAxis(binLabels)

	for i, levels := range sets {
		weights := isolevels.ContourLevelWeight(levels, s.grid)
		data := make([]opts.BarData, len(weights))
		for j, wgt := range weights {
			data[j] = opts.BarData{Value: wgt}
		}
		bar.AddSeries(s.labels[i], data)
	}

	s.render(w, bar)
}

// handleDensity renders the sorted-density curve with horizontal mark lines
// at one scheme's thresholds (?scheme=old|vertical|horizontal).
func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	k, err := s.resolution(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sets, err := s.levelSets(k)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	scheme := r.URL.Query().Get("scheme")
	idx := 1 // vertical reads best on the sorted curve
	for i, l := range s.labels {
		if l == scheme {
			idx = i
		}
	}
	levels := sets[idx]

	sorted := s.grid.Sorted()
	xs := make([]string, len(sorted))
	data := make([]opts.LineData, len(sorted))
	for i, v := range sorted {
		xs[i] = strconv.Itoa(i)
		data[i] = opts.LineData{Value: v}
	}

	marks := make([]opts.MarkLineNameYAxisItem, len(levels))
	for i, lvl := range levels {
		marks[i] = opts.MarkLineNameYAxisItem{Name: fmt.Sprintf("L%d", i+1), YAxis: lvl}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Density", Theme: "dark", Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Sorted density", Subtitle: fmt.Sprintf("scheme=%s k=%d", s.labels[idx], k)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xs)
	line.AddSeries("density", data, charts.WithMarkLineNameYAxisItemOpts(marks...))

	s.render(w, line)
}

// handleHeatmap renders the grid as a heatmap with a continuous visual map
// over the density range.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolution(r); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	g := s.grid
	min, max := g.MinMax()

	xs := make([]string, g.Rows)
	for i, v := range g.X {
		xs[i] = strconv.FormatFloat(v, 'g', 4, 64)
	}
	ys := make([]string, g.Cols)
	for j, v := range g.Y {
		ys[j] = strconv.FormatFloat(v, 'g', 4, 64)
	}

	data := make([]opts.HeatMapData, 0, g.Rows*g.Cols)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, g.At(i, j)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Density Grid", Theme: "dark", Width: "900px", Height: "580px"}),
		charts.WithTitleOpts(opts.Title{Title: "Density grid", Subtitle: fmt.Sprintf("%dx%d", g.Rows, g.Cols)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.AddSeries("density", data)

	s.render(w, hm)
}

type renderer interface {
	Render(w io.Writer) error
}

func (s *Server) render(w http.ResponseWriter, chart renderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
