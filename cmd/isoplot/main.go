// Command isoplot renders comparative iso-level visualizations of a sampled
// 2D density. It reads density values from a JSON file (a flat array or an
// array of rows), normalizes them into a grid, writes the comparison figures
// as PNGs and can optionally record the run in a sqlite run log and serve an
// interactive dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/asver12/iso-value-selection/internal/grid"
	"github.com/asver12/iso-value-selection/internal/isolevels"
	"github.com/asver12/iso-value-selection/internal/plotting"
	"github.com/asver12/iso-value-selection/internal/runlog"
	"github.com/asver12/iso-value-selection/internal/web"
)

// Config holds the parsed command line.
type Config struct {
	InputFile   string
	XAxis       string
	YAxis       string
	Resolutions string
	OutputDir   string
	Labels      string
	DBFile      string
	Listen      string
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.InputFile, "input", "", "Path to JSON density file (flat array or array of rows)")
	flag.StringVar(&cfg.XAxis, "x", "", "Comma-separated x axis coordinates (requires -y)")
	flag.StringVar(&cfg.YAxis, "y", "", "Comma-separated y axis coordinates (requires -x)")
	flag.StringVar(&cfg.Resolutions, "k", "", "Comma-separated level counts (default: "+strconv.Itoa(isolevels.DefaultK)+")")
	flag.StringVar(&cfg.OutputDir, "output", "plots", "Output directory for figures")
	flag.StringVar(&cfg.Labels, "labels", "", "Three comma-separated scheme labels (default: old,vertical,horizontal)")
	flag.StringVar(&cfg.DBFile, "db", "", "Optional sqlite file to record the run in")
	flag.StringVar(&cfg.Listen, "listen", "", "Optional address to serve the comparison dashboard on (e.g. :8080)")

	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.InputFile == "" {
		log.Fatal("Input file is required")
	}

	g, err := loadGrid(cfg)
	if err != nil {
		log.Fatalf("Failed to load density: %v", err)
	}
	log.Printf("Normalized density to %dx%d grid", g.Rows, g.Cols)

	res, err := parseResolutions(cfg.Resolutions)
	if err != nil {
		log.Fatalf("Invalid resolutions: %v", err)
	}

	plotCfg := plotting.DefaultConfig()
	plotCfg.OutputDir = cfg.OutputDir
	if cfg.Labels != "" {
		parts := strings.Split(cfg.Labels, ",")
		if len(parts) != 3 {
			log.Fatalf("Expected exactly 3 labels, got %d", len(parts))
		}
		for i, p := range parts {
			plotCfg.Labels[i] = strings.TrimSpace(p)
		}
	}

	result, err := plotting.Combined(g, res, plotCfg)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}
	log.Printf("Wrote %d figures to %s", len(result.Figures), cfg.OutputDir)

	if cfg.DBFile != "" {
		if err := recordRun(cfg, g, result); err != nil {
			log.Fatalf("Failed to record run: %v", err)
		}
		log.Printf("Recorded run in %s", cfg.DBFile)
	}

	if cfg.Listen != "" {
		serveDashboard(cfg.Listen, g, res, plotCfg.Labels)
	}
}

// loadGrid reads the density file and normalizes it. Pre-shaped input keeps
// its shape; flat input is reshaped from the axes or square-inferred.
func loadGrid(cfg Config) (*grid.Grid, error) {
	data, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return nil, err
	}

	var nested [][]float64
	if err := json.Unmarshal(data, &nested); err == nil {
		if cfg.XAxis != "" || cfg.YAxis != "" {
			return nil, fmt.Errorf("axes cannot be combined with a pre-shaped density")
		}
		return grid.FromRows(nested)
	}

	var flat []float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("density must be a JSON array of numbers or of rows: %w", err)
	}

	var x, y []float64
	if cfg.XAxis != "" {
		if x, err = parseFloats(cfg.XAxis); err != nil {
			return nil, fmt.Errorf("invalid -x: %w", err)
		}
	}
	if cfg.YAxis != "" {
		if y, err = parseFloats(cfg.YAxis); err != nil {
			return nil, fmt.Errorf("invalid -y: %w", err)
		}
	}
	return grid.Normalize(flat, x, y)
}

func parseResolutions(s string) (plotting.Resolutions, error) {
	if s == "" {
		return plotting.DefaultResolutions(), nil
	}
	var ks []int
	for _, part := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return plotting.Resolutions{}, err
		}
		ks = append(ks, k)
	}
	return plotting.ResolutionList(ks...)
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func recordRun(cfg Config, g *grid.Grid, result *plotting.RunResult) error {
	store, err := runlog.Open(cfg.DBFile)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	runID, err := store.RecordRun(ctx, cfg.InputFile, g.Rows, g.Cols)
	if err != nil {
		return err
	}
	for _, ls := range result.Levels {
		rec := runlog.LevelSet{K: ls.K, Scheme: ls.Scheme, Levels: ls.Levels, Weights: ls.Weights}
		if err := store.RecordLevels(ctx, runID, rec); err != nil {
			return err
		}
	}
	return nil
}

func serveDashboard(addr string, g *grid.Grid, res plotting.Resolutions, labels [3]string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    addr,
		Handler: web.NewServer(g, res, labels).Handler(),
	}

	go func() {
		log.Printf("Serving comparison dashboard on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Dashboard server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("Shutting down dashboard")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
