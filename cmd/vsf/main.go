// Package main provides the structure-function analysis tool. It loads a 2D
// scalar field from CSV (empty or "nan" cells are missing), computes the
// n-th order structure function, and exports bins CSV, a JSON run summary,
// and optional chart/heatmap/power-law-fit outputs.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"

	"github.com/turbulence-data/vsf.report/internal/config"
	"github.com/turbulence-data/vsf.report/internal/fit"
	"github.com/turbulence-data/vsf.report/internal/gridstats"
	"github.com/turbulence-data/vsf.report/internal/monitoring"
	"github.com/turbulence-data/vsf.report/internal/report"
	"github.com/turbulence-data/vsf.report/internal/timeutil"
	"github.com/turbulence-data/vsf.report/internal/units"
	"github.com/turbulence-data/vsf.report/internal/vsf"
)

// Config holds the parsed command line for one analysis run.
type Config struct {
	Input        string
	OutputDir    string
	ConfigPath   string
	Order        int
	Workers      int
	SubtractMean bool

	MaskInput string
	MaskBelow float64

	Units           string
	ArcsecPerPixel  float64
	ParsecPerArcsec float64

	Directional bool
	Chart       bool
	Heatmap     bool

	FitMin   float64
	FitMax   float64
	FitIters int
	Seed     int64

	Quiet bool
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Input, "input", "", "Path to CSV grid (required). Empty or 'nan' cells are missing data")
	flag.StringVar(&cfg.OutputDir, "output", ".", "Output directory for results")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Optional JSON analysis config; flags override it")
	flag.IntVar(&cfg.Order, "order", 1, "Structure function order (exponent on pair differences)")
	flag.IntVar(&cfg.Workers, "workers", 0, "Worker goroutines (0 = all CPUs)")
	flag.BoolVar(&cfg.SubtractMean, "subtract-mean", false, "Subtract the field mean in place before analysis")

	flag.StringVar(&cfg.MaskInput, "mask-input", "", "Optional secondary CSV map (e.g. SNR) used to mask the field")
	flag.Float64Var(&cfg.MaskBelow, "mask-below", 0, "Blank field cells where the mask map is below this value")

	flag.StringVar(&cfg.Units, "units", units.Pixel, "Output lag units: "+units.ValidUnitsString())
	flag.Float64Var(&cfg.ArcsecPerPixel, "arcsec-per-pixel", 0, "Plate scale override (arcsec per pixel)")
	flag.Float64Var(&cfg.ParsecPerArcsec, "parsec-per-arcsec", 0, "Physical scale override (parsec per arcsec)")

	flag.BoolVar(&cfg.Directional, "directional", false, "Also compute the (drow, dcol) lag-binned variant")
	flag.BoolVar(&cfg.Chart, "chart", false, "Render a log-log HTML chart of the result")
	flag.BoolVar(&cfg.Heatmap, "heatmap", false, "Render a PNG heatmap of the input field")

	flag.Float64Var(&cfg.FitMin, "fit-min", 0, "Lower lag bound for the power-law fit (0 disables fitting)")
	flag.Float64Var(&cfg.FitMax, "fit-max", 0, "Upper lag bound for the power-law fit")
	flag.IntVar(&cfg.FitIters, "fit-iters", 0, "Monte-Carlo iterations for fit uncertainties (0 = default)")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Random seed for the fit (0 = time-based)")

	flag.BoolVar(&cfg.Quiet, "quiet", false, "Suppress progress logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -input field.csv [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Computes the n-th order structure function of a 2D scalar field.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	if cfg.Input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.Quiet {
		monitoring.SetLogger(nil)
	}
	if err := run(cfg, timeutil.RealClock{}); err != nil {
		fmt.Fprintf(os.Stderr, "vsf: %v\n", err)
		os.Exit(1)
	}
}

// mergeConfig folds a JSON config file under the flag values: flags that were
// left at their zero value take the file's setting.
func mergeConfig(cfg *Config) error {
	if cfg.ConfigPath == "" {
		return nil
	}
	fileCfg, err := config.LoadAnalysisConfig(cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Order == 1 {
		cfg.Order = fileCfg.GetOrder()
	}
	if cfg.Workers == 0 && fileCfg.Workers != nil {
		cfg.Workers = fileCfg.GetWorkers()
	}
	if !cfg.SubtractMean {
		cfg.SubtractMean = fileCfg.GetSubtractMean()
	}
	if cfg.Units == units.Pixel {
		cfg.Units = fileCfg.GetUnits()
	}
	scale := fileCfg.GetScale()
	if cfg.ArcsecPerPixel == 0 {
		cfg.ArcsecPerPixel = scale.ArcsecPerPixel
	}
	if cfg.ParsecPerArcsec == 0 {
		cfg.ParsecPerArcsec = scale.ParsecPerArcsec
	}
	if cfg.FitMin == 0 && fileCfg.FitMin != nil {
		cfg.FitMin = *fileCfg.FitMin
	}
	if cfg.FitMax == 0 && fileCfg.FitMax != nil {
		cfg.FitMax = *fileCfg.FitMax
	}
	if cfg.FitIters == 0 {
		cfg.FitIters = fileCfg.GetFitIterations()
	}
	if cfg.Seed == 0 && fileCfg.Seed != nil {
		cfg.Seed = *fileCfg.Seed
	}
	return nil
}

func run(cfg *Config, clock timeutil.Clock) error {
	if err := mergeConfig(cfg); err != nil {
		return err
	}
	if !units.IsValid(cfg.Units) {
		return fmt.Errorf("invalid -units %q, valid values: %s", cfg.Units, units.ValidUnitsString())
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	grid, err := loadGridCSV(cfg.Input)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input, err)
	}

	if cfg.MaskInput != "" {
		mask, err := loadGridCSV(cfg.MaskInput)
		if err != nil {
			return fmt.Errorf("load mask %s: %w", cfg.MaskInput, err)
		}
		blanked, err := applyMask(grid, mask, cfg.MaskBelow)
		if err != nil {
			return err
		}
		monitoring.Logf("masked %d cells below %g", blanked, cfg.MaskBelow)
	}

	if cfg.SubtractMean {
		gridstats.SubtractMean(grid, cfg.Workers)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	params := vsf.Params{Order: cfg.Order, Workers: cfg.Workers}
	summary := report.NewSummary(clock)
	summary.Input = cfg.Input
	summary.GridHeight = len(grid)
	summary.GridWidth = len(grid[0])
	summary.FiniteCells = gridstats.CountFinite(grid)
	summary.Order = cfg.Order
	summary.Workers = params.Workers
	summary.Units = cfg.Units

	start := clock.Now()
	bins, err := vsf.StructureFunction(grid, params)
	if err != nil {
		return err
	}
	elapsed := clock.Since(start)
	monitoring.Logf("structure function: %d bins from %dx%d grid (%d finite cells) in %s",
		len(bins), len(grid), len(grid[0]), summary.FiniteCells, elapsed)

	scale := units.DefaultScale()
	if cfg.ArcsecPerPixel > 0 {
		scale.ArcsecPerPixel = cfg.ArcsecPerPixel
	}
	if cfg.ParsecPerArcsec > 0 {
		scale.ParsecPerArcsec = cfg.ParsecPerArcsec
	}
	bins = convertBins(bins, cfg.Units, scale)

	summary.GridVariance = gridstats.GridVariance(grid)
	summary.Bins = len(bins)
	summary.DurationSecs = elapsed.Seconds()

	base := outputBase(cfg.Input)

	binsPath := filepath.Join(cfg.OutputDir, base+"_bins.csv")
	f, err := os.Create(binsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", binsPath, err)
	}
	if err := report.WriteBinsCSV(f, bins); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	monitoring.Logf("wrote %s", binsPath)

	if cfg.Directional {
		lagBins, err := vsf.StructureFunction2D(grid, params)
		if err != nil {
			return err
		}
		lagPath := filepath.Join(cfg.OutputDir, base+"_lag_bins.csv")
		lf, err := os.Create(lagPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", lagPath, err)
		}
		if err := report.WriteLagBinsCSV(lf, lagBins); err != nil {
			lf.Close()
			return err
		}
		if err := lf.Close(); err != nil {
			return err
		}
		monitoring.Logf("wrote %s (%d lag bins)", lagPath, len(lagBins))
	}

	var fitted *fit.Fit
	if cfg.FitMin > 0 || cfg.FitMax > 0 {
		var rng *rand.Rand
		if cfg.Seed != 0 {
			rng = rand.New(rand.NewSource(cfg.Seed))
		}
		result, err := fit.PowerLaw(bins, fit.Bounds{Min: cfg.FitMin, Max: cfg.FitMax}, cfg.FitIters, rng)
		if err != nil {
			return fmt.Errorf("power-law fit: %w", err)
		}
		fitted = &result
		monitoring.Logf("power-law fit over %d bins: slope %.3f ± %.3f", result.N, result.Slope, result.SlopeErr)
		summary.FitSlope = &result.Slope
		summary.FitSlopeErr = &result.SlopeErr
		summary.FitIntercept = &result.Intercept
		summary.FitBins = &result.N
	}

	if cfg.Chart {
		chartPath := filepath.Join(cfg.OutputDir, base+"_chart.html")
		copts := report.ChartOptions{
			Title:  fmt.Sprintf("Order-%d structure function", cfg.Order),
			XLabel: "lag (" + cfg.Units + ")",
			YLabel: "structure function",
			Fit:    fitted,
		}
		if err := report.RenderChart(chartPath, bins, copts); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", chartPath)
	}

	if cfg.Heatmap {
		heatPath := filepath.Join(cfg.OutputDir, base+"_field.png")
		if err := report.RenderHeatmap(heatPath, grid); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", heatPath)
	}

	summaryPath := filepath.Join(cfg.OutputDir, base+"_summary.json")
	if err := summary.WriteJSON(summaryPath); err != nil {
		return err
	}
	monitoring.Logf("wrote %s (run %s)", summaryPath, summary.RunID)

	return nil
}

// convertBins rewrites bin distances from pixels to the requested unit.
func convertBins(bins []vsf.BinStat, unit string, scale units.Scale) []vsf.BinStat {
	if unit == units.Pixel {
		return bins
	}
	out := make([]vsf.BinStat, len(bins))
	for i, b := range bins {
		b.Distance = units.ConvertLag(b.Distance, unit, scale)
		out[i] = b
	}
	return out
}

// outputBase derives the output filename stem from the input path.
func outputBase(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
