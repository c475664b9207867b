package report

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/turbulence-data/vsf.report/internal/fit"
	"github.com/turbulence-data/vsf.report/internal/vsf"
)

// ChartOptions configures the structure-function chart.
type ChartOptions struct {
	Title  string
	XLabel string
	YLabel string

	// Fit, when set, overlays the fitted power law across the plotted range.
	Fit *fit.Fit
}

// RenderChart writes a log-log scatter of the structure function as a
// self-contained HTML file. Bins with non-positive values are omitted since
// they cannot be placed on a log axis.
func RenderChart(path string, bins []vsf.BinStat, o ChartOptions) error {
	sorted := make([]vsf.BinStat, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	data := make([]opts.ScatterData, 0, len(sorted))
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, b := range sorted {
		if b.Distance <= 0 || b.Value <= 0 || math.IsNaN(b.Value) {
			continue
		}
		if b.Distance < minX {
			minX = b.Distance
		}
		if b.Distance > maxX {
			maxX = b.Distance
		}
		data = append(data, opts.ScatterData{Value: []interface{}{b.Distance, b.Value}})
	}
	if len(data) == 0 {
		return fmt.Errorf("no positive bins to chart")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "log", Name: o.XLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Type: "log", Name: o.YLabel, NameLocation: "middle", NameGap: 40}),
	)
	scatter.AddSeries("structure function", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	if o.Fit != nil {
		line := charts.NewLine()
		linePts := make([]opts.LineData, 0, 2)
		for _, x := range []float64{minX, maxX} {
			y := math.Pow(10, o.Fit.Intercept+o.Fit.Slope*math.Log10(x))
			linePts = append(linePts, opts.LineData{Value: []interface{}{x, y}})
		}
		label := fmt.Sprintf("slope %.2f ± %.2f", o.Fit.Slope, o.Fit.SlopeErr)
		line.AddSeries(label, linePts)
		scatter.Overlap(line)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
