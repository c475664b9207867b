package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// gridXYZ adapts a rectangular [][]float64 to plotter.GridXYZ. Row 0 is drawn
// at the bottom, matching the lower-origin convention of the source figures.
// Missing (NaN) cells are rendered at the palette floor.
type gridXYZ struct {
	data     [][]float64
	min, max float64
}

func newGridXYZ(grid [][]float64) gridXYZ {
	min, max := math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if min > max {
		min, max = 0, 1 // all cells missing
	}
	if min == max {
		max = min + 1 // constant field, avoid a zero-width palette range
	}
	return gridXYZ{data: grid, min: min, max: max}
}

func (g gridXYZ) Dims() (c, r int) { return len(g.data[0]), len(g.data) }
func (g gridXYZ) X(c int) float64  { return float64(c) }
func (g gridXYZ) Y(r int) float64  { return float64(r) }

func (g gridXYZ) Z(c, r int) float64 {
	v := g.data[r][c]
	if math.IsNaN(v) {
		return g.min
	}
	return v
}

// RenderHeatmap writes a PNG heatmap of the grid, the quick-look view of the
// field a structure function was computed on.
func RenderHeatmap(path string, grid [][]float64) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("cannot render heatmap of empty grid")
	}

	g := newGridXYZ(grid)
	h := plotter.NewHeatMap(g, palette.Heat(12, 1))
	h.Min = g.min
	h.Max = g.max

	p := plot.New()
	p.Title.Text = "Input field"
	p.X.Label.Text = "Column (px)"
	p.Y.Label.Text = "Row (px)"
	p.Add(h)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
