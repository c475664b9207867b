package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// loadGridCSV reads a rectangular grid of float64 samples from a CSV file.
// Empty cells and the literals "nan"/"NaN" mark missing data. Rectangularity
// is enforced by the kernel, so ragged files surface a descriptive error at
// compute time; unparsable cells fail here.
func loadGridCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // let the kernel report ragged grids

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty grid file")
	}

	grid := make([][]float64, len(records))
	for y, record := range records {
		row := make([]float64, len(record))
		for x, field := range record {
			field = strings.TrimSpace(field)
			if field == "" || strings.EqualFold(field, "nan") {
				row[x] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", y+1, x+1, err)
			}
			row[x] = v
		}
		grid[y] = row
	}
	return grid, nil
}

// applyMask blanks grid cells whose corresponding mask cell is missing or
// below threshold, mirroring an SNR cut on a velocity map. Returns the number
// of newly blanked cells.
func applyMask(grid, mask [][]float64, threshold float64) (int, error) {
	if len(mask) != len(grid) {
		return 0, fmt.Errorf("mask height %d does not match grid height %d", len(mask), len(grid))
	}
	blanked := 0
	for y, row := range grid {
		if len(mask[y]) != len(row) {
			return 0, fmt.Errorf("mask row %d width %d does not match grid width %d", y, len(mask[y]), len(row))
		}
		for x := range row {
			if math.IsNaN(row[x]) {
				continue
			}
			m := mask[y][x]
			if math.IsNaN(m) || m < threshold {
				row[x] = math.NaN()
				blanked++
			}
		}
	}
	return blanked, nil
}
