package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/turbulence-data/vsf.report/internal/vsf"
)

// WriteBinsCSV writes one row per separation bin, sorted by distance. The
// kernel's bin order is execution dependent, so sorting here keeps the file
// stable across runs.
func WriteBinsCSV(w io.Writer, bins []vsf.BinStat) error {
	sorted := make([]vsf.BinStat, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"distance", "value", "uncertainty"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range sorted {
		row := []string{
			strconv.FormatFloat(b.Distance, 'g', -1, 64),
			strconv.FormatFloat(b.Value, 'g', -1, 64),
			strconv.FormatFloat(b.Uncertainty, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write bin row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLagBinsCSV writes the directional variant, sorted by (drow, dcol).
func WriteLagBinsCSV(w io.Writer, bins []vsf.LagBinStat) error {
	sorted := make([]vsf.LagBinStat, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DRow != sorted[j].DRow {
			return sorted[i].DRow < sorted[j].DRow
		}
		return sorted[i].DCol < sorted[j].DCol
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"drow", "dcol", "value", "uncertainty"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range sorted {
		row := []string{
			strconv.Itoa(b.DRow),
			strconv.Itoa(b.DCol),
			strconv.FormatFloat(b.Value, 'g', -1, 64),
			strconv.FormatFloat(b.Uncertainty, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write lag bin row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
