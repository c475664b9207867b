// Package report writes structure-function results to their output forms:
// a bins CSV, a JSON run summary, a log-log HTML chart, and a PNG heatmap of
// the input grid.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/turbulence-data/vsf.report/internal/timeutil"
)

// Summary holds the metadata of one analysis run.
type Summary struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Input        string    `json:"input"`
	GridHeight   int       `json:"grid_height"`
	GridWidth    int       `json:"grid_width"`
	FiniteCells  int       `json:"finite_cells"`
	Order        int       `json:"order"`
	Workers      int       `json:"workers"`
	GridVariance float64   `json:"grid_variance"`
	Bins         int       `json:"bins"`
	Units        string    `json:"units"`
	DurationSecs float64   `json:"duration_secs"`

	// Fit results, present only when a power-law fit was requested.
	FitSlope     *float64 `json:"fit_slope,omitempty"`
	FitSlopeErr  *float64 `json:"fit_slope_err,omitempty"`
	FitIntercept *float64 `json:"fit_intercept,omitempty"`
	FitBins      *int     `json:"fit_bins,omitempty"`
}

// NewSummary creates a Summary with a fresh run ID, stamped by the given
// clock. A nil clock uses the real one.
func NewSummary(clock timeutil.Clock) Summary {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return Summary{
		RunID:       uuid.New().String(),
		GeneratedAt: clock.Now(),
	}
}

// WriteJSON writes the summary as indented JSON to path.
func (s Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
