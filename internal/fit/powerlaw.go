// Package fit estimates power-law slopes of structure functions. The fit is
// linear in log10-log10 space, with uncertainties propagated by Monte-Carlo
// resampling: each bin's log-space error bars are treated as a split normal
// distribution, resampled per iteration, and refit, so the spread of the
// fitted parameters reflects the bin uncertainties.
package fit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/turbulence-data/vsf.report/internal/vsf"
)

// Bounds selects the lag interval to fit, in the same linear units as the bin
// distances. The interval should exclude the first few lags and everything
// past decorrelation, where the log-log curve stops being linear.
type Bounds struct {
	Min, Max float64
}

// Fit holds the fitted line in log10-log10 space. Slope is the power-law
// exponent estimate; errors are the standard deviations of the Monte-Carlo
// parameter distributions.
type Fit struct {
	Slope        float64
	SlopeErr     float64
	Intercept    float64
	InterceptErr float64
	N            int // number of bins inside the fit bounds
}

// DefaultIterations is the Monte-Carlo iteration count used when the caller
// passes zero.
const DefaultIterations = 10000

// PowerLaw fits a line to log10(value) vs log10(distance) over the bins whose
// distance lies strictly inside bounds. Bins with non-positive values are
// skipped (their logarithm is undefined). A nil rng gets a time-seeded one;
// pass a fixed-seed rng for reproducible fits.
func PowerLaw(bins []vsf.BinStat, bounds Bounds, iterations int, rng *rand.Rand) (Fit, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var (
		xs    []float64
		dists []SplitNormal
	)
	for _, b := range bins {
		if b.Distance <= bounds.Min || b.Distance >= bounds.Max {
			continue
		}
		if b.Value <= 0 || math.IsNaN(b.Value) {
			continue
		}
		logV := math.Log10(b.Value)

		// Log-space error bars are asymmetric: the lower bar stretches
		// further than the upper one. When value-uncertainty is not
		// positive the lower bar is unbounded in log space; fall back to
		// mirroring the upper bar.
		right := math.Log10(b.Value+b.Uncertainty) - logV
		left := right
		if b.Value-b.Uncertainty > 0 {
			left = logV - math.Log10(b.Value-b.Uncertainty)
		}

		xs = append(xs, math.Log10(b.Distance))
		dists = append(dists, SplitNormal{Loc: logV, ScaleLeft: left, ScaleRight: right})
	}
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("need at least 2 bins inside fit bounds (%g, %g), got %d", bounds.Min, bounds.Max, len(xs))
	}

	slopes := make([]float64, iterations)
	intercepts := make([]float64, iterations)
	ys := make([]float64, len(xs))
	for it := 0; it < iterations; it++ {
		for i, d := range dists {
			ys[i] = d.SampleOne(rng)
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		intercepts[it] = alpha
		slopes[it] = beta
	}

	return Fit{
		Slope:        stat.Mean(slopes, nil),
		SlopeErr:     stat.PopStdDev(slopes, nil),
		Intercept:    stat.Mean(intercepts, nil),
		InterceptErr: stat.PopStdDev(intercepts, nil),
		N:            len(xs),
	}, nil
}
