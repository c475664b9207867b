package fit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/turbulence-data/vsf.report/internal/vsf"
)

func powerLawBins(slope, intercept float64, dists []float64, unc float64) []vsf.BinStat {
	bins := make([]vsf.BinStat, len(dists))
	for i, d := range dists {
		bins[i] = vsf.BinStat{
			Distance:    d,
			Value:       intercept * math.Pow(d, slope),
			Uncertainty: unc,
		}
	}
	return bins
}

func TestPowerLawExactRecovery(t *testing.T) {
	// Zero uncertainty collapses the split normals to their means, so every
	// Monte-Carlo iteration fits the same exact line.
	bins := powerLawBins(0.5, 2, []float64{1, 2, 4, 8, 16}, 0)
	rng := rand.New(rand.NewSource(1))

	f, err := PowerLaw(bins, Bounds{Min: 0.5, Max: 20}, 50, rng)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f.Slope-0.5) > 1e-12 {
		t.Errorf("Slope = %v, want 0.5", f.Slope)
	}
	if math.Abs(f.Intercept-math.Log10(2)) > 1e-12 {
		t.Errorf("Intercept = %v, want log10(2) = %v", f.Intercept, math.Log10(2))
	}
	if f.SlopeErr > 1e-12 || f.InterceptErr > 1e-12 {
		t.Errorf("errors = (%v, %v), want 0 for exact bins", f.SlopeErr, f.InterceptErr)
	}
	if f.N != 5 {
		t.Errorf("N = %d, want 5", f.N)
	}
}

func TestPowerLawNoisyRecovery(t *testing.T) {
	bins := powerLawBins(1.2, 0.5, []float64{2, 3, 5, 8, 13, 21, 34}, 0)
	for i := range bins {
		bins[i].Uncertainty = 0.05 * bins[i].Value
	}
	rng := rand.New(rand.NewSource(99))

	f, err := PowerLaw(bins, Bounds{Min: 1, Max: 50}, 2000, rng)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f.Slope-1.2) > 0.1 {
		t.Errorf("Slope = %v, want close to 1.2", f.Slope)
	}
	if f.SlopeErr <= 0 {
		t.Errorf("SlopeErr = %v, want > 0 with noisy bins", f.SlopeErr)
	}
}

func TestPowerLawBoundsAreExclusive(t *testing.T) {
	bins := powerLawBins(1, 1, []float64{1, 2, 3, 4, 5}, 0)
	rng := rand.New(rand.NewSource(1))

	f, err := PowerLaw(bins, Bounds{Min: 1, Max: 5}, 10, rng)
	if err != nil {
		t.Fatal(err)
	}
	if f.N != 3 {
		t.Errorf("N = %d, want 3 (1 and 5 lie on the bounds)", f.N)
	}
}

func TestPowerLawSkipsNonPositiveBins(t *testing.T) {
	bins := powerLawBins(1, 1, []float64{1, 2, 3, 4}, 0)
	bins[0].Value = 0
	bins[1].Value = -2
	bins[2].Value = math.NaN()
	rng := rand.New(rand.NewSource(1))

	if _, err := PowerLaw(bins, Bounds{Min: 0.5, Max: 10}, 10, rng); err == nil {
		t.Fatal("expected error: only one usable bin remains")
	}

	bins[0].Value = 1
	bins[1].Value = 2
	f, err := PowerLaw(bins, Bounds{Min: 0.5, Max: 10}, 10, rng)
	if err != nil {
		t.Fatal(err)
	}
	if f.N != 3 {
		t.Errorf("N = %d, want 3 (NaN bin dropped)", f.N)
	}
}

func TestPowerLawTooFewBins(t *testing.T) {
	bins := powerLawBins(1, 1, []float64{1, 2, 3}, 0)
	rng := rand.New(rand.NewSource(1))

	if _, err := PowerLaw(bins, Bounds{Min: 10, Max: 20}, 10, rng); err == nil {
		t.Error("expected error when no bins fall inside the fit bounds")
	}
	if _, err := PowerLaw(nil, Bounds{Min: 0, Max: 10}, 10, rng); err == nil {
		t.Error("expected error for nil bins")
	}
}

func TestPowerLawLowerErrorBarFallback(t *testing.T) {
	// Uncertainty at or above the value makes the lower log-space bar
	// unbounded; the fit mirrors the upper bar instead of producing NaN.
	bins := powerLawBins(1, 1, []float64{1, 2, 3, 4}, 0)
	for i := range bins {
		bins[i].Uncertainty = bins[i].Value * 1.5
	}
	rng := rand.New(rand.NewSource(3))

	f, err := PowerLaw(bins, Bounds{Min: 0.5, Max: 10}, 500, rng)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(f.Slope) || math.IsNaN(f.SlopeErr) {
		t.Errorf("fit = %+v, want finite parameters", f)
	}
}
