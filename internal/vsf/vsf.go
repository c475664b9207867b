// Package vsf computes n-th order structure functions of two-dimensional
// scalar fields: for every pair of finite samples, the absolute value
// difference is binned by the exact Euclidean separation of the pair, and each
// bin is reduced to a variance-normalized mean with a sample standard error.
//
// NaN cells mark missing samples and never contribute. The all-pairs
// enumeration is O((H·W)²); bounding input size is the caller's concern.
package vsf

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/turbulence-data/vsf.report/internal/gridstats"
)

// Params configures a structure-function computation.
type Params struct {
	// Order is the exponent applied to the pair differences. Order 1 gives
	// the mean absolute difference per separation, normalized by variance.
	Order int

	// Workers is the number of goroutines used for each parallel phase.
	// Zero or negative means runtime.NumCPU().
	Workers int
}

// DefaultParams returns Params for the given order with hardware-concurrency
// workers.
func DefaultParams(order int) Params {
	return Params{Order: order, Workers: runtime.NumCPU()}
}

func (p Params) validate() (Params, error) {
	if p.Order < 1 {
		return p, fmt.Errorf("order must be >= 1, got %d", p.Order)
	}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	return p, nil
}

// BinStat is the structure-function value for one separation bin.
type BinStat struct {
	Distance    float64
	Value       float64
	Uncertainty float64
}

// LagBinStat is the structure-function value for one directional lag bin.
type LagBinStat struct {
	DRow, DCol  int
	Value       float64
	Uncertainty float64
}

// StructureFunction computes the order-n structure function of the grid.
//
// Pairwise absolute differences are grouped by exact separation, raised to
// p.Order, and reduced per bin to mean/variance with uncertainty
// stddev/(variance·sqrt(N−1)), where variance is the population variance of
// the whole grid. Bins at zero separation or with a single sample are
// dropped, so a grid with fewer than two finite samples yields an empty
// result. A constant grid has zero variance and yields NaN bins; degenerate
// statistics propagate as NaN, never as errors.
//
// The grid is not mutated. The order of the returned bins is unspecified;
// callers wanting sorted output must sort it themselves.
func StructureFunction(grid [][]float64, p Params) ([]BinStat, error) {
	p, err := p.validate()
	if err != nil {
		return nil, err
	}
	pairs, err := SubtractPairs(grid, p.Workers)
	if err != nil {
		return nil, err
	}

	groups := groupBySeparation(pairs, p.Workers)
	variance := gridstats.GridVariance(grid)

	keys := make([]int, 0, len(groups))
	for k := range groups {
		if k == 0 {
			continue // self-pairs and coincident points carry no information
		}
		keys = append(keys, k)
	}

	out := reduceBins(keys, p, func(k int, value, uncertainty float64) BinStat {
		return BinStat{
			Distance:    math.Sqrt(float64(k)),
			Value:       value,
			Uncertainty: uncertainty,
		}
	}, func(k int) []float64 { return groups[k] }, variance)

	return out, nil
}

// StructureFunction2D computes the directional (anisotropic) variant of the
// structure function, binned by exact (row, column) lag instead of scalar
// separation. Semantics otherwise match StructureFunction; the zero lag is
// dropped.
func StructureFunction2D(grid [][]float64, p Params) ([]LagBinStat, error) {
	p, err := p.validate()
	if err != nil {
		return nil, err
	}
	pairs, err := combineLagPairs(grid, p.Workers, func(a, b float64) float64 { return math.Abs(a - b) })
	if err != nil {
		return nil, err
	}

	groups := groupByLag(pairs, p.Workers)
	variance := gridstats.GridVariance(grid)

	keys := make([][2]int, 0, len(groups))
	for k := range groups {
		if k == [2]int{0, 0} {
			continue
		}
		keys = append(keys, k)
	}

	out := reduceBins(keys, p, func(k [2]int, value, uncertainty float64) LagBinStat {
		return LagBinStat{
			DRow:        k[0],
			DCol:        k[1],
			Value:       value,
			Uncertainty: uncertainty,
		}
	}, func(k [2]int) []float64 { return groups[k] }, variance)

	return out, nil
}

// reduceBins applies the per-bin statistics in parallel: values are raised to
// p.Order, single-sample bins are skipped, and each surviving bin is reduced
// to a variance-normalized mean and sample standard error. Workers append to
// private buffers merged under a mutex, so contention is bounded by the
// worker count, not the bin count.
func reduceBins[K comparable, R any](keys []K, p Params, build func(k K, value, uncertainty float64) R, vals func(K) []float64, variance float64) []R {
	workers := p.Workers
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers == 0 {
		return []R{}
	}

	work := make(chan K, len(keys))
	for _, k := range keys {
		work <- k
	}
	close(work)

	var (
		mu  sync.Mutex
		out = make([]R, 0, len(keys))
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]R, 0, len(keys)/workers+1)
			for k := range work {
				powered := gridstats.Pow(vals(k), float64(p.Order))
				n := len(powered)
				if n == 1 {
					continue // uncertainty is undefined with one sample
				}
				value := gridstats.Mean(powered) / variance
				uncertainty := gridstats.StdDev(powered) / (variance * math.Sqrt(float64(n-1)))
				local = append(local, build(k, value, uncertainty))
			}
			mu.Lock()
			out = append(out, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}
