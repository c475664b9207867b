// Package gridstats provides NaN-masked aggregate statistics over 1D slices
// and rectangular 2D grids of float64 samples.
//
// A NaN cell is a missing sample. Reductions skip missing samples in both the
// accumulator and the divisor, so the mean of a grid is the mean of its finite
// cells only. The one deliberate exception is Sum over a 1D slice, which
// propagates NaN (see its doc comment).
package gridstats

import (
	"math"
	"runtime"
	"sync"
)

// CountFinite returns the number of non-NaN cells in the grid.
func CountFinite(grid [][]float64) int {
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) {
				count++
			}
		}
	}
	return count
}

// Mean returns the mean of the finite values in vals. When every value is
// missing the result is NaN (0/0), not an error.
func Mean(vals []float64) float64 {
	total := 0.0
	count := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		total += v
		count++
	}
	return total / float64(count)
}

// GridMean returns the mean of the finite cells in the grid.
func GridMean(grid [][]float64) float64 {
	total := 0.0
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			total += v
			count++
		}
	}
	return total / float64(count)
}

// Sum returns the sum of vals. Unlike the other reductions, NaN values are
// included and poison the result to NaN. Callers that need masked totals over
// flat data should filter first or use GridSum over a 2D container.
func Sum(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}

// GridSum returns the sum of the finite cells in the grid.
func GridSum(grid [][]float64) float64 {
	total := 0.0
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) {
				total += v
			}
		}
	}
	return total
}

// GridSumOfSquares returns the sum of the squares of the finite cells.
func GridSumOfSquares(grid [][]float64) float64 {
	total := 0.0
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) {
				total += v * v
			}
		}
	}
	return total
}

// Pow raises every value to the given exponent. An exponent of exactly 1
// returns the input slice unchanged, NaNs included. Negative bases with
// non-integer exponents produce NaN per math.Pow.
func Pow(vals []float64, exponent float64) []float64 {
	if exponent == 1 {
		return vals
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Pow(v, exponent)
	}
	return out
}

// Log returns the elementwise natural logarithm of vals.
func Log(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Log(v)
	}
	return out
}

// Variance returns the population variance of the finite values in vals:
// squared deviations from the masked mean, divided by the finite count.
// A single finite value gives 0; no finite values give NaN.
func Variance(vals []float64) float64 {
	mean := Mean(vals)
	total := 0.0
	count := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		total += d * d
		count++
	}
	return total / float64(count)
}

// GridVariance returns the population variance of the finite cells.
func GridVariance(grid [][]float64) float64 {
	mean := GridMean(grid)
	total := 0.0
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			d := v - mean
			total += d * d
			count++
		}
	}
	return total / float64(count)
}

// StdDev returns the population standard deviation of the finite values.
func StdDev(vals []float64) float64 {
	return math.Sqrt(Variance(vals))
}

// SubtractMean subtracts the grid's masked mean from every cell in place,
// parallelized across rows. Missing cells stay NaN. The caller must hold
// exclusive access to the grid for the duration of the call: no concurrent
// reader or writer of the same grid.
func SubtractMean(grid [][]float64, workers int) {
	if len(grid) == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	mean := GridMean(grid)

	rows := make(chan int, len(grid))
	for y := range grid {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				row := grid[y]
				for x := range row {
					row[x] -= mean
				}
			}
		}()
	}
	wg.Wait()
}
