package vsf

import (
	"fmt"
	"math"
	"sync"
)

// Combiner merges the values of two grid cells into a single pair statistic.
type Combiner func(a, b float64) float64

// PairSample is one enumerated pair of finite cells: the squared integer
// separation between the two cells and the combined value. The separation is
// kept as an integer so that identical coordinate offsets always produce
// identical keys; the Euclidean distance is sqrt(float64(SepSq)).
type PairSample struct {
	SepSq int
	Value float64
}

// LagSample is the directional counterpart of PairSample: the row/column lag
// between the two cells and the combined value. DRow is always >= 0; DCol may
// be negative for pairs that reach down and to the left.
type LagSample struct {
	DRow, DCol int
	Value      float64
}

// validateGrid rejects inputs the enumeration cannot process: an empty grid
// or one whose rows differ in length.
func validateGrid(grid [][]float64) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("grid must have at least one row and one column")
	}
	width := len(grid[0])
	for y, row := range grid {
		if len(row) != width {
			return fmt.Errorf("grid is not rectangular: row 0 has %d columns, row %d has %d", width, y, len(row))
		}
	}
	return nil
}

// enumeratePairs visits every unordered pair of finite cells exactly once and
// emits one record per pair. The outer loops walk first cells in row-major
// order; the inner loops start at the current column within the same row and
// at column 0 below, so no pair is visited twice. The very first inner step
// pairs a cell with itself: callers get one zero-separation self-pair per
// finite cell and are responsible for filtering it if unwanted.
//
// Starting cells are distributed dynamically across workers because later
// cells have fewer partners. Each worker appends into a private buffer sized
// from the total pair estimate; buffers are merged under a mutex once.
func enumeratePairs[T any](grid [][]float64, workers int, emit func(dRow, dCol int, a, b float64) T) []T {
	height := len(grid)
	width := len(grid[0])
	cells := height * width

	if workers <= 0 {
		workers = 1
	}
	if workers > cells {
		workers = cells
	}

	// All-pairs including self-pairs is cells*(cells+1)/2; an upper bound
	// since missing cells only shrink it.
	perWorker := cells * (cells + 1) / 2 / workers

	starts := make(chan int, cells)
	for s := 0; s < cells; s++ {
		starts <- s
	}
	close(starts)

	var (
		mu  sync.Mutex
		out []T
		wg  sync.WaitGroup
	)
	out = make([]T, 0, cells*(cells+1)/2)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]T, 0, perWorker)
			for s := range starts {
				y := s / width
				x := s % width
				a := grid[y][x]
				if math.IsNaN(a) {
					continue
				}
				for j := y; j < height; j++ {
					i := 0
					if j == y {
						i = x // lag 0 is enumerated here
					}
					for ; i < width; i++ {
						b := grid[j][i]
						if math.IsNaN(b) {
							continue
						}
						local = append(local, emit(j-y, i-x, a, b))
					}
				}
			}
			mu.Lock()
			out = append(out, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}

// SubtractPairs returns the absolute difference of every unordered pair of
// finite cells along with the pair's squared separation. This is the combiner
// used by the structure-function drivers. The result includes one
// zero-separation self-pair per finite cell; filtering those is the caller's
// responsibility.
func SubtractPairs(grid [][]float64, workers int) ([]PairSample, error) {
	return combinePairs(grid, workers, func(a, b float64) float64 { return math.Abs(a - b) })
}

// MultiplyPairs returns the product of every unordered pair of finite cells
// along with the pair's squared separation. Useful for correlation-style
// analyses. Self-pair handling matches SubtractPairs.
func MultiplyPairs(grid [][]float64, workers int) ([]PairSample, error) {
	return combinePairs(grid, workers, func(a, b float64) float64 { return a * b })
}

func combinePairs(grid [][]float64, workers int, comb Combiner) ([]PairSample, error) {
	if err := validateGrid(grid); err != nil {
		return nil, err
	}
	pairs := enumeratePairs(grid, workers, func(dRow, dCol int, a, b float64) PairSample {
		return PairSample{SepSq: dRow*dRow + dCol*dCol, Value: comb(a, b)}
	})
	return pairs, nil
}

func combineLagPairs(grid [][]float64, workers int, comb Combiner) ([]LagSample, error) {
	if err := validateGrid(grid); err != nil {
		return nil, err
	}
	pairs := enumeratePairs(grid, workers, func(dRow, dCol int, a, b float64) LagSample {
		return LagSample{DRow: dRow, DCol: dCol, Value: comb(a, b)}
	})
	return pairs, nil
}
