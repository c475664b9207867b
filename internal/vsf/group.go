package vsf

import "sync"

// groupPairs buckets the values of items by key. The input is split into one
// contiguous chunk per worker; each worker fills a private map, and the
// private maps are concatenated into the shared result sequentially. The
// resulting map has no ordering guarantees.
func groupPairs[S any, K comparable](items []S, workers int, key func(S) K, val func(S) float64) map[K][]float64 {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}
	if workers == 0 {
		return map[K][]float64{}
	}

	locals := make([]map[K][]float64, workers)
	chunk := (len(items) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(items) {
			hi = len(items)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			m := make(map[K][]float64)
			for _, item := range items[lo:hi] {
				k := key(item)
				m[k] = append(m[k], val(item))
			}
			locals[w] = m
		}(w, lo, hi)
	}
	wg.Wait()

	merged := make(map[K][]float64)
	for _, m := range locals {
		for k, vals := range m {
			merged[k] = append(merged[k], vals...)
		}
	}
	return merged
}

// groupBySeparation buckets pair values by their exact squared separation.
func groupBySeparation(pairs []PairSample, workers int) map[int][]float64 {
	return groupPairs(pairs, workers,
		func(p PairSample) int { return p.SepSq },
		func(p PairSample) float64 { return p.Value })
}

// groupByLag buckets pair values by their exact (row, column) lag, for
// anisotropic analyses.
func groupByLag(pairs []LagSample, workers int) map[[2]int][]float64 {
	return groupPairs(pairs, workers,
		func(p LagSample) [2]int { return [2]int{p.DRow, p.DCol} },
		func(p LagSample) float64 { return p.Value })
}
