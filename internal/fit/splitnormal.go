package fit

import "math"

// SplitNormal is a normal distribution with different standard deviations on
// each side of the mean. The chances of falling left or right of Loc are
// equal. It models the asymmetric log-space uncertainties of structure
// function bins.
type SplitNormal struct {
	Loc        float64
	ScaleLeft  float64
	ScaleRight float64
}

// Sample draws n values from the distribution.
func (sn SplitNormal) Sample(n int, rng Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = sn.SampleOne(rng)
	}
	return out
}

// SampleOne draws a single value: it picks a side with equal probability,
// samples a zero-mean normal with that side's scale, folds it to a
// half-normal, and offsets it from Loc.
func (sn SplitNormal) SampleOne(rng Rand) float64 {
	if rng.Intn(2) == 1 {
		return sn.Loc + math.Abs(rng.NormFloat64()*sn.ScaleRight)
	}
	return sn.Loc - math.Abs(rng.NormFloat64()*sn.ScaleLeft)
}

// Rand is the subset of math/rand used by the samplers. *rand.Rand satisfies
// it; tests can substitute a deterministic source.
type Rand interface {
	Intn(n int) int
	NormFloat64() float64
}
