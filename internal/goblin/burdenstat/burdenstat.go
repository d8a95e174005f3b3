// Package burdenstat implements the running mean/variance accumulator used
// to learn a setting option's burden from live measurements: Welford's
// online algorithm for exact accumulation, exponential-decay variants for
// aging out stale samples, and O'Neill's unbiased formula for pooling two
// independent accumulators.
package burdenstat

import "github.com/EvanBalster/perf-goblin/internal/goblin/economy"

// Stat is a Welford-form (count, mean, sum-of-squared-deviations)
// accumulator. Variance is derived on demand as SumSq / max(K-1, 1); it is
// never stored directly so Pool and Scale stay exact.
type Stat struct {
	K     float64 // sample count (may be non-integer after decay)
	Mean  float64
	SumSq float64 // sum of squared deviations from Mean (Welford's S)
}

// Push folds a new sample into the accumulator with Welford's algorithm.
func (s *Stat) Push(x float64) {
	s.K++
	delta := x - s.Mean
	s.Mean += delta / s.K
	s.SumSq += delta * (x - s.Mean)
}

// PushDecay ages the accumulator by alpha (0<alpha<1) before folding in x,
// so recent samples dominate an exponentially-decayed running estimate.
func (s *Stat) PushDecay(x float64, alpha float64) {
	s.K *= alpha
	s.Push(x)
}

// Decay ages the accumulator without a new sample: count relaxes toward 1
// and the sum-of-squares shrinks toward 0, while Mean is left unchanged
// (there is nothing to update it with).
func (s *Stat) Decay(alpha float64) {
	s.K = 1 + (s.K-1)*alpha
	s.SumSq *= alpha
}

// Scale multiplies Mean by s and SumSq by s^2, matching how a burden scales
// under the normal economy.
func (s *Stat) Scale(scale float64) {
	s.Mean *= scale
	s.SumSq *= scale * scale
}

// Variance returns the unbiased sample variance, treating a single sample
// (or fewer) as having one degree of freedom to avoid division by zero.
func (s Stat) Variance() float64 {
	denom := s.K - 1
	if denom < 1 {
		denom = 1
	}
	return s.SumSq / denom
}

// BurdenNorm returns the (mean, variance) pair for use with the normal
// economy (economy.Normal).
func (s Stat) BurdenNorm() economy.Normal {
	return economy.Normal{Mean: s.Mean, Variance: s.Variance()}
}

// Count reports the number of samples folded into the accumulator (aged by
// any decay applied since).
func (s Stat) Count() float64 { return s.K }

// Pool combines two independent accumulators into their unbiased union,
// equivalent (within floating tolerance) to building one accumulator from
// the concatenation of both sample streams.
func Pool(a, b Stat) Stat {
	if a.K == 0 {
		return b
	}
	if b.K == 0 {
		return a
	}
	k := a.K + b.K
	mean := (a.K*a.Mean + b.K*b.Mean) / k
	delta := b.Mean - a.Mean
	sumSq := a.SumSq + b.SumSq + delta*delta*a.K*b.K/k
	return Stat{K: k, Mean: mean, SumSq: sumSq}
}
