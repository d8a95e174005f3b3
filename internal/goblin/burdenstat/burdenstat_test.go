package burdenstat

import (
	"math"
	"testing"
)

func naiveMeanVariance(xs []float64) (mean, variance float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	denom := float64(len(xs) - 1)
	if denom < 1 {
		denom = 1
	}
	variance /= denom
	return mean, variance
}

func TestPushMatchesNaiveFormula(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	var s Stat
	for _, x := range samples {
		s.Push(x)
	}
	wantMean, wantVar := naiveMeanVariance(samples)
	if math.Abs(s.Mean-wantMean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", s.Mean, wantMean)
	}
	if math.Abs(s.Variance()-wantVar) > 1e-9 {
		t.Errorf("Variance() = %v, want %v", s.Variance(), wantVar)
	}
}

func TestPoolMatchesConcatenatedStream(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{10, 12, 9, 11, 13}

	var sa, sb Stat
	for _, x := range a {
		sa.Push(x)
	}
	for _, x := range b {
		sb.Push(x)
	}
	pooled := Pool(sa, sb)

	var whole Stat
	for _, x := range append(append([]float64{}, a...), b...) {
		whole.Push(x)
	}

	if math.Abs(pooled.Mean-whole.Mean) > 1e-9 {
		t.Errorf("pooled.Mean = %v, want %v", pooled.Mean, whole.Mean)
	}
	if math.Abs(pooled.Variance()-whole.Variance()) > 1e-6 {
		t.Errorf("pooled.Variance() = %v, want %v", pooled.Variance(), whole.Variance())
	}
	if math.Abs(pooled.K-whole.K) > 1e-9 {
		t.Errorf("pooled.K = %v, want %v", pooled.K, whole.K)
	}
}

func TestDecayMonotonicity(t *testing.T) {
	var s Stat
	for _, x := range []float64{5, 6, 7, 8, 9} {
		s.Push(x)
	}
	meanBefore := s.Mean
	for i := 0; i < 20; i++ {
		prevK, prevSumSq := s.K, s.SumSq
		s.Decay(0.9)
		if s.K > prevK {
			t.Fatalf("K increased under decay: %v -> %v", prevK, s.K)
		}
		if s.SumSq > prevSumSq+1e-12 {
			t.Fatalf("SumSq increased under decay: %v -> %v", prevSumSq, s.SumSq)
		}
		if s.Mean != meanBefore {
			t.Fatalf("Mean changed under decay with no sample: %v -> %v", meanBefore, s.Mean)
		}
	}
	if s.K < 1-1e-9 {
		t.Errorf("K should relax toward 1, got %v", s.K)
	}
	// Samples 5..9 have SumSq 10; twenty decays by 0.9 leave 10*0.9^20 (about 1.22).
	if want := 10 * math.Pow(0.9, 20); math.Abs(s.SumSq-want) > 1e-9 {
		t.Errorf("SumSq should relax toward 0 as 10*0.9^20 = %v, got %v", want, s.SumSq)
	}
}

func TestPushDecayWeightsRecentSamplesMore(t *testing.T) {
	var s Stat
	for i := 0; i < 40; i++ {
		s.PushDecay(10, 0.8) // stable burden of 10 for a long time
	}
	for i := 0; i < 5; i++ {
		s.PushDecay(20, 0.8) // then burden jumps to 20
	}
	if s.Mean <= 10 || s.Mean >= 20 {
		t.Fatalf("expected decayed mean between the old and new regime, got %v", s.Mean)
	}
	// A plain (non-decayed) accumulator over the same samples would still be
	// dominated by the 40 samples of 10.
	var plain Stat
	for i := 0; i < 40; i++ {
		plain.Push(10)
	}
	for i := 0; i < 5; i++ {
		plain.Push(20)
	}
	if s.Mean <= plain.Mean {
		t.Errorf("decayed mean (%v) should track the recent regime more closely than the plain mean (%v)", s.Mean, plain.Mean)
	}
}

func TestScale(t *testing.T) {
	var s Stat
	for _, x := range []float64{2, 4, 6} {
		s.Push(x)
	}
	origMean, origVar := s.Mean, s.Variance()
	s.Scale(2)
	if math.Abs(s.Mean-2*origMean) > 1e-9 {
		t.Errorf("scaled Mean = %v, want %v", s.Mean, 2*origMean)
	}
	if math.Abs(s.Variance()-4*origVar) > 1e-9 {
		t.Errorf("scaled Variance = %v, want %v", s.Variance(), 4*origVar)
	}
}
