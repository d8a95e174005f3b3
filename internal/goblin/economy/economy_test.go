package economy

import (
	"math"
	"testing"
)

func TestScalarEconomyArithmetic(t *testing.T) {
	e := ScalarEconomy[float64]{}
	if got := e.Add(2, 3); got != 5 {
		t.Errorf("Add(2,3) = %v, want 5", got)
	}
	if got := e.Sub(5, 3); got != 2 {
		t.Errorf("Sub(5,3) = %v, want 2", got)
	}
	if got := e.Scale(4, 1.5); got != 6 {
		t.Errorf("Scale(4,1.5) = %v, want 6", got)
	}
	if !e.Lesser(1, 2) || e.Lesser(2, 1) {
		t.Errorf("Lesser ordering wrong")
	}
	if !e.IsPossible(100) || e.IsPossible(e.Infinite()) {
		t.Errorf("IsPossible wrong for finite/infinite")
	}
	if !e.Acceptable(3, 5) || e.Acceptable(5, 5) {
		t.Errorf("Acceptable should be strict: 3<5 true, 5<5 false")
	}
}

func TestScalarEconomyInfinite(t *testing.T) {
	e := ScalarEconomy[float64]{}
	if !math.IsInf(e.Infinite(), 1) {
		t.Errorf("Infinite() = %v, want +Inf", e.Infinite())
	}
}

func TestNormalEconomyAddSubVarianceAlwaysAdds(t *testing.T) {
	e := NormalEconomy{}
	a := Normal{Mean: 10, Variance: 2}
	b := Normal{Mean: 4, Variance: 3}

	sum := e.Add(a, b)
	if sum.Mean != 14 || sum.Variance != 5 {
		t.Errorf("Add = %+v, want {14 5}", sum)
	}

	diff := e.Sub(a, b)
	if diff.Mean != 6 || diff.Variance != 5 {
		t.Errorf("Sub = %+v, want {6 5} (variance adds even on subtraction)", diff)
	}
}

func TestNormalEconomyScale(t *testing.T) {
	e := NormalEconomy{}
	b := Normal{Mean: 3, Variance: 2}
	scaled := e.Scale(b, 2)
	if scaled.Mean != 6 || scaled.Variance != 8 {
		t.Errorf("Scale(b,2) = %+v, want {6 8}", scaled)
	}
}

func TestNormalEconomyLesserOrdersByMeanOnly(t *testing.T) {
	e := NormalEconomy{}
	a := Normal{Mean: 1, Variance: 1000}
	b := Normal{Mean: 2, Variance: 0}
	if !e.Lesser(a, b) {
		t.Errorf("expected a (lower mean) to be Lesser regardless of variance")
	}
}

func TestNormalEconomyIsPossible(t *testing.T) {
	e := NormalEconomy{}
	if !e.IsPossible(Normal{Mean: 1, Variance: 1}) {
		t.Errorf("finite burden should be possible")
	}
	if e.IsPossible(e.Infinite()) {
		t.Errorf("infinite burden should not be possible")
	}
}

func TestNormalEconomyAcceptable(t *testing.T) {
	e := NormalEconomy{}
	cap := NormalCapacity{Limit: 100, Sigma: 2}

	// Zero-variance burden: acceptable purely on mean < limit.
	if !e.Acceptable(Normal{Mean: 50, Variance: 0}, cap) {
		t.Errorf("mean well under limit with zero variance should be acceptable")
	}
	if e.Acceptable(Normal{Mean: 100, Variance: 0}, cap) {
		t.Errorf("mean == limit should not be acceptable (strict inequality)")
	}
	if e.Acceptable(Normal{Mean: 150, Variance: 0}, cap) {
		t.Errorf("mean over limit should not be acceptable")
	}

	// A burden whose mean is under the limit but whose sigma-scaled stdev
	// pushes past the limit should be rejected.
	highVariance := Normal{Mean: 90, Variance: 100} // stdev 10, sigma*stdev = 20 > margin(10)
	if e.Acceptable(highVariance, cap) {
		t.Errorf("high-variance burden within margin mean but violating sigma bound should be rejected")
	}

	lowVariance := Normal{Mean: 90, Variance: 1} // stdev 1, sigma*stdev = 2 < margin(10)
	if !e.Acceptable(lowVariance, cap) {
		t.Errorf("low-variance burden within the sigma margin should be accepted")
	}
}

func TestNormalEconomyAcceptableMatchesSqrtForm(t *testing.T) {
	e := NormalEconomy{}
	cap := NormalCapacity{Limit: 20, Sigma: 1.5}
	for _, v := range []Normal{
		{Mean: 5, Variance: 4},
		{Mean: 15, Variance: 9},
		{Mean: 19, Variance: 0.1},
		{Mean: 1, Variance: 400},
	} {
		closedForm := e.Acceptable(v, cap)
		sqrtForm := v.Mean+cap.Sigma*math.Sqrt(v.Variance) < cap.Limit
		if closedForm != sqrtForm {
			t.Errorf("Acceptable(%+v, %+v) = %v, want %v (sqrt form)", v, cap, closedForm, sqrtForm)
		}
	}
}
