// Package economy defines the burden algebra the knapsack solver and the
// Goblin controller are generic over: how burdens add, scale, compare, and
// how a burden is judged "acceptable" against a capacity.
//
// Two economies ship here. ScalarEconomy treats burden as a plain
// nonnegative real. NormalEconomy layers a (mean, variance) pair on top and
// judges acceptability with a sigma-margin capacity, for applications that
// want to budget against burden variance rather than just its mean.
//
// The solver's inner loop is instantiated per economy rather than dispatched
// through an interface value, so there is no virtual call in the DP sweep.
package economy

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Algebra is the burden arithmetic the solver and controller need. B is the
// burden type (e.g. float64 or Normal); C is the capacity type it is
// compared against (e.g. float64 or NormalCapacity).
type Algebra[B, C any] interface {
	Zero() B
	Infinite() B
	Add(a, b B) B
	Sub(a, b B) B
	Scale(b B, s float64) B
	// Lesser reports whether a sorts before b for frontier pruning
	// purposes. It need not be a full order (e.g. NormalEconomy orders by
	// mean alone); acceptability is re-checked separately wherever it
	// matters.
	Lesser(a, b B) bool
	IsPossible(b B) bool
	Acceptable(b B, c C) bool
}

// ScalarEconomy treats burden as a nonnegative real number.
type ScalarEconomy[T constraints.Float] struct{}

func (ScalarEconomy[T]) Zero() T     { return 0 }
func (ScalarEconomy[T]) Infinite() T { return infiniteScalar[T]() }

// Add returns a+b.
func (ScalarEconomy[T]) Add(a, b T) T { return a + b }

// Sub returns a-b.
func (ScalarEconomy[T]) Sub(a, b T) T { return a - b }

// Scale returns b*s.
func (ScalarEconomy[T]) Scale(b T, s float64) T { return b * T(s) }

// Lesser orders by the scalar value directly.
func (ScalarEconomy[T]) Lesser(a, b T) bool { return a < b }

// IsPossible reports whether b is finite.
func (ScalarEconomy[T]) IsPossible(b T) bool { return b < infiniteScalar[T]() }

// Acceptable holds iff b < c, strictly.
func (ScalarEconomy[T]) Acceptable(b, c T) bool { return b < c }

func infiniteScalar[T constraints.Float]() T {
	return T(math.Inf(1))
}

// Normal is a burden expressed as an independent (mean, variance) pair.
type Normal struct {
	Mean     float64
	Variance float64
}

// NormalCapacity bounds a Normal burden with a mean limit and a
// standard-deviation margin (the "pessimism" factor).
type NormalCapacity struct {
	Limit float64
	Sigma float64
}

// NormalEconomy layers Normal burden arithmetic on top of the scalar rules:
// addition and subtraction treat the two burdens as independent random
// variables (variances always add), scaling multiplies the mean by s and
// the variance by s^2.
type NormalEconomy struct{}

func (NormalEconomy) Zero() Normal     { return Normal{} }
func (NormalEconomy) Infinite() Normal { return Normal{Mean: infiniteScalar[float64](), Variance: infiniteScalar[float64]()} }

// Add treats a and b as independent: means add, variances add.
func (NormalEconomy) Add(a, b Normal) Normal {
	return Normal{Mean: a.Mean + b.Mean, Variance: a.Variance + b.Variance}
}

// Sub also adds variances: removing an independent burden does not reduce
// uncertainty about the remainder.
func (NormalEconomy) Sub(a, b Normal) Normal {
	return Normal{Mean: a.Mean - b.Mean, Variance: a.Variance + b.Variance}
}

// Scale multiplies the mean by s and the variance by s^2.
func (NormalEconomy) Scale(b Normal, s float64) Normal {
	return Normal{Mean: b.Mean * s, Variance: b.Variance * s * s}
}

// Lesser orders by mean only. Two burdens with equal means but different
// variances are indistinguishable for frontier pruning; acceptability is
// what ultimately discriminates them.
func (NormalEconomy) Lesser(a, b Normal) bool { return a.Mean < b.Mean }

// IsPossible reports whether both components are finite.
func (NormalEconomy) IsPossible(b Normal) bool {
	inf := infiniteScalar[float64]()
	return b.Mean < inf && b.Variance < inf
}

// Acceptable implements the closed form for "mean + sigma*sqrt(variance) <
// limit" without computing a square root:
//
//	m < limit  &&  sigma^2 * v < (limit - m)^2
func (NormalEconomy) Acceptable(b Normal, c NormalCapacity) bool {
	if !(b.Mean < c.Limit) {
		return false
	}
	margin := c.Limit - b.Mean
	return c.Sigma*c.Sigma*b.Variance < margin*margin
}
