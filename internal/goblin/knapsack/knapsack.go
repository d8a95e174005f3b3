// Package knapsack implements the multiple-choice knapsack FPTAS: given a
// list of decisions (each a small set of burden/value options) and a
// capacity, it selects one option per decision maximizing net value while
// keeping net burden acceptable under the capacity.
//
// The solver is generic over an economy.Algebra so it can run against either
// the scalar or the normal burden algebra without an interface call in the
// inner loop: the economy type parameter E is a concrete, typically
// zero-size struct (economy.ScalarEconomy, economy.NormalEconomy), not an
// interface value, so each instantiation compiles its own specialized DP
// sweep.
package knapsack

import (
	"math"
	"sort"

	"github.com/EvanBalster/perf-goblin/internal/goblin/economy"
)

// Option is a single choice within a Decision: a burden/value pair. Options
// are owned by the caller and never mutated by the solver; quantized scores
// are tracked in a parallel slice internal to Decide.
type Option[B any] struct {
	Burden B
	Value  float64
}

// Decision is a group of mutually-exclusive Options, exactly one of which
// is selected. Options is owned by the caller; Choice/ChoiceEasy/ChoiceHigh
// are written by Decide.
type Decision[B any] struct {
	Options []Option[B]

	Choice     int // the solver's chosen option index
	ChoiceEasy int // minimum-burden option (including impossible ones)
	ChoiceHigh int // maximum-value option among possible options
}

// NetResult aggregates burden, value, and quantized score across every
// decision's chosen option.
type NetResult[B any] struct {
	Burden B
	Value  float64
	Score  int
}

// Stats summarizes one Decide call.
type Stats[B any] struct {
	Lightest   NetResult[B] // sum of every decision's ChoiceEasy
	Highest    NetResult[B] // sum of every decision's ChoiceHigh
	Chosen     NetResult[B] // the solution actually applied
	Iterations int          // number of (frontier-entry, option) pairs examined
}

// Solver runs the FPTAS for a fixed economy. E is the concrete economy type
// (e.g. economy.NormalEconomy); B and C are its burden and capacity types.
type Solver[B, C any, E economy.Algebra[B, C]] struct {
	Econ E
}

// New returns a Solver for the given economy.
func New[B, C any, E economy.Algebra[B, C]](econ E) Solver[B, C, E] {
	return Solver[B, C, E]{Econ: econ}
}

// minimum is one entry of a score-indexed frontier: the lightest net burden
// (and the option that produced it) known to reach that net score.
type minimum[B any] struct {
	netBurden B
	choice    int
}

// Decide solves the multiple-choice knapsack problem over decisions under
// capacity, writing Choice (and ChoiceEasy/ChoiceHigh) into each decision.
// precision is clamped to at least 4. It returns true iff a solution within
// capacity was found; false means every combination exceeds capacity and
// the lightest combination (ChoiceEasy throughout) was written instead.
func (s Solver[B, C, E]) Decide(decisions []*Decision[B], capacity C, precision int) (bool, Stats[B]) {
	if precision < 4 {
		precision = 4
	}
	if len(decisions) == 0 {
		return true, Stats[B]{Lightest: NetResult[B]{Burden: s.Econ.Zero()}, Highest: NetResult[B]{Burden: s.Econ.Zero()}, Chosen: NetResult[B]{Burden: s.Econ.Zero()}}
	}

	// ─── Prepare ────────────────────────────────────────────────────────
	maxValueRange := 0.0
	for _, d := range decisions {
		easy := 0
		for i := 1; i < len(d.Options); i++ {
			if s.Econ.Lesser(d.Options[i].Burden, d.Options[easy].Burden) {
				easy = i
			}
		}
		high := -1
		for i, opt := range d.Options {
			if !s.Econ.IsPossible(opt.Burden) {
				continue
			}
			switch {
			case high == -1:
				high = i
			case opt.Value > d.Options[high].Value:
				high = i
			case opt.Value == d.Options[high].Value && s.Econ.Lesser(opt.Burden, d.Options[high].Burden):
				// Among value ties, prefer the lighter option so a decision
				// with no value signal at all reduces to choice_easy.
				high = i
			}
		}
		if high == -1 {
			high = easy
		}
		d.ChoiceEasy, d.ChoiceHigh = easy, high
		if r := d.Options[high].Value - d.Options[easy].Value; r > maxValueRange {
			maxValueRange = r
		}
	}
	if maxValueRange <= 0 {
		maxValueRange = 1
	}
	scale := float64(precision) / maxValueRange

	scores := make([][]int, len(decisions))
	for i, d := range decisions {
		easyValue := d.Options[d.ChoiceEasy].Value
		row := make([]int, len(d.Options))
		for j, opt := range d.Options {
			row[j] = int(math.Ceil((opt.Value - easyValue) * scale))
		}
		scores[i] = row
	}

	lightest := NetResult[B]{Burden: s.Econ.Zero()}
	highest := NetResult[B]{Burden: s.Econ.Zero()}
	for i, d := range decisions {
		lightest.Burden = s.Econ.Add(lightest.Burden, d.Options[d.ChoiceEasy].Burden)
		lightest.Value += d.Options[d.ChoiceEasy].Value
		highest.Burden = s.Econ.Add(highest.Burden, d.Options[d.ChoiceHigh].Burden)
		highest.Value += d.Options[d.ChoiceHigh].Value
		highest.Score += scores[i][d.ChoiceHigh]
	}

	// ─── Shortcuts ──────────────────────────────────────────────────────
	if !s.Econ.Acceptable(lightest.Burden, capacity) {
		for _, d := range decisions {
			d.Choice = d.ChoiceEasy
		}
		return false, Stats[B]{Lightest: lightest, Highest: highest, Chosen: lightest}
	}
	if s.Econ.Acceptable(highest.Burden, capacity) {
		for _, d := range decisions {
			d.Choice = d.ChoiceHigh
		}
		return true, Stats[B]{Lightest: lightest, Highest: highest, Chosen: highest}
	}

	// ─── Main: sort decisions by their ChoiceHigh score, sweep a frontier
	// keyed by net score (a map, not a dense array) one decision at a time ─
	order := make([]int, len(decisions))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		da, db := order[a], order[b]
		return scores[da][decisions[da].ChoiceHigh] < scores[db][decisions[db].ChoiceHigh]
	})

	rows := make([]map[int]minimum[B], len(order))
	previous := map[int]minimum[B]{0: {netBurden: s.Econ.Zero(), choice: -1}}
	current := map[int]minimum[B]{}

	iterations := 0
	for row, di := range order {
		d := decisions[di]
		clear(current)
		for prevScore, prevMin := range previous {
			for optIdx, opt := range d.Options {
				sc := scores[di][optIdx]
				if sc < 0 {
					continue // negative-score options cannot be on an optimal path
				}
				if !s.Econ.IsPossible(opt.Burden) {
					continue // impossible options only selectable via the lightest fallback
				}
				iterations++
				candBurden := s.Econ.Add(prevMin.netBurden, opt.Burden)
				if !s.Econ.Acceptable(candBurden, capacity) {
					continue
				}
				candScore := prevScore + sc
				if existing, ok := current[candScore]; !ok || s.Econ.Lesser(candBurden, existing.netBurden) {
					current[candScore] = minimum[B]{netBurden: candBurden, choice: optIdx}
				}
			}
		}
		snapshot := make(map[int]minimum[B], len(current))
		for k, v := range current {
			snapshot[k] = v
		}
		rows[row] = snapshot
		previous, current = current, previous
	}

	// ─── Reconstruct ────────────────────────────────────────────────────
	final := previous // holds row len(order)-1's frontier after the last swap
	bestScore, found := -1, false
	for sc := range final {
		if sc > bestScore {
			bestScore, found = sc, true
		}
	}
	if !found {
		// Unreachable once the lightest-combination shortcut above has
		// already confirmed lightest.Burden is acceptable under capacity.
		for _, d := range decisions {
			d.Choice = d.ChoiceEasy
		}
		return false, Stats[B]{Lightest: lightest, Highest: highest, Chosen: lightest, Iterations: iterations}
	}

	chosen := NetResult[B]{Burden: final[bestScore].netBurden, Score: bestScore}
	score := bestScore
	for row := len(order) - 1; row >= 0; row-- {
		di := order[row]
		entry := rows[row][score]
		decisions[di].Choice = entry.choice
		chosen.Value += decisions[di].Options[entry.choice].Value
		score -= scores[di][entry.choice]
	}

	return true, Stats[B]{Lightest: lightest, Highest: highest, Chosen: chosen, Iterations: iterations}
}
