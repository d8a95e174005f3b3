// Package profile maintains, per task id, a full-run and a recently-decayed
// BurdenStat for every option of that task. It is the learned memory the
// Goblin controller consults every tick to estimate per-option burden.
package profile

import (
	"fmt"

	"github.com/EvanBalster/perf-goblin/internal/goblin/burdenstat"
)

// OptionStat pairs the lifetime accumulator with the exponentially-decayed
// "recent" one for a single option.
type OptionStat struct {
	Full   burdenstat.Stat
	Recent burdenstat.Stat
}

// Task is one profile entry: a fixed option count established on first
// collection, per-option stats, and bookkeeping.
type Task struct {
	Options       []OptionStat
	DataCount     int
	FullyExplored bool
}

// Count returns the task's fixed option count.
func (t *Task) Count() int { return len(t.Options) }

// Profile maps task id to Task, created lazily on first Collect or
// Assimilate.
type Profile struct {
	tasks map[string]*Task
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{tasks: make(map[string]*Task)}
}

// Find returns a read-only handle to the task, or nil if unknown. The
// returned pointer remains valid for the profile's lifetime: entries are
// never moved once allocated, even if the backing map rehashes.
func (p *Profile) Find(id string) *Task {
	return p.tasks[id]
}

// ensure returns (creating if necessary) the task for id with optionCount
// options, panicking if an existing task's option count disagrees — a
// programmer contract violation, not a recoverable error.
func (p *Profile) ensure(id string, optionCount int) *Task {
	t, ok := p.tasks[id]
	if !ok {
		t = &Task{Options: make([]OptionStat, optionCount)}
		p.tasks[id] = t
		return t
	}
	if t.Count() != optionCount {
		panic(fmt.Sprintf("goblin: profile: task %q re-collected with %d options, previously %d", id, optionCount, t.Count()))
	}
	return t
}

// Collect ensures a task exists for id with optionCount options, then folds
// burden into both the full and recent accumulator of the chosen option and
// increments the task's sample count.
func (p *Profile) Collect(id string, optionCount int, choice int, burden float64) {
	t := p.ensure(id, optionCount)
	if choice < 0 || choice >= len(t.Options) {
		panic(fmt.Sprintf("goblin: profile: invalid choice index %d for task %q with %d options", choice, id, len(t.Options)))
	}
	t.Options[choice].Full.Push(burden)
	t.Options[choice].Recent.Push(burden)
	t.DataCount++
}

// DecayRecent ages every option's Recent accumulator of every task by alpha.
// Called once per controller tick before harvesting new measurements.
func (p *Profile) DecayRecent(alpha float64) {
	for _, t := range p.tasks {
		for i := range t.Options {
			t.Options[i].Recent.Decay(alpha)
		}
	}
}

// Assimilate pools another task's Full stats (scaled by scale) into this
// profile's task for id, creating it if necessary. Used to fuse a persisted
// past-run profile into the current one.
func (p *Profile) Assimilate(id string, other *Task, scale float64) {
	t := p.ensure(id, other.Count())
	for i := range t.Options {
		scaled := other.Options[i].Full
		scaled.Scale(scale)
		t.Options[i].Full = burdenstat.Pool(t.Options[i].Full, scaled)
	}
}

// MeetsQuota reports whether every option of the task has accumulated at
// least quota full samples.
func (t *Task) MeetsQuota(quota float64) bool {
	for _, o := range t.Options {
		if o.Full.Count() < quota {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the profile.
func (p *Profile) Copy() *Profile {
	out := New()
	for id, t := range p.tasks {
		nt := &Task{
			Options:       make([]OptionStat, len(t.Options)),
			DataCount:     t.DataCount,
			FullyExplored: t.FullyExplored,
		}
		copy(nt.Options, t.Options)
		out.tasks[id] = nt
	}
	return out
}

// Clear removes every task from the profile.
func (p *Profile) Clear() {
	p.tasks = make(map[string]*Task)
}

// Ids returns the profile's task ids in unspecified order.
func (p *Profile) Ids() []string {
	ids := make([]string, 0, len(p.tasks))
	for id := range p.tasks {
		ids = append(ids, id)
	}
	return ids
}
