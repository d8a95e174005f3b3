// Package goblin implements the profile-driven controller: the outer loop
// that ingests per-option burden measurements, maintains rolling statistics,
// fuses them with an optional prior-run profile, estimates a probabilistic
// burden for every option (including unexplored ones), formulates a
// knapsack problem, and applies the solver's choices back to the
// application's settings.
package goblin

import (
	"fmt"
	"math"
	"weak"

	"github.com/EvanBalster/perf-goblin/internal/goblin/economy"
	"github.com/EvanBalster/perf-goblin/internal/goblin/knapsack"
	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
	"github.com/EvanBalster/perf-goblin/internal/goblin/setting"
)

// Config enumerates the controller's tunable knobs.
type Config struct {
	RecentAlpha  float64 // decay factor applied to Recent stats once per Update
	AnomalyAlpha float64 // decay factor for the recent-anomaly EMA
	MeasureQuota float64 // samples per option considered "sufficient"
	ExploreValue float64 // value bonus for under-sampled options
	PessimismSD  float64 // standard-deviation margin for a NormalCapacity; not read by Controller, whose Update takes the margin from its capacity argument's Sigma
}

// DefaultConfig returns reasonable defaults for Config.
func DefaultConfig() Config {
	return Config{
		RecentAlpha:  1 - 1.0/30,
		AnomalyAlpha: 1 - 1.0/30,
		MeasureQuota: 30,
		ExploreValue: 0,
		PessimismSD:  3,
	}
}

// Anomaly is the controller's scalar multiplier expressing how much current
// costs deviate from historical means across all settings.
type Anomaly struct {
	Latest float64
	Recent float64
}

// Metrics is an optional observation hook a host application can attach to
// a Controller to export telemetry, without the core depending on any
// particular metrics library (see internal/goblin/telemetry for a
// Prometheus-backed implementation).
type Metrics interface {
	TickStarted()
	CapacityInfeasible()
	SettingForcedDefault(id string)
	SettingChosen(id string, choice int, burden economy.Normal, value float64)
	AnomalyObserved(a Anomaly)
}

type registeredSetting struct {
	s        setting.Setting
	decision *knapsack.Decision[economy.Normal]
}

// Controller is the Goblin outer loop. It owns a current Profile and may
// optionally reference a past-run Profile loaded via internal/goblin/profile/store.
type Controller struct {
	Config  Config
	Metrics Metrics

	profile *profile.Profile
	past    *profile.Profile
	anomaly Anomaly

	settings map[string]*registeredSetting
	order    []string // registration order, for deterministic iteration

	solver knapsack.Solver[economy.Normal, economy.NormalCapacity, economy.NormalEconomy]
}

// owners tracks, with a weak back-pointer, which Controller currently owns
// a given Setting, as a back-pointer (weak/raw) from Setting to Controller,
// cleared on unregister; ownership never flows along this edge. Settings
// used this way must be comparable (in practice, pointer-backed
// implementations such as *setting.Basic).
var owners = map[setting.Setting]weak.Pointer[Controller]{}

// New returns a Controller with no past profile.
func New(cfg Config) *Controller {
	return &Controller{
		Config:   cfg,
		anomaly:  Anomaly{Latest: 1, Recent: 1},
		profile:  profile.New(),
		settings: make(map[string]*registeredSetting),
		solver:   knapsack.New[economy.Normal, economy.NormalCapacity](economy.NormalEconomy{}),
	}
}

// Profile returns the controller's live (current-run) profile.
func (c *Controller) Profile() *profile.Profile { return c.profile }

// SetPastProfile attaches a prior-run profile, fused into burden estimates
// via the past/present ratio.
func (c *Controller) SetPastProfile(p *profile.Profile) { c.past = p }

// Register links s to this controller. Re-registering the same setting
// against the same controller is a no-op; registering a setting already
// owned by a different live controller is rejected.
func (c *Controller) Register(s setting.Setting) error {
	if owner, ok := owners[s]; ok {
		if other := owner.Value(); other != nil && other != c {
			return fmt.Errorf("goblin: setting %q is already owned by another controller", s.ID())
		}
	}
	id := s.ID()
	if err := validateSettingID(id); err != nil {
		return err
	}
	if existing, ok := c.settings[id]; ok && existing.s == s {
		return nil // already registered with this controller
	}
	c.settings[id] = &registeredSetting{s: s}
	c.order = append(c.order, id)
	owners[s] = weak.Make(c)
	return nil
}

// Unregister breaks the link between s and this controller, if present.
func (c *Controller) Unregister(s setting.Setting) {
	id := s.ID()
	if reg, ok := c.settings[id]; ok && reg.s == s {
		delete(c.settings, id)
		for i, oid := range c.order {
			if oid == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	if owner, ok := owners[s]; ok {
		if other := owner.Value(); other == c || other == nil {
			delete(owners, s)
		}
	}
}

func validateSettingID(id string) error {
	for _, r := range id {
		if r == '"' || r == '\n' || r == '\r' {
			return fmt.Errorf("goblin: invalid setting id %q: must not contain a quote or newline", id)
		}
	}
	return nil
}

// Update runs one controller tick: harvest measurements into the profile,
// then decide (and apply) a choice for every registered setting, keeping the
// aggregate estimated burden acceptable under capacity. When no combination
// is acceptable, every setting gets its lightest-estimated option instead.
func (c *Controller) Update(capacity economy.NormalCapacity, precision int) {
	if c.Metrics != nil {
		c.Metrics.TickStarted()
	}
	c.harvest()
	c.decide(capacity, precision)
}

// ─── Harvest ──────────────────────────────────────────────────────────

func (c *Controller) harvest() {
	c.profile.DecayRecent(c.Config.RecentAlpha)

	var sumTypical, sumCurrent float64
	for _, id := range c.order {
		reg := c.settings[id]
		optionCount := len(reg.s.Options())
		for {
			m := reg.s.Measurement()
			if !m.Valid {
				break
			}
			burden := m.Burden
			if burden < 0 {
				burden = 0
			}
			if t := c.profile.Find(id); t != nil && m.Choice >= 0 && m.Choice < len(t.Options) && t.Options[m.Choice].Full.Count() > 0 {
				sumTypical += t.Options[m.Choice].Full.Mean
				sumCurrent += burden
			}
			c.profile.Collect(id, optionCount, m.Choice, burden)
		}
	}

	if sumTypical > 0 {
		c.anomaly.Latest = sumCurrent / sumTypical
		c.anomaly.Recent = c.anomaly.Recent*c.Config.AnomalyAlpha + c.anomaly.Latest*(1-c.Config.AnomalyAlpha)
		if c.Metrics != nil {
			c.Metrics.AnomalyObserved(c.anomaly)
		}
	}
}

// Anomaly returns the controller's current anomaly estimate.
func (c *Controller) Anomaly() Anomaly { return c.anomaly }

// ─── Decide ───────────────────────────────────────────────────────────

func (c *Controller) decide(capacity economy.NormalCapacity, precision int) {
	ratio := c.pastPresentRatio()
	econ := economy.NormalEconomy{}

	decisions := make([]*knapsack.Decision[economy.Normal], 0, len(c.order))
	for _, id := range c.order {
		reg := c.settings[id]
		appOptions := reg.s.Options()
		curr := c.profile.Find(id)
		var past *profile.Task
		if c.past != nil {
			past = c.past.Find(id)
		}

		hasCurrent := taskHasData(curr)
		hasPast := taskHasData(past)

		d := &knapsack.Decision[economy.Normal]{Options: make([]knapsack.Option[economy.Normal], len(appOptions))}

		if !hasCurrent && !hasPast {
			def := reg.s.ChoiceDefault()
			for j := range appOptions {
				if j == def {
					d.Options[j] = knapsack.Option[economy.Normal]{Burden: economy.Normal{}, Value: appOptions[j].Value}
				} else {
					d.Options[j] = knapsack.Option[economy.Normal]{Burden: econ.Infinite(), Value: appOptions[j].Value}
				}
			}
			if c.Metrics != nil {
				c.Metrics.SettingForcedDefault(id)
			}
			reg.decision = d
			decisions = append(decisions, d)
			continue
		}

		blind := c.blindGuess(curr, past, ratio)

		var dataMissing, dataTotal float64
		for j := range appOptions {
			cc := optionCount(curr, j)
			pc := optionCount(past, j)
			dataTotal += cc + pc
			if miss := c.Config.MeasureQuota - cc - pc; miss > 0 {
				dataMissing += miss
			}
		}
		unexploredMod := 0.0
		if denom := math.Max(dataMissing, dataTotal); denom > 0 {
			unexploredMod = dataMissing / denom
		}

		for j, opt := range appOptions {
			cc := optionCount(curr, j)
			pc := optionCount(past, j)

			priorBurden := blind
			if past != nil && past.Options[j].Full.Count() > 0 && ratio >= 0 {
				priorBurden = econ.Scale(past.Options[j].Full.BurdenNorm(), ratio)
			}

			var est economy.Normal
			switch {
			case cc >= c.Config.MeasureQuota:
				est = curr.Options[j].Recent.BurdenNorm()
			case cc > 0:
				weight := cc / c.Config.MeasureQuota
				curEst := econ.Scale(curr.Options[j].Recent.BurdenNorm(), c.anomaly.Recent)
				est = lerp(curEst, priorBurden, weight)
			default:
				est = priorBurden
			}

			value := opt.Value
			if pc+cc < c.Config.MeasureQuota {
				value += c.Config.ExploreValue
				est = econ.Scale(est, unexploredMod)
			}
			d.Options[j] = knapsack.Option[economy.Normal]{Burden: est, Value: value}
		}

		reg.decision = d
		decisions = append(decisions, d)
	}

	ok, _ := c.solver.Decide(decisions, capacity, precision)
	if !ok && c.Metrics != nil {
		c.Metrics.CapacityInfeasible()
	}

	for _, id := range c.order {
		reg := c.settings[id]
		reg.s.ChoiceSet(reg.decision.Choice, 0)
		if c.Metrics != nil {
			opt := reg.decision.Options[reg.decision.Choice]
			c.Metrics.SettingChosen(id, reg.decision.Choice, opt.Burden, opt.Value)
		}
	}
}

// blindGuess returns the lightest known burden estimate across every option
// of a setting, used as the optimistic prior for options with no data of
// their own.
func (c *Controller) blindGuess(curr, past *profile.Task, ratio float64) economy.Normal {
	econ := economy.NormalEconomy{}
	best := econ.Infinite()
	found := false
	consider := func(n economy.Normal) {
		if !found || econ.Lesser(n, best) {
			best, found = n, true
		}
	}
	if curr != nil {
		for _, o := range curr.Options {
			if o.Full.Count() > 0 {
				consider(econ.Scale(o.Recent.BurdenNorm(), c.anomaly.Recent))
			}
		}
	}
	if past != nil && ratio >= 0 {
		for _, o := range past.Options {
			if o.Full.Count() > 0 {
				consider(econ.Scale(o.Full.BurdenNorm(), ratio))
			}
		}
	}
	return best
}

// pastPresentRatio computes the weighted geometric-style mean of
// cest.mean/pest.mean over every matching (id, option) pair with data on
// both sides, weighted by sqrt(cest.count*pest.count*cest.mean*pest.mean).
// Returns -1 when there isn't enough overlapping data to compute it.
func (c *Controller) pastPresentRatio() float64 {
	if c.past == nil {
		return -1
	}
	var sumW, sumWLogR float64
	for _, id := range c.past.Ids() {
		past := c.past.Find(id)
		curr := c.profile.Find(id)
		if curr == nil || past == nil {
			continue
		}
		n := len(past.Options)
		if len(curr.Options) < n {
			n = len(curr.Options)
		}
		for j := 0; j < n; j++ {
			cc := curr.Options[j].Full.Count()
			pc := past.Options[j].Full.Count()
			cm := curr.Options[j].Full.Mean
			pm := past.Options[j].Full.Mean
			if cc <= 0 || pc <= 0 || cm <= 0 || pm <= 0 {
				continue
			}
			w := math.Sqrt(cc * pc * cm * pm)
			sumW += w
			sumWLogR += w * math.Log(cm/pm)
		}
	}
	if sumW == 0 {
		return -1
	}
	return math.Exp(sumWLogR / sumW)
}

func taskHasData(t *profile.Task) bool {
	if t == nil {
		return false
	}
	for _, o := range t.Options {
		if o.Full.Count() > 0 {
			return true
		}
	}
	return false
}

func optionCount(t *profile.Task, j int) float64 {
	if t == nil || j >= len(t.Options) {
		return 0
	}
	return t.Options[j].Full.Count()
}

// lerp linearly interpolates between a (weight w) and b (weight 1-w),
// componentwise across mean and variance.
func lerp(a, b economy.Normal, w float64) economy.Normal {
	return economy.Normal{
		Mean:     a.Mean*w + b.Mean*(1-w),
		Variance: a.Variance*w + b.Variance*(1-w),
	}
}
