// Package demo provides a synthetic multi-setting workload for exercising a
// Controller end to end: it simulates the per-frame burden an application
// would measure for each setting's currently-selected option, so
// cmd/goblinctl and integration tests can run a Controller without a real
// renderer or audio engine.
package demo

import (
	"math"
	"math/rand"

	"github.com/EvanBalster/perf-goblin/internal/goblin"
	"github.com/EvanBalster/perf-goblin/internal/goblin/economy"
	"github.com/EvanBalster/perf-goblin/internal/goblin/setting"
)

// Config controls the synthetic workload's shape.
type Config struct {
	Capacity  economy.NormalCapacity
	Precision int
	NoiseSD   float64 // standard deviation of per-frame measurement noise
}

// DefaultConfig returns a workload budget loose enough that most settings
// can run at higher quality, forcing real trade-offs only occasionally.
func DefaultConfig() Config {
	return Config{
		Capacity:  economy.NormalCapacity{Limit: 16.0, Sigma: 3},
		Precision: 30,
		NoiseSD:   0.15,
	}
}

type syntheticSetting struct {
	s         *setting.Basic
	trueCosts []float64 // mean true burden per option
}

// Workload is a small fixed roster of settings (shadow quality, particle
// density, draw distance) with made-up but plausible per-option burdens.
type Workload struct {
	cfg        Config
	controller *goblin.Controller
	settings   []*syntheticSetting
	rng        *rand.Rand
}

// New builds a Workload registered against a fresh Controller using cfg and
// goblin.DefaultConfig. seed makes the synthetic measurement noise
// reproducible.
func New(cfg Config, seed int64) *Workload {
	c := goblin.New(goblin.DefaultConfig())
	w := &Workload{cfg: cfg, controller: c, rng: rand.New(rand.NewSource(seed))}

	roster := []struct {
		id        string
		values    []float64
		trueCosts []float64
	}{
		{"shadow_quality", []float64{1, 4, 9, 16}, []float64{0.2, 1.0, 2.6, 5.1}},
		{"particle_density", []float64{1, 3, 6}, []float64{0.1, 0.6, 1.8}},
		{"draw_distance", []float64{2, 5, 8, 12}, []float64{0.3, 1.2, 2.4, 4.0}},
	}
	for _, r := range roster {
		opts := make([]setting.Option, len(r.values))
		for i, v := range r.values {
			opts[i] = setting.Option{Value: v}
		}
		s := setting.NewBasic(r.id, opts, 0)
		if err := c.Register(s); err != nil {
			panic(err) // fixed, non-conflicting ids: a registration error here is a programmer error
		}
		w.settings = append(w.settings, &syntheticSetting{s: s, trueCosts: r.trueCosts})
	}
	return w
}

// Controller returns the underlying Controller, e.g. to attach
// telemetry.Recorder or a past-run profile.
func (w *Workload) Controller() *goblin.Controller { return w.controller }

// Tick simulates one frame: sample a noisy burden for each setting's
// currently-selected option, enqueue it, then run one Controller.Update.
func (w *Workload) Tick() {
	for _, ss := range w.settings {
		choice := ss.s.Choice()
		mean := ss.trueCosts[choice]
		noisy := mean + w.rng.NormFloat64()*w.cfg.NoiseSD*mean
		if noisy < 0 {
			noisy = 0
		}
		ss.s.Enqueue(choice, noisy)
	}
	w.controller.Update(w.cfg.Capacity, w.cfg.Precision)
}

// Choices returns the current choice index for every setting, keyed by id.
func (w *Workload) Choices() map[string]int {
	out := make(map[string]int, len(w.settings))
	for _, ss := range w.settings {
		out[ss.s.ID()] = ss.s.Choice()
	}
	return out
}

// TotalTrueCost returns the sum of true (noise-free) burden for the
// workload's current choices, useful for test assertions and demo output.
func (w *Workload) TotalTrueCost() float64 {
	total := 0.0
	for _, ss := range w.settings {
		total += ss.trueCosts[ss.s.Choice()]
	}
	return math.Max(total, 0)
}
