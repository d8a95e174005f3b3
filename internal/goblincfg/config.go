// Package goblincfg loads Controller configuration from a TOML file, with a
// Default() constructor and a small file-loading helper.
package goblincfg

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/EvanBalster/perf-goblin/internal/goblin"
)

// File is the on-disk TOML shape for a Goblin deployment: the controller's
// tunables plus the solver's capacity and precision.
type File struct {
	Goblin struct {
		RecentAlpha  float64 `toml:"recent_alpha"`
		AnomalyAlpha float64 `toml:"anomaly_alpha"`
		MeasureQuota float64 `toml:"measure_quota"`
		ExploreValue float64 `toml:"explore_value"`
		PessimismSD  float64 `toml:"pessimism_sd"`
	} `toml:"goblin"`

	Capacity struct {
		Limit     float64 `toml:"limit"`
		Precision int     `toml:"precision"`
	} `toml:"capacity"`
}

// Default returns a File populated with reasonable defaults.
func Default() File {
	def := goblin.DefaultConfig()
	var f File
	f.Goblin.RecentAlpha = def.RecentAlpha
	f.Goblin.AnomalyAlpha = def.AnomalyAlpha
	f.Goblin.MeasureQuota = def.MeasureQuota
	f.Goblin.ExploreValue = def.ExploreValue
	f.Goblin.PessimismSD = def.PessimismSD
	f.Capacity.Limit = 16.0
	f.Capacity.Precision = 30
	return f
}

// Load reads and parses a TOML config file, falling back to Default()
// values for any field absent from the file. A field written in the file
// keeps the file's value, even when that value is zero.
func Load(path string) (File, error) {
	f := Default()
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("goblin: config: load %q: %w", path, err)
	}
	return f, nil
}

// ControllerConfig converts the file's [goblin] section into a
// goblin.Config.
func (f File) ControllerConfig() goblin.Config {
	return goblin.Config{
		RecentAlpha:  f.Goblin.RecentAlpha,
		AnomalyAlpha: f.Goblin.AnomalyAlpha,
		MeasureQuota: f.Goblin.MeasureQuota,
		ExploreValue: f.Goblin.ExploreValue,
		PessimismSD:  f.Goblin.PessimismSD,
	}
}
