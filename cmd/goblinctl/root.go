package main

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands register themselves in their
// own init() functions.
var rootCmd = &cobra.Command{
	Use:   "goblinctl",
	Short: "Inspect and drive a perf-goblin quality controller",
	Long: `goblinctl is inspection and export tooling for an application using
perf-goblin's profile-driven settings controller. It can show a persisted
burden profile, export/import it, and serve a synthetic demo workload's
telemetry for local poking.`,
}
