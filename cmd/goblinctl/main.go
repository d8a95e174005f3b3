// Command goblinctl is inspection/export tooling for a Goblin-driven
// application: it shows and round-trips a persisted burden profile, and can
// serve the synthetic demo workload's telemetry over HTTP. It is
// deliberately not a REPL or visualization tool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
