package main

import (
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/EvanBalster/perf-goblin/internal/goblin/demo"
	"github.com/EvanBalster/perf-goblin/internal/goblin/telemetry"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":9191", "address to serve /metrics and /healthz on")
	serveCmd.Flags().Duration("tick", 16*time.Millisecond, "simulated frame interval")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the synthetic demo workload and serve its telemetry over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		tick, _ := cmd.Flags().GetDuration("tick")

		w := demo.New(demo.DefaultConfig(), 1)
		rec := telemetry.NewRecorder()
		w.Controller().Metrics = rec

		go func() {
			t := time.NewTicker(tick)
			defer t.Stop()
			for range t.C {
				w.Tick()
			}
		}()

		log.Printf("goblinctl: serving demo telemetry on %s", addr)
		return http.ListenAndServe(addr, rec.Handler())
	},
}
