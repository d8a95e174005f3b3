// Package telemetry is a Prometheus-backed implementation of goblin.Metrics,
// plus a small chi HTTP server exposing it.
package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EvanBalster/perf-goblin/internal/goblin"
	"github.com/EvanBalster/perf-goblin/internal/goblin/economy"
)

// Recorder implements goblin.Metrics against a dedicated Prometheus
// registry, so multiple Controllers in a process don't collide on metric
// names.
type Recorder struct {
	registry *prometheus.Registry

	ticks              prometheus.Counter
	capacityInfeasible prometheus.Counter
	forcedDefault      *prometheus.CounterVec
	chosenBurdenMean   *prometheus.GaugeVec
	chosenValue        *prometheus.GaugeVec
	anomalyLatest      prometheus.Gauge
	anomalyRecent      prometheus.Gauge
}

// NewRecorder builds a Recorder with its own Prometheus registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		ticks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "goblin", Name: "ticks_total", Help: "Controller Update calls.",
		}),
		capacityInfeasible: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "goblin", Name: "capacity_infeasible_total", Help: "Ticks where the solver fell back to the lightest combination.",
		}),
		forcedDefault: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "goblin", Name: "forced_default_total", Help: "Per-setting count of ticks forced to the default choice.",
		}, []string{"setting"}),
		chosenBurdenMean: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "goblin", Name: "chosen_burden_mean", Help: "Estimated mean burden of the chosen option, per setting.",
		}, []string{"setting"}),
		chosenValue: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "goblin", Name: "chosen_value", Help: "Value (including any exploration bonus) of the chosen option, per setting.",
		}, []string{"setting"}),
		anomalyLatest: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "goblin", Name: "anomaly_latest", Help: "Most recent per-tick anomaly ratio.",
		}),
		anomalyRecent: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "goblin", Name: "anomaly_recent", Help: "Exponentially-smoothed anomaly ratio.",
		}),
	}
	return r
}

var _ goblin.Metrics = (*Recorder)(nil)

func (r *Recorder) TickStarted()        { r.ticks.Inc() }
func (r *Recorder) CapacityInfeasible() { r.capacityInfeasible.Inc() }
func (r *Recorder) SettingForcedDefault(id string) {
	r.forcedDefault.WithLabelValues(id).Inc()
}
func (r *Recorder) SettingChosen(id string, _ int, burden economy.Normal, value float64) {
	r.chosenBurdenMean.WithLabelValues(id).Set(burden.Mean)
	r.chosenValue.WithLabelValues(id).Set(value)
}
func (r *Recorder) AnomalyObserved(a goblin.Anomaly) {
	r.anomalyLatest.Set(a.Latest)
	r.anomalyRecent.Set(a.Recent)
}

// Handler returns a chi router exposing /metrics and /healthz.
func (r *Recorder) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(5 * time.Second))

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	return mux
}
