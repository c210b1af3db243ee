package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProfilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandlens_profiles_total",
			Help: "Brand profiles produced, by final status",
		},
		[]string{"status"},
	)

	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandlens_fetch_attempts_total",
			Help: "Fetch strategy attempts, by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brandlens_fetch_duration_seconds",
			Help:    "Duration of a single fetch strategy attempt",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
		},
		[]string{"strategy"},
	)

	AIAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandlens_ai_attempts_total",
			Help: "Insight generation attempts, by cascade stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "brandlens_stage_duration_seconds",
			Help: "Duration of each profile pipeline stage",
		},
		[]string{"stage"},
	)

	BatchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "brandlens_batch_in_flight",
			Help: "Brands currently being analyzed",
		},
	)
)

// ObserveFetch records one fetch attempt.
func ObserveFetch(strategy, outcome string, d time.Duration) {
	FetchAttempts.WithLabelValues(strategy, outcome).Inc()
	FetchDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StartServer starts the metrics HTTP server in the background.
func StartServer(port int, path string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}
