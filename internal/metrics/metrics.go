package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chessbro_commands_total",
			Help: "Protocol commands handled, by command kind.",
		},
		[]string{"command"},
	)
	PositionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chessbro_position_rejections_total",
			Help: "Rejected position commands, by reason.",
		},
		[]string{"reason"},
	)
	AdvisorProposals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chessbro_advisor_proposals_total",
			Help: "Advisor calls, by advisor and outcome.",
		},
		[]string{"source", "outcome"},
	)
	AdvisorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chessbro_advisor_duration_seconds",
			Help:    "Time spent in an advisor call.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"source"},
	)
)

func init() {
	Registry.MustRegister(CommandsTotal, PositionRejections, AdvisorProposals, AdvisorDuration)
}

func ObserveCommand(kind string) {
	CommandsTotal.WithLabelValues(kind).Inc()
}

func ObservePositionRejected(reason string) {
	PositionRejections.WithLabelValues(reason).Inc()
}

func ObserveAdvisor(source, outcome string, took time.Duration) {
	AdvisorProposals.WithLabelValues(source, outcome).Inc()
	AdvisorDuration.WithLabelValues(source).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
