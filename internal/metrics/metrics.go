package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "resqed"

// Metrics counts learner activity. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	modulesCompleted *prometheus.CounterVec
	quizAttempts     *prometheus.CounterVec
	badgesAwarded    *prometheus.CounterVec
	resets           prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		modulesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "modules_completed_total",
			Help:      "Course modules marked complete.",
		}, []string{"course"}),
		quizAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_attempts_total",
			Help:      "Finished quiz attempts by outcome.",
		}, []string{"topic", "difficulty", "outcome"}),
		badgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_badges_awarded_total",
			Help:      "Quiz badge tiers awarded.",
		}, []string{"tier"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_resets_total",
			Help:      "Confirmed progress resets.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.modulesCompleted,
		m.quizAttempts,
		m.badgesAwarded,
		m.resets,
	)

	return m
}

func (m *Metrics) ModuleCompleted(course string) {
	m.modulesCompleted.WithLabelValues(course).Inc()
}

// QuizFinished records an attempt. tier is empty when no badge was earned.
func (m *Metrics) QuizFinished(topic, difficulty string, timedOut bool, tier string) {
	outcome := "completed"
	if timedOut {
		outcome = "timeout"
	}
	m.quizAttempts.WithLabelValues(topic, difficulty, outcome).Inc()

	if tier != "" {
		m.badgesAwarded.WithLabelValues(tier).Inc()
	}
}

func (m *Metrics) ProgressReset() {
	m.resets.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs the /metrics endpoint until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
