// Package telemetry exposes per-frame renderer metrics to Prometheus.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/logger"
)

const namespace = "orrery"

// Metrics holds the renderer's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	frameDuration prometheus.Histogram
	frames        prometheus.Counter
	draws         prometheus.Counter
	skipped       prometheus.Counter
	speed         prometheus.Gauge
	simTime       prometheus.Gauge
	actions       *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time between consecutive frames.",
			Buckets:   []float64{.002, .004, .008, .0167, .025, .033, .05, .1, .25},
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames submitted.",
		}),
		draws: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Indexed draws recorded.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_draws_total",
			Help:      "Entities skipped because their mesh is empty.",
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_speed",
			Help:      "Current simulation speed multiplier.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_time",
			Help:      "Accumulated simulation time.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Discrete input actions handled.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(
		m.frameDuration, m.frames, m.draws, m.skipped, m.speed, m.simTime, m.actions,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFrame records one submitted frame.
func (m *Metrics) ObserveFrame(dt float64, draws, skipped int) {
	if dt > 0 {
		m.frameDuration.Observe(dt)
	}
	m.frames.Inc()
	m.draws.Add(float64(draws))
	m.skipped.Add(float64(skipped))
}

// SetClock publishes the simulation clock state.
func (m *Metrics) SetClock(speed, t float64) {
	m.speed.Set(speed)
	m.simTime.Set(t)
}

// CountAction increments the counter for a handled action.
func (m *Metrics) CountAction(name string) {
	m.actions.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
// The returned channel receives the server's terminal error, if any.
func (m *Metrics) Serve(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log := logger.Named("telemetry")
	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown", zap.Error(err))
		}
	}()

	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), done, nil
}
