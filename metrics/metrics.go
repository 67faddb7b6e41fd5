// Package metrics exposes playback engine counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/handover"
	"github.com/dashreel/dashreel/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.Dashreel,
			Name:      "backend_selections_total",
			Help:      "Items assigned to a backend by the strategy chain",
		},
		[]string{"backend"},
	)

	classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.Dashreel,
			Name:      "classifications_total",
			Help:      "Backend lifecycle transitions by classification",
		},
		[]string{"backend", "kind", "anomalous"},
	)

	actions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.Dashreel,
			Name:      "actions_total",
			Help:      "Handover controller decisions",
		},
		[]string{"backend", "action"},
	)

	handovers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.Dashreel,
			Name:      "handovers_total",
			Help:      "Switches from one backend to the other",
		},
		[]string{"from", "to"},
	)
)

// Observer records session decisions.
type Observer struct{}

func (Observer) Selected(backend string) {
	selections.WithLabelValues(backend).Inc()
}

func (Observer) Classified(backend string, c monitor.Classification) {
	anomalous := "false"
	if c.Anomalous {
		anomalous = "true"
	}
	classifications.WithLabelValues(backend, string(c.Kind), anomalous).Inc()
}

func (Observer) Acted(backend string, a handover.Action) {
	actions.WithLabelValues(backend, string(a.Kind)).Inc()
	if a.Kind == handover.Switch {
		handovers.WithLabelValues(backend, a.Target.ID).Inc()
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- server.ListenAndServe() }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
