// Package metrics exposes Prometheus instrumentation for dispatch runs.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"battery-payback/internal/model"
)

// Scenario outcomes.
const (
	OutcomePaysBack = "pays_back"
	OutcomeNever    = "never"
	OutcomeFailed   = "failed"
)

// Recorder records scenario outcomes and dispatch latency. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	scenarios *prometheus.CounterVec
	dispatch  *prometheus.HistogramVec
}

// NewRecorder registers the payback metrics on reg. A nil registerer
// defaults to the global Prometheus registerer. Registering twice on the
// same registerer reuses the existing collectors.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	scenarios := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payback_scenarios_total",
		Help: "Number of evaluated scenarios by dispatch mode and outcome",
	}, []string{"mode", "outcome"})
	dispatch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payback_dispatch_seconds",
		Help:    "Wall time of one simulated dispatch year",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"mode"})

	if err := reg.Register(scenarios); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		scenarios = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(dispatch); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		dispatch = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return &Recorder{scenarios: scenarios, dispatch: dispatch}, nil
}

// ObserveDispatch records the duration of one dispatch run.
func (r *Recorder) ObserveDispatch(mode model.Mode, d time.Duration) {
	if r == nil {
		return
	}
	r.dispatch.WithLabelValues(string(mode)).Observe(d.Seconds())
}

// RecordScenario counts one finished scenario.
func (r *Recorder) RecordScenario(mode model.Mode, res model.ScenarioResult) {
	if r == nil {
		return
	}
	outcome := OutcomeNever
	if res.PaysBack() {
		outcome = OutcomePaysBack
	}
	r.scenarios.WithLabelValues(string(mode), outcome).Inc()
}

// RecordFailure counts one scenario that could not be evaluated.
func (r *Recorder) RecordFailure(mode model.Mode) {
	if r == nil {
		return
	}
	r.scenarios.WithLabelValues(string(mode), OutcomeFailed).Inc()
}
