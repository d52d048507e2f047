package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-payback/internal/model"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.RecordScenario(model.ModeSolar, model.ScenarioResult{PaybackYears: 4.2})
	r.RecordScenario(model.ModeSolar, model.ScenarioResult{PaybackYears: math.Inf(1)})
	r.RecordScenario(model.ModeNoSolar, model.ScenarioResult{PaybackYears: 12})
	r.RecordFailure(model.ModeNoSolar)
	r.ObserveDispatch(model.ModeSolar, 3*time.Millisecond)

	expected := `
# HELP payback_scenarios_total Number of evaluated scenarios by dispatch mode and outcome
# TYPE payback_scenarios_total counter
payback_scenarios_total{mode="no_solar",outcome="failed"} 1
payback_scenarios_total{mode="no_solar",outcome="pays_back"} 1
payback_scenarios_total{mode="solar",outcome="never"} 1
payback_scenarios_total{mode="solar",outcome="pays_back"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(r.scenarios, strings.NewReader(expected)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.dispatch))
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewRecorder(reg)
	require.NoError(t, err)
	b, err := NewRecorder(reg)
	require.NoError(t, err)

	a.RecordFailure(model.ModeSolar)
	b.RecordFailure(model.ModeSolar)
	assert.Equal(t, 2.0, testutil.ToFloat64(a.scenarios.WithLabelValues("solar", OutcomeFailed)))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordFailure(model.ModeSolar)
		r.RecordScenario(model.ModeSolar, model.ScenarioResult{})
		r.ObserveDispatch(model.ModeNoSolar, time.Second)
	})
}
