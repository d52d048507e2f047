package sweep

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-payback/internal/config"
	"battery-payback/internal/dispatch"
	"battery-payback/internal/metrics"
	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

func newRunner(t *testing.T, mutate func(*config.Config)) *Runner {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	r, err := NewRunner(cfg, nil, nil)
	require.NoError(t, err)
	return r
}

func constantHours(n int, price, consumption float64) model.HourlySeries {
	prices := make([]float64, n)
	cons := make([]float64, n)
	for i := range prices {
		prices[i] = price
		cons[i] = consumption
	}
	hours, _ := profile.Build(prices, cons, nil)
	return hours
}

func TestRunDefaultSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Sweep.Workers = 4
	r, err := NewRunner(cfg, nil, rec)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	require.Len(t, res.WithSolar, 36)
	require.Len(t, res.WithoutSolar, 36)

	first := res.WithSolar[0]
	assert.Equal(t, 5.0, first.BatteryKWh)
	require.NotNil(t, first.SolarKW)
	assert.Equal(t, 5.0, *first.SolarKW)
	assert.Equal(t, 10000.0, first.AnnualConsumptionKWh)
	assert.Equal(t, 2500.0+5*1000, first.InvestmentCost)

	assert.Equal(t, 15000.0, res.WithSolar[1].AnnualConsumptionKWh)
	assert.Equal(t, 7.0, *res.WithSolar[4].SolarKW)
	assert.Equal(t, 20.0, res.WithSolar[12].BatteryKWh)
	assert.Equal(t, 100.0, res.WithSolar[35].BatteryKWh)

	for _, row := range res.WithoutSolar {
		assert.Nil(t, row.SolarKW)
	}
	assert.Equal(t, 2500.0, res.WithoutSolar[0].InvestmentCost)
	// Without-solar rows repeat for every solar size of the same triple.
	assert.Equal(t, res.WithoutSolar[0], res.WithoutSolar[4])

	for _, row := range append(res.WithSolar, res.WithoutSolar...) {
		assert.Equal(t, row.TotalSavings-row.InvestmentCost, row.NetSavings)
		assert.Equal(t, model.PaybackPeriod(row.InvestmentCost, row.TotalSavings, 5), row.PaybackYears)
	}

	n, err := testutil.GatherAndCount(reg, "payback_scenarios_total")
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.NotEmpty(t, res.Assumptions)
	assert.Len(t, res.Inputs.Solar, 3)
	assert.Len(t, res.Inputs.Consumption, 4)
}

func TestSweepIsDeterministicAcrossWorkerCounts(t *testing.T) {
	small := func(workers int) func(*config.Config) {
		return func(c *config.Config) {
			c.Sweep.BatterySizesKWh = []float64{5, 20}
			c.Sweep.SolarSizesKW = []float64{5, 10}
			c.Sweep.AnnualConsumptionsKWh = []float64{10000, 30000}
			c.Sweep.Workers = workers
		}
	}
	a, err := newRunner(t, small(1)).Run(context.Background())
	require.NoError(t, err)
	b, err := newRunner(t, small(8)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.WithSolar, b.WithSolar)
	assert.Equal(t, a.WithoutSolar, b.WithoutSolar)
}

func TestSweepReportsAndContinues(t *testing.T) {
	r := newRunner(t, func(c *config.Config) {
		c.Sweep.BatterySizesKWh = []float64{5, 50}
	})
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.WithSolar, 12)
	assert.Len(t, res.WithoutSolar, 12)
	require.Len(t, res.Failures, 24)
	for _, f := range res.Failures {
		assert.Equal(t, 50.0, f.Scenario.BatteryKWh)
		assert.True(t, errors.Is(f.Err, ErrUnknownBatterySize))
		assert.NotEmpty(t, f.Error)
	}
	assert.Equal(t, model.ModeSolar, res.Failures[0].Mode)
	assert.Equal(t, model.ModeNoSolar, res.Failures[1].Mode)
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(t, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRederiveRoundTrip(t *testing.T) {
	r := newRunner(t, func(c *config.Config) {
		c.Sweep.BatterySizesKWh = []float64{20}
	})
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	costs := r.Config().Investment
	for _, row := range append(res.WithSolar, res.WithoutSolar...) {
		again, err := Rederive(row, costs, 5)
		require.NoError(t, err)
		assert.Equal(t, row, again)
	}

	_, err = Rederive(model.ScenarioResult{Scenario: model.Scenario{BatteryKWh: 42}}, costs, 5)
	assert.ErrorIs(t, err, ErrUnknownBatterySize)
}

func TestInvestmentCost(t *testing.T) {
	costs := config.DefaultCosts()

	got, err := InvestmentCost(costs, model.Scenario{BatteryKWh: 100})
	require.NoError(t, err)
	assert.Equal(t, 35000.0, got)

	got, err = InvestmentCost(costs, model.Scenario{BatteryKWh: 20, SolarKW: model.Float(7)})
	require.NoError(t, err)
	assert.Equal(t, 8000.0+7000, got)

	_, err = InvestmentCost(costs, model.Scenario{BatteryKWh: 1})
	assert.ErrorIs(t, err, ErrUnknownBatterySize)
}

func TestRunSingle(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()

	t.Run("fixed hours", func(t *testing.T) {
		sc := model.Scenario{BatteryKWh: 20, SolarKW: model.Float(5), AnnualConsumptionKWh: 8760}
		out, err := r.RunSingle(ctx, model.ModeNoSolar, sc, constantHours(model.HoursPerYear, 0.10, 1), dispatch.Options{RecordLedger: true})
		require.NoError(t, err)
		assert.Nil(t, out.Result.SolarKW)
		assert.Equal(t, 8000.0, out.Result.InvestmentCost)
		assert.InDelta(t, 439.7, out.Savings.TotalSavings, 1e-6)
		assert.InDelta(t, 8000/(439.7/5), out.Result.PaybackYears, 1e-6)
		assert.Len(t, out.Dispatch.Ledger, model.HoursPerYear)
	})

	t.Run("generated hours", func(t *testing.T) {
		sc := model.Scenario{BatteryKWh: 5, SolarKW: model.Float(7), AnnualConsumptionKWh: 15000}
		a, err := r.RunSingle(ctx, model.ModeSolar, sc, nil, dispatch.Options{})
		require.NoError(t, err)
		b, err := r.RunSingle(ctx, model.ModeSolar, sc, nil, dispatch.Options{})
		require.NoError(t, err)
		assert.Equal(t, a.Savings, b.Savings)
		assert.Equal(t, 2500.0+7000, a.Result.InvestmentCost)
		assert.Positive(t, a.Savings.SellingRevenue)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := r.RunSingle(ctx, model.ModeSolar, model.Scenario{BatteryKWh: 5}, nil, dispatch.Options{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		_, err = r.RunSingle(ctx, model.Mode("wind"), model.Scenario{BatteryKWh: 5}, nil, dispatch.Options{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		_, err = r.RunSingle(ctx, model.ModeNoSolar, model.Scenario{BatteryKWh: 6}, nil, dispatch.Options{})
		assert.ErrorIs(t, err, ErrUnknownBatterySize)
		_, err = r.RunSingle(ctx, model.ModeNoSolar, model.Scenario{BatteryKWh: 5}, constantHours(10, 0.1, 1), dispatch.Options{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestRunSingleMatchesSweepRows(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()
	res, err := r.Run(ctx)
	require.NoError(t, err)

	rows := map[string]model.ScenarioResult{}
	for _, row := range res.WithSolar {
		rows[fmt.Sprintf("%g/%g/%g", row.BatteryKWh, *row.SolarKW, row.AnnualConsumptionKWh)] = row
	}

	for _, solarKW := range []float64{5, 7, 10} {
		t.Run(fmt.Sprintf("%gkW", solarKW), func(t *testing.T) {
			sc := model.Scenario{BatteryKWh: 20, SolarKW: model.Float(solarKW), AnnualConsumptionKWh: 15000}
			single, err := r.RunSingle(ctx, model.ModeSolar, sc, nil, dispatch.Options{})
			require.NoError(t, err)

			want, ok := rows[fmt.Sprintf("20/%g/15000", solarKW)]
			require.True(t, ok)
			assert.Equal(t, want.TotalSavings, single.Result.TotalSavings)
			assert.Equal(t, want.PaybackYears, single.Result.PaybackYears)
		})
	}

	t.Run("no solar", func(t *testing.T) {
		sc := model.Scenario{BatteryKWh: 100, AnnualConsumptionKWh: 30000}
		single, err := r.RunSingle(ctx, model.ModeNoSolar, sc, nil, dispatch.Options{})
		require.NoError(t, err)
		for _, row := range res.WithoutSolar {
			if row.BatteryKWh == 100 && row.AnnualConsumptionKWh == 30000 {
				assert.Equal(t, row.TotalSavings, single.Result.TotalSavings)
			}
		}
	})
}

func TestRunSingleRecordsUnknownBatteryFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	r, err := NewRunner(config.Default(), nil, rec)
	require.NoError(t, err)

	_, err = r.RunSingle(context.Background(), model.ModeNoSolar, model.Scenario{BatteryKWh: 6, AnnualConsumptionKWh: 10000}, nil, dispatch.Options{})
	require.ErrorIs(t, err, ErrUnknownBatterySize)

	expected := `
# HELP payback_scenarios_total Number of evaluated scenarios by dispatch mode and outcome
# TYPE payback_scenarios_total counter
payback_scenarios_total{mode="no_solar",outcome="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "payback_scenarios_total"))
}

func TestAssumptions(t *testing.T) {
	as := Assumptions(config.Default())
	byName := map[string]string{}
	for _, a := range as {
		byName[a.Name] = a.Value
	}
	assert.Equal(t, "0.0871", byName["Transmission cost avoided"])
	assert.Equal(t, "8000", byName["Battery cost 20 kWh"])
	assert.Equal(t, "5", byName["Operating years"])
	assert.Equal(t, "false", byName["Efficiency applied in dispatch"])
	assert.Equal(t, "00:00-06:00", byName["Off-peak charging window"])
}

func TestInputsSeries(t *testing.T) {
	r := newRunner(t, nil)
	in := r.Inputs()

	hours, err := in.Series(model.Float(7), 20000)
	require.NoError(t, err)
	assert.True(t, hours.HasSolar())

	_, err = in.Series(model.Float(8), 20000)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = in.Series(nil, 12345)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
