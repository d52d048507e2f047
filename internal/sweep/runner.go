// Package sweep evaluates the cross product of battery sizes, solar sizes
// and consumption levels, pricing every dispatch run into a payback row.
package sweep

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"battery-payback/internal/config"
	"battery-payback/internal/dispatch"
	"battery-payback/internal/logger"
	"battery-payback/internal/metrics"
	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

// Failure is a scenario that could not be evaluated. The sweep records it
// and continues with the remaining scenarios.
type Failure struct {
	Mode     model.Mode     `json:"mode"`
	Scenario model.Scenario `json:"scenario"`
	Error    string         `json:"error"`
	Err      error          `json:"-"`
}

// Result is the outcome of a whole sweep. Row order is battery-major, then
// solar size, then consumption level.
type Result struct {
	WithSolar    []model.ScenarioResult `json:"with_solar"`
	WithoutSolar []model.ScenarioResult `json:"without_solar"`
	Failures     []Failure              `json:"failures,omitempty"`
	Inputs       *Inputs                `json:"-"`
	Assumptions  []Assumption           `json:"assumptions"`
}

// Runner drives sweeps and single scenarios from one configuration.
type Runner struct {
	cfg    *config.Config
	engine *dispatch.Engine
	gen    *profile.Generator
	log    logger.Logger
	rec    *metrics.Recorder
}

// NewRunner validates cfg and prepares the engine and profile generator.
// log and rec may be nil.
func NewRunner(cfg *config.Config, log logger.Logger, rec *metrics.Recorder) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := dispatch.New(cfg.DispatchParams())
	if err != nil {
		return nil, err
	}
	gen, err := profile.NewGenerator(cfg.Profile.Tables)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, engine: engine, gen: gen, log: logger.OrNop(log), rec: rec}, nil
}

func (r *Runner) Config() *config.Config { return r.cfg }

func (r *Runner) Generator() *profile.Generator { return r.gen }

// Inputs generates the hourly columns for the configured sweep axes.
func (r *Runner) Inputs() *Inputs {
	s := r.cfg.Sweep
	return GenerateInputs(r.gen, r.cfg.Profile.Seed, s.SolarSizesKW, s.AnnualConsumptionsKWh)
}

// Run generates inputs and evaluates the configured sweep.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	return r.Evaluate(ctx, r.Inputs())
}

type triple struct {
	battery, solar, consumption float64
}

type slot struct {
	withSolar, withoutSolar       model.ScenarioResult
	hasWithSolar, hasWithoutSolar bool
	failures                      []Failure
}

// Evaluate runs every (battery, solar, consumption) triple of the configured
// axes against in. Scenarios run concurrently on at most Sweep.Workers
// goroutines; rows are assembled in sweep order. Only context cancellation
// aborts the sweep.
func (r *Runner) Evaluate(ctx context.Context, in *Inputs) (*Result, error) {
	s := r.cfg.Sweep
	var triples []triple
	for _, b := range s.BatterySizesKWh {
		for _, kw := range s.SolarSizesKW {
			for _, kwh := range s.AnnualConsumptionsKWh {
				triples = append(triples, triple{battery: b, solar: kw, consumption: kwh})
			}
		}
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r.log.Infof("sweep: %d scenarios on %d workers", len(triples), workers)
	start := time.Now()

	slots := make([]slot, len(triples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tr := range triples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = r.evaluateTriple(in, tr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Inputs: in, Assumptions: Assumptions(r.cfg)}
	for _, sl := range slots {
		if len(sl.failures) > 0 {
			res.Failures = append(res.Failures, sl.failures...)
			for _, f := range sl.failures {
				r.log.Warnf("sweep: %s scenario battery=%g kWh consumption=%g kWh failed: %v",
					f.Mode, f.Scenario.BatteryKWh, f.Scenario.AnnualConsumptionKWh, f.Err)
			}
		}
		if sl.hasWithSolar {
			res.WithSolar = append(res.WithSolar, sl.withSolar)
		}
		if sl.hasWithoutSolar {
			res.WithoutSolar = append(res.WithoutSolar, sl.withoutSolar)
		}
	}
	r.log.Infof("sweep: done in %s (%d with solar, %d without, %d failed)",
		time.Since(start).Round(time.Millisecond), len(res.WithSolar), len(res.WithoutSolar), len(res.Failures))
	return res, nil
}

func (r *Runner) evaluateTriple(in *Inputs, tr triple) slot {
	var sl slot
	solarKW := tr.solar

	with := model.Scenario{BatteryKWh: tr.battery, SolarKW: &solarKW, AnnualConsumptionKWh: tr.consumption}
	if row, err := r.scenario(in, model.ModeSolar, with); err != nil {
		sl.failures = append(sl.failures, newFailure(model.ModeSolar, with, err))
	} else {
		sl.withSolar, sl.hasWithSolar = row, true
	}

	without := model.Scenario{BatteryKWh: tr.battery, AnnualConsumptionKWh: tr.consumption}
	if row, err := r.scenario(in, model.ModeNoSolar, without); err != nil {
		sl.failures = append(sl.failures, newFailure(model.ModeNoSolar, without, err))
	} else {
		sl.withoutSolar, sl.hasWithoutSolar = row, true
	}
	return sl
}

func (r *Runner) scenario(in *Inputs, mode model.Mode, sc model.Scenario) (model.ScenarioResult, error) {
	investment, err := InvestmentCost(r.cfg.Investment, sc)
	if err != nil {
		r.rec.RecordFailure(mode)
		return model.ScenarioResult{}, err
	}
	hours, err := in.Series(sc.SolarKW, sc.AnnualConsumptionKWh)
	if err != nil {
		r.rec.RecordFailure(mode)
		return model.ScenarioResult{}, err
	}
	start := time.Now()
	out, err := r.engine.Run(mode, sc.BatteryKWh, hours, dispatch.Options{})
	r.rec.ObserveDispatch(mode, time.Since(start))
	if err != nil {
		r.rec.RecordFailure(mode)
		return model.ScenarioResult{}, err
	}
	row := Derive(sc, investment, out.Savings.TotalSavings, r.cfg.Simulation.OperatingYears)
	r.rec.RecordScenario(mode, row)
	return row, nil
}

func newFailure(mode model.Mode, sc model.Scenario, err error) Failure {
	return Failure{Mode: mode, Scenario: sc, Error: err.Error(), Err: err}
}

// Single is the outcome of one stand-alone scenario.
type Single struct {
	Result   model.ScenarioResult `json:"result"`
	Savings  model.Savings        `json:"savings"`
	Dispatch *dispatch.Result     `json:"-"`
}

// RunSingle evaluates one scenario in the given mode. When hours is nil the
// hourly year is generated from the configured profile tables and seed.
// In no-solar mode any solar size on sc is ignored.
func (r *Runner) RunSingle(ctx context.Context, mode model.Mode, sc model.Scenario, hours model.HourlySeries, opts dispatch.Options) (*Single, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch mode {
	case model.ModeSolar:
		if sc.SolarKW == nil {
			return nil, fmt.Errorf("%w: solar mode needs a solar size", model.ErrInvalidInput)
		}
	case model.ModeNoSolar:
		sc.SolarKW = nil
	default:
		return nil, fmt.Errorf("%w: unknown dispatch mode %q", model.ErrInvalidInput, mode)
	}

	investment, err := InvestmentCost(r.cfg.Investment, sc)
	if err != nil {
		r.rec.RecordFailure(mode)
		return nil, err
	}
	if hours == nil {
		var solar []float64
		if sc.SolarKW != nil {
			solar = r.gen.SolarFor(r.cfg.Sweep.SolarSizesKW, *sc.SolarKW, r.cfg.Profile.Seed)
		}
		hours, err = profile.Build(r.gen.Prices(), r.gen.Consumption(sc.AnnualConsumptionKWh), solar)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	out, err := r.engine.Run(mode, sc.BatteryKWh, hours, opts)
	r.rec.ObserveDispatch(mode, time.Since(start))
	if err != nil {
		r.rec.RecordFailure(mode)
		return nil, err
	}
	row := Derive(sc, investment, out.Savings.TotalSavings, r.cfg.Simulation.OperatingYears)
	r.rec.RecordScenario(mode, row)
	r.log.Debugw("scenario evaluated", map[string]any{
		"mode":          string(mode),
		"battery_kwh":   sc.BatteryKWh,
		"total_savings": out.Savings.TotalSavings,
	})
	return &Single{Result: row, Savings: out.Savings, Dispatch: out}, nil
}
