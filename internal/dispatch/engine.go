package dispatch

import (
	"errors"
	"fmt"
	"math"

	"battery-payback/internal/model"
)

// Params are the fixed economic and physical constants of a dispatch run.
// Units:
// - TransmissionRate, SellPrice: currency per kWh
// - Efficiency: round-trip, (0, 1]
// - DegradationRate: fraction per year, [0, 1)
type Params struct {
	TransmissionRate float64
	SellPrice        float64
	Efficiency       float64
	DegradationRate  float64

	// ApplyEfficiency scales battery output by Efficiency on discharge.
	// Off by default: the reference model carries the constant without
	// applying it.
	ApplyEfficiency bool

	// HoursPerYear is the required series length; 0 means model.HoursPerYear.
	HoursPerYear int

	OffPeak Window
	Peak    Window
}

// DefaultParams mirrors the reference assumptions.
func DefaultParams() Params {
	return Params{
		TransmissionRate: 0.0871,
		SellPrice:        0.10,
		Efficiency:       0.90,
		DegradationRate:  0.02,
		HoursPerYear:     model.HoursPerYear,
		OffPeak:          Window{Start: "00:00", End: "06:00"},
		Peak:             Window{Start: "18:00", End: "22:00"},
	}
}

func (p Params) Validate() error {
	if math.IsNaN(p.TransmissionRate) || math.IsInf(p.TransmissionRate, 0) {
		return errors.New("transmission rate must be finite")
	}
	if math.IsNaN(p.SellPrice) || math.IsInf(p.SellPrice, 0) {
		return errors.New("sell price must be finite")
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return errors.New("efficiency must be in (0, 1]")
	}
	if p.DegradationRate < 0 || p.DegradationRate >= 1 {
		return errors.New("degradation rate must be in [0, 1)")
	}
	if p.HoursPerYear < 0 {
		return errors.New("hours per year must be >= 0")
	}
	if _, err := p.OffPeak.parse(); err != nil {
		return fmt.Errorf("off-peak window: %w", err)
	}
	if _, err := p.Peak.parse(); err != nil {
		return fmt.Errorf("peak window: %w", err)
	}
	return nil
}

// Options tune what a run records besides the savings totals.
type Options struct {
	RecordLedger bool
}

// Result is the outcome of one dispatch run.
type Result struct {
	Mode        model.Mode
	CapacityKWh float64
	Savings     model.Savings
	FinalCharge float64
	Ledger      []LedgerRow
}

// Engine runs hourly dispatch simulations. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	params  Params
	offPeak minuteWindow
	peak    minuteWindow
}

func New(p Params) (*Engine, error) {
	if p.HoursPerYear == 0 {
		p.HoursPerYear = model.HoursPerYear
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch params: %w", err)
	}
	off, err := p.OffPeak.parse()
	if err != nil {
		return nil, fmt.Errorf("dispatch params: off-peak window: %w", err)
	}
	peak, err := p.Peak.parse()
	if err != nil {
		return nil, fmt.Errorf("dispatch params: peak window: %w", err)
	}
	return &Engine{params: p, offPeak: off, peak: peak}, nil
}

// Params returns the engine's constants.
func (e *Engine) Params() Params { return e.params }

// RunWithSolar simulates a year with rooftop solar.
func (e *Engine) RunWithSolar(capacity float64, hours model.HourlySeries) (*Result, error) {
	return e.Run(model.ModeSolar, capacity, hours, Options{})
}

// RunWithoutSolar simulates a year of time-of-day arbitrage without solar.
func (e *Engine) RunWithoutSolar(capacity float64, hours model.HourlySeries) (*Result, error) {
	return e.Run(model.ModeNoSolar, capacity, hours, Options{})
}

// Run executes a dispatch run over one year of hourly records. Hours are
// processed strictly in order since the battery charge carries forward.
func (e *Engine) Run(mode model.Mode, capacity float64, hours model.HourlySeries, opts Options) (*Result, error) {
	pol, err := e.policyFor(mode)
	if err != nil {
		return nil, err
	}
	if err := hours.Validate(e.params.HoursPerYear, mode == model.ModeSolar); err != nil {
		return nil, err
	}
	batt, err := model.NewBatteryState(capacity)
	if err != nil {
		return nil, err
	}

	var acc model.Savings
	var ledger []LedgerRow
	if opts.RecordLedger {
		ledger = make([]LedgerRow, 0, len(hours))
	}

	for _, h := range hours {
		start := batt.Charge
		out := pol.step(h, batt, &acc)
		if !batt.Within() {
			return nil, fmt.Errorf("hour %d: battery charge %g outside [0, %g]", h.Hour, batt.Charge, batt.Capacity)
		}
		if opts.RecordLedger {
			ledger = append(ledger, newLedgerRow(h, start, batt.Charge, out, acc.TotalSavings))
		}
	}
	pol.finish(&acc)

	return &Result{
		Mode:        mode,
		CapacityKWh: capacity,
		Savings:     acc,
		FinalCharge: batt.Charge,
		Ledger:      ledger,
	}, nil
}

func (e *Engine) policyFor(mode model.Mode) (policy, error) {
	switch mode {
	case model.ModeSolar:
		return solarPolicy{params: e.params, discharge: e.discharge}, nil
	case model.ModeNoSolar:
		return timeOfDayPolicy{offPeak: e.offPeak, peak: e.peak, discharge: e.discharge}, nil
	default:
		return nil, fmt.Errorf("%w: unknown dispatch mode %q", model.ErrInvalidInput, mode)
	}
}

// discharge serves up to need kWh from the battery and returns what reached
// the load.
func (e *Engine) discharge(b *model.BatteryState, need float64) float64 {
	if !e.params.ApplyEfficiency {
		return b.Draw(need)
	}
	eff := e.params.Efficiency
	return b.Draw(need/eff) * eff
}
