package sweep

import (
	"fmt"

	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

// Profile is one generated hourly column and the size it was generated for
// (kW of solar or kWh of annual consumption).
type Profile struct {
	Size   float64   `json:"size"`
	Values []float64 `json:"values"`
}

// Inputs holds every hourly column a sweep reads. Columns are generated once
// and shared read-only by all scenarios.
type Inputs struct {
	Prices      []float64 `json:"prices"`
	Solar       []Profile `json:"solar"`
	Consumption []Profile `json:"consumption"`
}

// GenerateInputs builds prices once, one solar column per solar size and one
// consumption column per consumption level. Solar columns draw from a single
// source seeded with seed, in the order of solarKW; profile.SolarFor replays
// the same stream for a single size.
func GenerateInputs(gen *profile.Generator, seed uint64, solarKW, consumptionKWh []float64) *Inputs {
	in := &Inputs{Prices: gen.Prices()}
	src := profile.NewSource(seed)
	for _, kw := range solarKW {
		in.Solar = append(in.Solar, Profile{Size: kw, Values: gen.Solar(kw, src)})
	}
	for _, kwh := range consumptionKWh {
		in.Consumption = append(in.Consumption, Profile{Size: kwh, Values: gen.Consumption(kwh)})
	}
	return in
}

// Series assembles the hourly records for one scenario. A nil solarKW
// yields a series without solar production.
func (in *Inputs) Series(solarKW *float64, consumptionKWh float64) (model.HourlySeries, error) {
	cons, ok := lookup(in.Consumption, consumptionKWh)
	if !ok {
		return nil, fmt.Errorf("%w: no consumption profile for %g kWh", model.ErrInvalidInput, consumptionKWh)
	}
	var solar []float64
	if solarKW != nil {
		solar, ok = lookup(in.Solar, *solarKW)
		if !ok {
			return nil, fmt.Errorf("%w: no solar profile for %g kW", model.ErrInvalidInput, *solarKW)
		}
	}
	return profile.Build(in.Prices, cons, solar)
}

func lookup(ps []Profile, size float64) ([]float64, bool) {
	for _, p := range ps {
		if p.Size == size {
			return p.Values, true
		}
	}
	return nil, false
}
