// Package profile generates the synthetic hourly year consumed by the
// dispatch engine: electricity prices, solar production and household
// consumption.
package profile

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"battery-payback/internal/model"
)

// Generator turns the season tables into hourly series. It is stateless;
// randomness comes from the rand.Source handed to Solar.
type Generator struct {
	tables Tables
}

func NewGenerator(t Tables) (*Generator, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("profile tables: %w", err)
	}
	return &Generator{tables: t}, nil
}

// NewSource returns a deterministic random source for the given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

func (g *Generator) Tables() Tables { return g.tables }

// Prices returns one price per hour. The hour of day restarts with every
// season; daylight hours are cheaper by the season's daily variation.
func (g *Generator) Prices() []float64 {
	n := g.tables.hoursPerYear()
	out := make([]float64, 0, n)
	for _, s := range g.tables.Seasons {
		for hour := 0; hour < s.Hours; hour++ {
			if g.tables.Daylight.contains(hour % 24) {
				out = append(out, s.BasePrice-s.DailyVariation)
			} else {
				out = append(out, s.BasePrice+s.DailyVariation)
			}
		}
	}
	return truncate(out, n)
}

// Solar returns the hourly production (kWh) of a capacityKW system. Each
// daylight hour yields the season's average output scaled by a uniform draw
// in [-variability, +variability].
func (g *Generator) Solar(capacityKW float64, src rand.Source) []float64 {
	n := g.tables.hoursPerYear()
	daylight := float64(g.tables.Daylight.length())
	out := make([]float64, 0, n)
	for _, s := range g.tables.Seasons {
		noise := distuv.Uniform{Min: -s.SolarVariability, Max: s.SolarVariability, Src: src}
		hourly := capacityKW * s.SolarAvgHours / daylight
		for hour := 0; hour < s.Hours; hour++ {
			if g.tables.Daylight.contains(hour % 24) {
				out = append(out, hourly*(1+noise.Rand()))
			} else {
				out = append(out, 0)
			}
		}
	}
	return truncate(out, n)
}

// SolarFor replays a sweep's solar stream: sizes are drawn in order from one
// source seeded with seed and the column of the first size equal to
// capacityKW is returned. A capacity missing from sizes is drawn after them.
func (g *Generator) SolarFor(sizes []float64, capacityKW float64, seed uint64) []float64 {
	src := NewSource(seed)
	for _, kw := range sizes {
		col := g.Solar(kw, src)
		if kw == capacityKW {
			return col
		}
	}
	return g.Solar(capacityKW, src)
}

// Consumption spreads annualKWh over the year. Each season gets its share;
// whole days follow the morning/evening/off-peak pattern of the season's
// hourly average. Hours left over after the last whole day are padded with
// the last season's hourly average.
func (g *Generator) Consumption(annualKWh float64) []float64 {
	t := g.tables
	n := t.hoursPerYear()
	out := make([]float64, 0, n)

	avg := 0.0
	for _, s := range t.Seasons {
		avg = annualKWh * s.ConsumptionShare / float64(s.Hours)
		for day := 0; day < s.Hours/24; day++ {
			for hour := 0; hour < 24; hour++ {
				switch {
				case t.Morning.contains(hour):
					out = append(out, avg*t.MorningShare)
				case t.Evening.contains(hour):
					out = append(out, avg*t.EveningShare)
				default:
					out = append(out, avg*t.OffPeakShare)
				}
			}
		}
	}
	for len(out) < n {
		out = append(out, avg)
	}
	return truncate(out, n)
}

// Build zips the columns into an hourly series. solar may be nil for a
// series without solar production.
func Build(prices, consumption, solar []float64) (model.HourlySeries, error) {
	if len(prices) != len(consumption) {
		return nil, fmt.Errorf("%w: %d prices vs %d consumption values", model.ErrInvalidInput, len(prices), len(consumption))
	}
	if solar != nil && len(solar) != len(prices) {
		return nil, fmt.Errorf("%w: %d prices vs %d solar values", model.ErrInvalidInput, len(prices), len(solar))
	}
	out := make(model.HourlySeries, len(prices))
	for i := range prices {
		out[i] = model.HourlyRecord{
			Hour:        i + 1,
			Price:       prices[i],
			Consumption: consumption[i],
		}
		if solar != nil {
			out[i].Solar = model.Float(solar[i])
		}
	}
	return out, nil
}

func truncate(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
