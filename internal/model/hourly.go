package model

import (
	"errors"
	"fmt"
	"math"
)

// HoursPerYear is the length of a non-leap simulation year (365 * 24).
const HoursPerYear = 8760

// ErrInvalidInput is wrapped by every precondition failure. Callers can test
// for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// HourlyRecord is one hour of the synthetic year.
// Units:
// - Price: currency per kWh
// - Consumption, Solar: kWh for the hour
//
// Solar is nil when the series was generated without a solar system.
type HourlyRecord struct {
	Hour        int      `json:"hour"`
	Price       float64  `json:"price"`
	Consumption float64  `json:"consumption_kwh"`
	Solar       *float64 `json:"solar_kwh,omitempty"`
}

// SolarKWh returns the solar production for the hour, or 0 when absent.
func (r HourlyRecord) SolarKWh() float64 {
	if r.Solar == nil {
		return 0
	}
	return *r.Solar
}

// HourOfDay is the hour index folded onto a 24h clock.
func (r HourlyRecord) HourOfDay() int {
	return r.Hour % 24
}

// HourlySeries is one year of chronologically ordered hourly records.
type HourlySeries []HourlyRecord

// Validate checks the series against the shape a dispatch run expects.
// hoursPerYear <= 0 means HoursPerYear.
func (s HourlySeries) Validate(hoursPerYear int, requireSolar bool) error {
	if hoursPerYear <= 0 {
		hoursPerYear = HoursPerYear
	}
	if len(s) != hoursPerYear {
		return fmt.Errorf("%w: expected %d hourly records, got %d", ErrInvalidInput, hoursPerYear, len(s))
	}
	for i, r := range s {
		if r.Hour != i+1 {
			return fmt.Errorf("%w: record %d has hour %d, want %d", ErrInvalidInput, i, r.Hour, i+1)
		}
		if !finite(r.Price) {
			return fmt.Errorf("%w: hour %d price is not finite", ErrInvalidInput, r.Hour)
		}
		if !finite(r.Consumption) || r.Consumption < 0 {
			return fmt.Errorf("%w: hour %d consumption must be finite and >= 0", ErrInvalidInput, r.Hour)
		}
		if r.Solar == nil {
			if requireSolar {
				return fmt.Errorf("%w: hour %d has no solar production", ErrInvalidInput, r.Hour)
			}
			continue
		}
		if !finite(*r.Solar) || *r.Solar < 0 {
			return fmt.Errorf("%w: hour %d solar production must be finite and >= 0", ErrInvalidInput, r.Hour)
		}
	}
	return nil
}

// HasSolar reports whether every record carries a solar value.
func (s HourlySeries) HasSolar() bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r.Solar == nil {
			return false
		}
	}
	return true
}

// Prices returns the price column.
func (s HourlySeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Price
	}
	return out
}

// Float returns a pointer to v. Handy for optional fields.
func Float(v float64) *float64 { return &v }

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
