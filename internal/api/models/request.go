package models

import "battery-payback/internal/model"

// DispatchRequest represents a request to simulate one scenario
type DispatchRequest struct {
	BatteryKWh           *float64 `json:"battery_kwh" binding:"required,gte=0"`
	SolarKW              *float64 `json:"solar_kw,omitempty" binding:"omitempty,gte=0"`
	AnnualConsumptionKWh float64  `json:"annual_consumption_kwh" binding:"gte=0"`

	// Mode is "solar" or "no_solar". Empty picks solar when solar_kw is set.
	Mode          string `json:"mode,omitempty"`
	IncludeLedger bool   `json:"include_ledger,omitempty"`

	// Hours replaces the generated year when set.
	Hours model.HourlySeries `json:"hours,omitempty"`
}

// SweepRequest represents a request to run a scenario sweep.
// Empty axes fall back to the server configuration.
type SweepRequest struct {
	BatterySizesKWh       []float64 `json:"battery_sizes_kwh,omitempty" binding:"omitempty,dive,gte=0"`
	SolarSizesKW          []float64 `json:"solar_sizes_kw,omitempty" binding:"omitempty,dive,gte=0"`
	AnnualConsumptionsKWh []float64 `json:"annual_consumptions_kwh,omitempty" binding:"omitempty,dive,gte=0"`
	Seed                  *uint64   `json:"seed,omitempty"`
}
