package model

import "math"

// Mode selects which dispatch policy a run uses.
type Mode string

const (
	ModeSolar   Mode = "solar"
	ModeNoSolar Mode = "no_solar"
)

// Savings holds the running totals of a dispatch run.
//
// TotalSavings is accumulated per hour and then rolled up with the other
// three components once the year is done, so it intentionally contains them
// twice in solar mode.
type Savings struct {
	TotalSavings            float64 `json:"total_savings"`
	ElectricityCostSavings  float64 `json:"electricity_cost_savings"`
	TransmissionCostSavings float64 `json:"transmission_cost_savings"`
	SellingRevenue          float64 `json:"selling_revenue"`
}

// Scenario identifies one point of the sweep.
type Scenario struct {
	BatteryKWh           float64  `json:"battery_kwh"`
	SolarKW              *float64 `json:"solar_kw,omitempty"`
	AnnualConsumptionKWh float64  `json:"annual_consumption_kwh"`
}

// ScenarioResult is one row of the result tables.
type ScenarioResult struct {
	Scenario
	InvestmentCost float64 `json:"investment_cost"`
	TotalSavings   float64 `json:"total_savings"`
	NetSavings     float64 `json:"net_savings"`
	// PaybackYears is +Inf when the run never pays back.
	PaybackYears float64 `json:"-"`
}

// PaybackPeriod returns investment / (totalSavings / operatingYears).
// Annualized savings <= 0 (or a non-positive operating period) yields +Inf.
func PaybackPeriod(investment, totalSavings, operatingYears float64) float64 {
	if operatingYears <= 0 {
		return math.Inf(1)
	}
	annual := totalSavings / operatingYears
	if annual <= 0 || math.IsNaN(annual) {
		return math.Inf(1)
	}
	return investment / annual
}

// PaysBack reports whether the payback period is finite.
func (r ScenarioResult) PaysBack() bool {
	return !math.IsInf(r.PaybackYears, 1)
}
