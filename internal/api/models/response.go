package models

import (
	"time"

	"battery-payback/internal/analysis"
	"battery-payback/internal/dispatch"
	"battery-payback/internal/model"
	"battery-payback/internal/sweep"
)

// ScenarioRow is a result row as served over the API
type ScenarioRow struct {
	model.Scenario
	InvestmentCost float64 `json:"investment_cost"`
	TotalSavings   float64 `json:"total_savings"`
	NetSavings     float64 `json:"net_savings"`
	// PaybackYears is null when the scenario never pays back.
	PaybackYears *float64 `json:"payback_years"`
	PaysBack     bool     `json:"pays_back"`
}

func NewScenarioRow(r model.ScenarioResult) ScenarioRow {
	row := ScenarioRow{
		Scenario:       r.Scenario,
		InvestmentCost: r.InvestmentCost,
		TotalSavings:   r.TotalSavings,
		NetSavings:     r.NetSavings,
		PaysBack:       r.PaysBack(),
	}
	if row.PaysBack {
		row.PaybackYears = model.Float(r.PaybackYears)
	}
	return row
}

func NewScenarioRows(rs []model.ScenarioResult) []ScenarioRow {
	out := make([]ScenarioRow, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewScenarioRow(r))
	}
	return out
}

// DispatchResponse represents the response from a single scenario run
type DispatchResponse struct {
	Mode           model.Mode           `json:"mode"`
	Result         ScenarioRow          `json:"result"`
	Savings        model.Savings        `json:"savings"`
	FinalChargeKWh float64              `json:"final_charge_kwh"`
	Ledger         []dispatch.LedgerRow `json:"ledger,omitempty"`
}

// SweepResponse represents a stored sweep
type SweepResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is omitted when results never expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	WithSolar    []ScenarioRow   `json:"with_solar"`
	WithoutSolar []ScenarioRow   `json:"without_solar"`
	Failures     []sweep.Failure `json:"failures,omitempty"`

	BestWithSolar    *ScenarioRow `json:"best_with_solar,omitempty"`
	BestWithoutSolar *ScenarioRow `json:"best_without_solar,omitempty"`
}

// AssumptionsResponse lists the configured constants and the price profile
type AssumptionsResponse struct {
	Assumptions    []sweep.Assumption      `json:"assumptions"`
	PricePotential analysis.PricePotential `json:"price_potential"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
