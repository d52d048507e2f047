package sweep

import (
	"errors"
	"fmt"

	"battery-payback/internal/config"
	"battery-payback/internal/model"
)

// ErrUnknownBatterySize is returned when a battery size has no entry in the
// cost table.
var ErrUnknownBatterySize = errors.New("battery size missing from cost table")

// InvestmentCost prices a scenario: the battery's table cost plus solar cost
// per kW when the scenario includes solar.
func InvestmentCost(costs config.InvestmentConfig, sc model.Scenario) (float64, error) {
	cost, ok := costs.BatteryCost(sc.BatteryKWh)
	if !ok {
		return 0, fmt.Errorf("%w: %g kWh", ErrUnknownBatterySize, sc.BatteryKWh)
	}
	if sc.SolarKW != nil {
		cost += costs.SolarCostPerKW * *sc.SolarKW
	}
	return cost, nil
}

// Derive builds a result row from a scenario, its investment and the total
// savings of its dispatch run.
func Derive(sc model.Scenario, investment, totalSavings, operatingYears float64) model.ScenarioResult {
	return model.ScenarioResult{
		Scenario:       sc,
		InvestmentCost: investment,
		TotalSavings:   totalSavings,
		NetSavings:     totalSavings - investment,
		PaybackYears:   model.PaybackPeriod(investment, totalSavings, operatingYears),
	}
}

// Rederive recomputes investment, net savings and payback of a stored row
// from its scenario and total savings alone.
func Rederive(row model.ScenarioResult, costs config.InvestmentConfig, operatingYears float64) (model.ScenarioResult, error) {
	investment, err := InvestmentCost(costs, row.Scenario)
	if err != nil {
		return model.ScenarioResult{}, err
	}
	return Derive(row.Scenario, investment, row.TotalSavings, operatingYears), nil
}
