package sweep

import (
	"fmt"
	"strconv"

	"battery-payback/internal/config"
)

// Assumption is one named constant reported next to the result tables.
type Assumption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Assumptions lists the constants a sweep under cfg depends on.
func Assumptions(cfg *config.Config) []Assumption {
	s := cfg.Simulation
	out := []Assumption{
		{Name: "Transmission cost avoided", Value: num(s.TransmissionCostPerKWh), Unit: "per kWh"},
		{Name: "Selling price", Value: num(s.SellingPricePerKWh), Unit: "per kWh"},
		{Name: "Battery efficiency", Value: num(s.BatteryEfficiency), Unit: "round trip"},
		{Name: "Efficiency applied in dispatch", Value: strconv.FormatBool(s.ApplyEfficiency)},
		{Name: "Battery degradation rate", Value: num(s.BatteryDegradationRate), Unit: "per year, not modelled"},
		{Name: "Operating years", Value: num(s.OperatingYears), Unit: "years"},
		{Name: "Hours per year", Value: strconv.Itoa(s.HoursPerYear), Unit: "hours"},
		{Name: "Off-peak charging window", Value: s.OffPeak.Start + "-" + s.OffPeak.End},
		{Name: "Peak discharge window", Value: s.Peak.Start + "-" + s.Peak.End},
		{Name: "Solar panel cost", Value: num(cfg.Investment.SolarCostPerKW), Unit: "per kW"},
	}
	for _, bc := range cfg.Investment.BatteryCosts {
		out = append(out, Assumption{
			Name:  fmt.Sprintf("Battery cost %s kWh", num(bc.CapacityKWh)),
			Value: num(bc.Cost),
		})
	}
	out = append(out, Assumption{Name: "Profile seed", Value: strconv.FormatUint(cfg.Profile.Seed, 10)})
	for _, season := range cfg.Profile.Tables.Seasons {
		out = append(out, Assumption{
			Name:  fmt.Sprintf("Base price %s", season.Name),
			Value: num(season.BasePrice),
			Unit:  "per kWh",
		})
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
