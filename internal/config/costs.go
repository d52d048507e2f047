package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// InvestmentConfig prices the hardware of a scenario.
type InvestmentConfig struct {
	// Optional: load the cost table from a separate YAML file.
	// If both CostsFile and inline values are provided, inline values win.
	CostsFile      string        `yaml:"costs_file,omitempty"`
	SolarCostPerKW float64       `yaml:"solar_cost_per_kw"`
	BatteryCosts   []BatteryCost `yaml:"battery_costs"`
}

// BatteryCost is the installed cost of one battery size.
type BatteryCost struct {
	CapacityKWh float64 `yaml:"capacity_kwh"`
	Cost        float64 `yaml:"cost"`
}

// DefaultCosts is the reference cost table: 500/kWh for 5 kWh, 400/kWh for
// 20 kWh, 350/kWh for 100 kWh, and 1000 per kW of solar.
func DefaultCosts() InvestmentConfig {
	return InvestmentConfig{
		SolarCostPerKW: 1000,
		BatteryCosts: []BatteryCost{
			{CapacityKWh: 5, Cost: 500 * 5},
			{CapacityKWh: 20, Cost: 400 * 20},
			{CapacityKWh: 100, Cost: 350 * 100},
		},
	}
}

// BatteryCost looks up the installed cost of a battery size.
func (i InvestmentConfig) BatteryCost(capacityKWh float64) (float64, bool) {
	for _, bc := range i.BatteryCosts {
		if bc.CapacityKWh == capacityKWh {
			return bc.Cost, true
		}
	}
	return 0, false
}

func (i InvestmentConfig) Validate() error {
	if i.SolarCostPerKW < 0 {
		return errors.New("solar_cost_per_kw must be >= 0")
	}
	seen := map[float64]bool{}
	for _, bc := range i.BatteryCosts {
		if bc.CapacityKWh < 0 || bc.Cost < 0 {
			return fmt.Errorf("battery cost entry %g kWh: capacity and cost must be >= 0", bc.CapacityKWh)
		}
		if seen[bc.CapacityKWh] {
			return fmt.Errorf("battery cost entry %g kWh is listed twice", bc.CapacityKWh)
		}
		seen[bc.CapacityKWh] = true
	}
	return nil
}

type costsFileWrapper struct {
	Investment InvestmentConfig `yaml:"investment"`
}

// LoadCostsFile reads a cost table of the form
//
//	investment:
//	  solar_cost_per_kw: 1000
//	  battery_costs:
//	    - {capacity_kwh: 5, cost: 2500}
func LoadCostsFile(path string) (InvestmentConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return InvestmentConfig{}, err
	}
	var w costsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return InvestmentConfig{}, err
	}
	return w.Investment, nil
}

// MergeCosts overlays override onto base. Battery entries are matched by
// capacity; override entries replace or extend the base table.
func MergeCosts(base, override InvestmentConfig) InvestmentConfig {
	out := InvestmentConfig{
		CostsFile:      override.CostsFile,
		SolarCostPerKW: base.SolarCostPerKW,
		BatteryCosts:   append([]BatteryCost(nil), base.BatteryCosts...),
	}
	if override.SolarCostPerKW != 0 {
		out.SolarCostPerKW = override.SolarCostPerKW
	}
	for _, bc := range override.BatteryCosts {
		replaced := false
		for i := range out.BatteryCosts {
			if out.BatteryCosts[i].CapacityKWh == bc.CapacityKWh {
				out.BatteryCosts[i] = bc
				replaced = true
				break
			}
		}
		if !replaced {
			out.BatteryCosts = append(out.BatteryCosts, bc)
		}
	}
	return out
}

// Write dumps c as YAML to path, creating parent directories.
func Write(path string, c *Config) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
