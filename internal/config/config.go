package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"battery-payback/internal/dispatch"
	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

// EnvPrefix prefixes environment overrides, e.g.
// PAYBACK_SIMULATION__OPERATING_YEARS=10.
const EnvPrefix = "PAYBACK_"

// Config is the on-disk configuration shape (YAML or JSON).
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Investment InvestmentConfig `yaml:"investment"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Profile    ProfileConfig    `yaml:"profile"`
	Server     ServerConfig     `yaml:"server"`
}

// SimulationConfig holds the constants of a dispatch run.
type SimulationConfig struct {
	TransmissionCostPerKWh float64 `yaml:"transmission_cost_per_kwh"`
	SellingPricePerKWh     float64 `yaml:"selling_price_per_kwh"`
	BatteryEfficiency      float64 `yaml:"battery_efficiency"`
	// BatteryDegradationRate is reported with the assumptions; dispatch
	// does not model degradation.
	BatteryDegradationRate float64         `yaml:"battery_degradation_rate"`
	ApplyEfficiency        bool            `yaml:"apply_efficiency"`
	OperatingYears         float64         `yaml:"operating_years"`
	HoursPerYear           int             `yaml:"hours_per_year"`
	OffPeak                dispatch.Window `yaml:"off_peak"`
	Peak                   dispatch.Window `yaml:"peak"`
}

// SweepConfig lists the scenario axes.
type SweepConfig struct {
	BatterySizesKWh       []float64 `yaml:"battery_sizes_kwh"`
	SolarSizesKW          []float64 `yaml:"solar_sizes_kw"`
	AnnualConsumptionsKWh []float64 `yaml:"annual_consumptions_kwh"`
	// Workers bounds scenario parallelism; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

// ProfileConfig configures the synthetic year.
type ProfileConfig struct {
	Seed   uint64         `yaml:"seed"`
	Tables profile.Tables `yaml:"tables"`
}

type ServerConfig struct {
	Port        string        `yaml:"port"`
	Env         string        `yaml:"env"`
	ResultTTL   time.Duration `yaml:"result_ttl"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

// Default returns the reference assumptions.
func Default() *Config {
	p := dispatch.DefaultParams()
	return &Config{
		Simulation: SimulationConfig{
			TransmissionCostPerKWh: p.TransmissionRate,
			SellingPricePerKWh:     p.SellPrice,
			BatteryEfficiency:      p.Efficiency,
			BatteryDegradationRate: p.DegradationRate,
			OperatingYears:         5,
			HoursPerYear:           model.HoursPerYear,
			OffPeak:                p.OffPeak,
			Peak:                   p.Peak,
		},
		Investment: DefaultCosts(),
		Sweep: SweepConfig{
			BatterySizesKWh:       []float64{5, 20, 100},
			SolarSizesKW:          []float64{5, 7, 10},
			AnnualConsumptionsKWh: []float64{10000, 15000, 20000, 30000},
		},
		Profile: ProfileConfig{
			Seed:   1,
			Tables: profile.DefaultTables(),
		},
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			ResultTTL:   time.Hour,
			CORSOrigins: []string{"*"},
		},
	}
}

// Load reads path (YAML or JSON), applies PAYBACK_ environment overrides,
// fills unset fields with defaults, merges the optional costs file and
// validates the result. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}
	c.SetDefaults()

	// Cost table precedence: defaults, then the costs file, then inline values.
	base := DefaultCosts()
	if c.Investment.CostsFile != "" {
		costsPath := c.Investment.CostsFile
		if !filepath.IsAbs(costsPath) && path != "" {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), costsPath)
			if _, err := os.Stat(cand); err == nil {
				costsPath = cand
			}
		}
		loaded, err := LoadCostsFile(costsPath)
		if err != nil {
			return nil, fmt.Errorf("costs file: %w", err)
		}
		base = MergeCosts(base, loaded)
	}
	c.Investment = MergeCosts(base, c.Investment)
	return &c, nil
}

// SetDefaults fills zero-valued fields. Zero is treated as "unset" for every
// numeric field, so a literal 0 cannot be configured for them.
func (c *Config) SetDefaults() {
	d := Default()

	s := &c.Simulation
	if s.TransmissionCostPerKWh == 0 {
		s.TransmissionCostPerKWh = d.Simulation.TransmissionCostPerKWh
	}
	if s.SellingPricePerKWh == 0 {
		s.SellingPricePerKWh = d.Simulation.SellingPricePerKWh
	}
	if s.BatteryEfficiency == 0 {
		s.BatteryEfficiency = d.Simulation.BatteryEfficiency
	}
	if s.BatteryDegradationRate == 0 {
		s.BatteryDegradationRate = d.Simulation.BatteryDegradationRate
	}
	if s.OperatingYears == 0 {
		s.OperatingYears = d.Simulation.OperatingYears
	}
	if s.HoursPerYear == 0 {
		s.HoursPerYear = d.Simulation.HoursPerYear
	}
	if s.OffPeak == (dispatch.Window{}) {
		s.OffPeak = d.Simulation.OffPeak
	}
	if s.Peak == (dispatch.Window{}) {
		s.Peak = d.Simulation.Peak
	}

	if len(c.Sweep.BatterySizesKWh) == 0 {
		c.Sweep.BatterySizesKWh = d.Sweep.BatterySizesKWh
	}
	if len(c.Sweep.SolarSizesKW) == 0 {
		c.Sweep.SolarSizesKW = d.Sweep.SolarSizesKW
	}
	if len(c.Sweep.AnnualConsumptionsKWh) == 0 {
		c.Sweep.AnnualConsumptionsKWh = d.Sweep.AnnualConsumptionsKWh
	}

	if c.Profile.Seed == 0 {
		c.Profile.Seed = d.Profile.Seed
	}
	t := &c.Profile.Tables
	dt := d.Profile.Tables
	if len(t.Seasons) == 0 {
		t.Seasons = dt.Seasons
	}
	if t.Daylight == (profile.HourRange{}) {
		t.Daylight = dt.Daylight
	}
	if t.Morning == (profile.HourRange{}) {
		t.Morning = dt.Morning
	}
	if t.Evening == (profile.HourRange{}) {
		t.Evening = dt.Evening
	}
	if t.MorningShare == 0 && t.EveningShare == 0 && t.OffPeakShare == 0 {
		t.MorningShare, t.EveningShare, t.OffPeakShare = dt.MorningShare, dt.EveningShare, dt.OffPeakShare
	}
	if t.HoursPerYear == 0 {
		t.HoursPerYear = s.HoursPerYear
	}

	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Env == "" {
		c.Server.Env = d.Server.Env
	}
	if c.Server.ResultTTL == 0 {
		c.Server.ResultTTL = d.Server.ResultTTL
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = d.Server.CORSOrigins
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.DispatchParams().Validate(); err != nil {
		return fmt.Errorf("simulation config invalid: %w", err)
	}
	if c.Simulation.OperatingYears <= 0 || math.IsInf(c.Simulation.OperatingYears, 0) {
		return errors.New("simulation.operating_years must be > 0")
	}
	if err := c.Investment.Validate(); err != nil {
		return fmt.Errorf("investment config invalid: %w", err)
	}
	if err := c.Profile.Tables.Validate(); err != nil {
		return fmt.Errorf("profile config invalid: %w", err)
	}
	if c.Profile.Tables.HoursPerYear != c.Simulation.HoursPerYear {
		return fmt.Errorf("profile.tables.hours_per_year (%d) must match simulation.hours_per_year (%d)",
			c.Profile.Tables.HoursPerYear, c.Simulation.HoursPerYear)
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep config invalid: %w", err)
	}
	if c.Server.ResultTTL < 0 {
		return errors.New("server.result_ttl must be >= 0")
	}
	return nil
}

func (s SweepConfig) Validate() error {
	if len(s.BatterySizesKWh) == 0 || len(s.SolarSizesKW) == 0 || len(s.AnnualConsumptionsKWh) == 0 {
		return errors.New("battery, solar and consumption sizes are required")
	}
	for _, axis := range [][]float64{s.BatterySizesKWh, s.SolarSizesKW, s.AnnualConsumptionsKWh} {
		for _, v := range axis {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("sizes must be finite and >= 0, got %g", v)
			}
		}
	}
	if s.Workers < 0 {
		return errors.New("workers must be >= 0")
	}
	return nil
}

// DispatchParams converts the simulation section into engine parameters.
func (c *Config) DispatchParams() dispatch.Params {
	s := c.Simulation
	return dispatch.Params{
		TransmissionRate: s.TransmissionCostPerKWh,
		SellPrice:        s.SellingPricePerKWh,
		Efficiency:       s.BatteryEfficiency,
		DegradationRate:  s.BatteryDegradationRate,
		ApplyEfficiency:  s.ApplyEfficiency,
		HoursPerYear:     s.HoursPerYear,
		OffPeak:          s.OffPeak,
		Peak:             s.Peak,
	}
}
