package profile

import (
	"errors"
	"fmt"
	"math"

	"battery-payback/internal/model"
)

// Season describes one block of consecutive hours sharing a price level,
// solar yield and consumption share.
type Season struct {
	Name  string `yaml:"name" json:"name"`
	Hours int    `yaml:"hours" json:"hours"`

	BasePrice      float64 `yaml:"base_price" json:"base_price"`
	DailyVariation float64 `yaml:"daily_variation" json:"daily_variation"`

	// SolarAvgHours is the equivalent full-sun hours per day.
	SolarAvgHours    float64 `yaml:"solar_avg_hours" json:"solar_avg_hours"`
	SolarVariability float64 `yaml:"solar_variability" json:"solar_variability"`

	ConsumptionShare float64 `yaml:"consumption_share" json:"consumption_share"`
}

// HourRange is [Start, End) on a 24h clock.
type HourRange struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

func (r HourRange) contains(hourOfDay int) bool {
	return hourOfDay >= r.Start && hourOfDay < r.End
}

func (r HourRange) length() int { return r.End - r.Start }

// Tables holds every constant the generator depends on.
type Tables struct {
	Seasons []Season `yaml:"seasons" json:"seasons"`

	// Daylight hours are cheaper and the only hours producing solar.
	Daylight HourRange `yaml:"daylight" json:"daylight"`

	Morning      HourRange `yaml:"morning" json:"morning"`
	Evening      HourRange `yaml:"evening" json:"evening"`
	MorningShare float64   `yaml:"morning_share" json:"morning_share"`
	EveningShare float64   `yaml:"evening_share" json:"evening_share"`
	OffPeakShare float64   `yaml:"off_peak_share" json:"off_peak_share"`

	HoursPerYear int `yaml:"hours_per_year" json:"hours_per_year"`
}

// DefaultTables reproduces the reference year: winter, spring, summer and
// autumn blocks adding up to 8760 hours.
func DefaultTables() Tables {
	return Tables{
		Seasons: []Season{
			{Name: "winter", Hours: 2159, BasePrice: 0.20, DailyVariation: 0.05, SolarAvgHours: 2, SolarVariability: 0.10, ConsumptionShare: 0.40},
			{Name: "spring", Hours: 2184, BasePrice: 0.10, DailyVariation: 0.03, SolarAvgHours: 5, SolarVariability: 0.20, ConsumptionShare: 0.20},
			{Name: "summer", Hours: 2184, BasePrice: 0.08, DailyVariation: 0.02, SolarAvgHours: 8, SolarVariability: 0.30, ConsumptionShare: 0.15},
			{Name: "autumn", Hours: 2233, BasePrice: 0.15, DailyVariation: 0.04, SolarAvgHours: 4, SolarVariability: 0.15, ConsumptionShare: 0.25},
		},
		Daylight:     HourRange{Start: 6, End: 18},
		Morning:      HourRange{Start: 6, End: 10},
		Evening:      HourRange{Start: 18, End: 22},
		MorningShare: 0.5,
		EveningShare: 0.3,
		OffPeakShare: 0.2,
		HoursPerYear: model.HoursPerYear,
	}
}

func (t Tables) Validate() error {
	if len(t.Seasons) == 0 {
		return errors.New("at least one season is required")
	}
	hoursPerYear := t.hoursPerYear()
	total := 0
	for i, s := range t.Seasons {
		if s.Hours <= 0 {
			return fmt.Errorf("season %d (%s): hours must be > 0", i, s.Name)
		}
		if s.SolarVariability < 0 || s.SolarVariability > 1 {
			return fmt.Errorf("season %d (%s): solar variability must be in [0, 1]", i, s.Name)
		}
		if s.SolarAvgHours < 0 || s.ConsumptionShare < 0 {
			return fmt.Errorf("season %d (%s): solar hours and consumption share must be >= 0", i, s.Name)
		}
		total += s.Hours
	}
	if total < hoursPerYear {
		return fmt.Errorf("seasons cover %d hours, need at least %d", total, hoursPerYear)
	}
	for name, r := range map[string]HourRange{"daylight": t.Daylight, "morning": t.Morning, "evening": t.Evening} {
		if r.Start < 0 || r.End > 24 || r.Start > r.End {
			return fmt.Errorf("%s hours must satisfy 0 <= start <= end <= 24", name)
		}
	}
	if t.Daylight.length() == 0 {
		return errors.New("daylight window must not be empty")
	}
	shares := t.MorningShare + t.EveningShare + t.OffPeakShare
	if shares <= 0 || math.IsNaN(shares) {
		return errors.New("daily consumption shares must be positive")
	}
	return nil
}

func (t Tables) hoursPerYear() int {
	if t.HoursPerYear <= 0 {
		return model.HoursPerYear
	}
	return t.HoursPerYear
}
