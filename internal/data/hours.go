package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"battery-payback/internal/model"
)

// HoursFile is a persisted hourly year, replayable through the dispatch
// engine.
type HoursFile struct {
	UpdatedAt            string             `json:"updated_at"` // ISO 8601 timestamp
	Seed                 uint64             `json:"seed"`
	SolarKW              *float64           `json:"solar_kw,omitempty"`
	AnnualConsumptionKWh float64            `json:"annual_consumption_kwh"`
	Hours                model.HourlySeries `json:"hours"`
}

// LoadHoursJSON loads an hourly year from a JSON file. The series itself is
// validated by the engine that consumes it.
func LoadHoursJSON(filePath string) (*HoursFile, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read hours file: %w", err)
	}

	var hf HoursFile
	if err := json.Unmarshal(raw, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse hours file: %w", err)
	}
	if len(hf.Hours) == 0 {
		return nil, fmt.Errorf("%w: hours file %s has no hours", model.ErrInvalidInput, filePath)
	}
	return &hf, nil
}

// SaveHoursJSON saves an hourly year to a JSON file.
func SaveHoursJSON(hf *HoursFile, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(hf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hours: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write hours file: %w", err)
	}
	return nil
}

// DefaultHoursPath returns the default path for the hours file.
func DefaultHoursPath() string {
	if path := os.Getenv("PAYBACK_HOURS_FILE"); path != "" {
		return path
	}
	return "./data/hours.json"
}
