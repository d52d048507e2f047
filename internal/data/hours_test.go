package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

func TestSaveAndLoadHoursJSON(t *testing.T) {
	g, err := profile.NewGenerator(profile.DefaultTables())
	require.NoError(t, err)
	hours, err := profile.Build(g.Prices(), g.Consumption(15000), g.Solar(5, profile.NewSource(7)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "hours.json")
	in := &HoursFile{
		UpdatedAt:            "2024-01-01T00:00:00Z",
		Seed:                 7,
		SolarKW:              model.Float(5),
		AnnualConsumptionKWh: 15000,
		Hours:                hours,
	}
	require.NoError(t, SaveHoursJSON(in, path))

	out, err := LoadHoursJSON(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.NoError(t, out.Hours.Validate(0, true))
}

func TestLoadHoursJSONErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadHoursJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadHoursJSON(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"hours": []}`), 0o644))
	_, err = LoadHoursJSON(empty)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestDefaultHoursPath(t *testing.T) {
	t.Setenv("PAYBACK_HOURS_FILE", "/tmp/x.json")
	assert.Equal(t, "/tmp/x.json", DefaultHoursPath())
}
