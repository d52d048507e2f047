// Package report serializes sweep results into an xlsx workbook and reads
// the result tables back.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"battery-payback/internal/model"
	"battery-payback/internal/sweep"
)

// Sheet names.
const (
	SheetWithSolar    = "With Solar"
	SheetWithoutSolar = "Without Solar"
	SheetHourly       = "Hourly Data"
	SheetAssumptions  = "Assumptions"
	SheetFailures     = "Failures"
)

// Infinite payback periods are stored as this string.
const infinity = "inf"

var (
	withSolarHeader = []any{
		"Battery Size (kWh)", "Solar Size (kW)", "Annual Consumption (kWh)",
		"Investment Cost", "Total Savings", "Net Savings", "Payback Period (years)",
	}
	withoutSolarHeader = []any{
		"Battery Size (kWh)", "Annual Consumption (kWh)",
		"Investment Cost", "Total Savings", "Net Savings", "Payback Period (years)",
	}
)

// Write saves res as a workbook at path, creating parent directories.
func Write(path string, res *sweep.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := build(res)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteTo streams the workbook for res to w.
func WriteTo(w io.Writer, res *sweep.Result) error {
	f, err := build(res)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func build(res *sweep.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetWithSolar); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetWithoutSolar, SheetHourly, SheetAssumptions} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	steps := []func(*excelize.File, *sweep.Result) error{
		writeWithSolar, writeWithoutSolar, writeHourly, writeAssumptions, writeFailures,
	}
	for _, step := range steps {
		if err := step(f, res); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// writeRows streams rows (header first) into sheet.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return sw.Flush()
}

func payback(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return infinity
	}
	return v
}

func writeWithSolar(f *excelize.File, res *sweep.Result) error {
	rows := [][]any{withSolarHeader}
	for _, r := range res.WithSolar {
		solar := 0.0
		if r.SolarKW != nil {
			solar = *r.SolarKW
		}
		rows = append(rows, []any{
			r.BatteryKWh, solar, r.AnnualConsumptionKWh,
			r.InvestmentCost, r.TotalSavings, r.NetSavings, payback(r.PaybackYears),
		})
	}
	return writeRows(f, SheetWithSolar, rows)
}

func writeWithoutSolar(f *excelize.File, res *sweep.Result) error {
	rows := [][]any{withoutSolarHeader}
	for _, r := range res.WithoutSolar {
		rows = append(rows, []any{
			r.BatteryKWh, r.AnnualConsumptionKWh,
			r.InvestmentCost, r.TotalSavings, r.NetSavings, payback(r.PaybackYears),
		})
	}
	return writeRows(f, SheetWithoutSolar, rows)
}

func writeHourly(f *excelize.File, res *sweep.Result) error {
	header := []any{"Hour", "Electricity Price (per kWh)"}
	in := res.Inputs
	if in == nil {
		return writeRows(f, SheetHourly, [][]any{header})
	}
	for _, p := range in.Solar {
		header = append(header, fmt.Sprintf("Solar Production %s kW (kWh)", strconv.FormatFloat(p.Size, 'g', -1, 64)))
	}
	for _, p := range in.Consumption {
		header = append(header, fmt.Sprintf("Consumption %s kWh/yr (kWh)", strconv.FormatFloat(p.Size, 'g', -1, 64)))
	}

	rows := make([][]any, 0, len(in.Prices)+1)
	rows = append(rows, header)
	for i, price := range in.Prices {
		row := make([]any, 0, len(header))
		row = append(row, i+1, price)
		for _, p := range in.Solar {
			row = append(row, valueAt(p.Values, i))
		}
		for _, p := range in.Consumption {
			row = append(row, valueAt(p.Values, i))
		}
		rows = append(rows, row)
	}
	return writeRows(f, SheetHourly, rows)
}

func valueAt(xs []float64, i int) any {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func writeAssumptions(f *excelize.File, res *sweep.Result) error {
	rows := [][]any{{"Parameter", "Value", "Unit"}}
	for _, a := range res.Assumptions {
		rows = append(rows, []any{a.Name, a.Value, a.Unit})
	}
	return writeRows(f, SheetAssumptions, rows)
}

func writeFailures(f *excelize.File, res *sweep.Result) error {
	if len(res.Failures) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetFailures); err != nil {
		return err
	}
	rows := [][]any{{"Mode", "Battery Size (kWh)", "Solar Size (kW)", "Annual Consumption (kWh)", "Error"}}
	for _, fl := range res.Failures {
		var solar any
		if fl.Scenario.SolarKW != nil {
			solar = *fl.Scenario.SolarKW
		}
		rows = append(rows, []any{string(fl.Mode), fl.Scenario.BatteryKWh, solar, fl.Scenario.AnnualConsumptionKWh, fl.Error})
	}
	return writeRows(f, SheetFailures, rows)
}

// Results are the result tables read back from a workbook.
type Results struct {
	WithSolar    []model.ScenarioResult
	WithoutSolar []model.ScenarioResult
}

// ReadResults reads the with-solar and without-solar tables of the workbook
// at path.
func ReadResults(path string) (*Results, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readResults(f)
}

// ReadResultsFrom is ReadResults for an in-memory workbook.
func ReadResultsFrom(r io.Reader) (*Results, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readResults(f)
}

func readResults(f *excelize.File) (*Results, error) {
	out := &Results{}
	with, err := readSheet(f, SheetWithSolar, len(withSolarHeader), true)
	if err != nil {
		return nil, err
	}
	out.WithSolar = with
	without, err := readSheet(f, SheetWithoutSolar, len(withoutSolarHeader), false)
	if err != nil {
		return nil, err
	}
	out.WithoutSolar = without
	return out, nil
}

func readSheet(f *excelize.File, sheet string, width int, hasSolar bool) ([]model.ScenarioResult, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", sheet)
	}

	var out []model.ScenarioResult
	for i, row := range rows[1:] {
		if len(row) < width {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", sheet, i+2, width, len(row))
		}
		vals := make([]float64, width)
		for j := 0; j < width; j++ {
			if j == width-1 && row[j] == infinity {
				vals[j] = math.Inf(1)
				continue
			}
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %d: %w", sheet, i+2, j+1, err)
			}
			vals[j] = v
		}

		var r model.ScenarioResult
		r.BatteryKWh = vals[0]
		k := 1
		if hasSolar {
			r.SolarKW = model.Float(vals[1])
			k = 2
		}
		r.AnnualConsumptionKWh = vals[k]
		r.InvestmentCost = vals[k+1]
		r.TotalSavings = vals[k+2]
		r.NetSavings = vals[k+3]
		r.PaybackYears = vals[k+4]
		out = append(out, r)
	}
	return out, nil
}
