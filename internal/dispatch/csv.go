package dispatch

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteLedgerCSVFile writes the ledger to path, creating parent directories.
func WriteLedgerCSVFile(path string, ledger []LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteLedgerCSV(f, ledger); err != nil {
		return err
	}
	return f.Close()
}

func WriteLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"hour",
		"hour_of_day",
		"price",
		"solar_kwh",
		"consumption_kwh",
		"action",
		"charge_start_kwh",
		"charge_end_kwh",
		"charged_kwh",
		"discharged_kwh",
		"grid_top_up_kwh",
		"grid_demand_kwh",
		"sold_kwh",
		"hour_savings",
		"cum_total",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Hour),
			strconv.Itoa(r.HourOfDay),
			fmtFloat(r.Price),
			fmtFloat(r.Solar),
			fmtFloat(r.Consumption),
			string(r.Action),
			fmtFloat(r.ChargeStart),
			fmtFloat(r.ChargeEnd),
			fmtFloat(r.Charged),
			fmtFloat(r.Discharged),
			fmtFloat(r.GridTopUp),
			fmtFloat(r.GridDemand),
			fmtFloat(r.Sold),
			fmtFloat(r.HourSavings),
			fmtFloat(r.CumTotal),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
