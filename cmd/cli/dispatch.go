package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"battery-payback/internal/data"
	"battery-payback/internal/dispatch"
	"battery-payback/internal/logger"
	"battery-payback/internal/model"
	"battery-payback/internal/sweep"
)

func newDispatchCmd(root *rootOptions) *cobra.Command {
	var (
		battery     float64
		solar       float64
		consumption float64
		noSolar     bool
		hoursPath   string
		ledgerPath  string
	)
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Simulate one scenario and print its savings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			runner, err := sweep.NewRunner(cfg, logger.New("dispatch"), nil)
			if err != nil {
				return err
			}

			sc := model.Scenario{BatteryKWh: battery, AnnualConsumptionKWh: consumption}
			mode := model.ModeNoSolar
			if !noSolar {
				if !cmd.Flags().Changed("solar") {
					return fmt.Errorf("--solar is required unless --no-solar is set")
				}
				sc.SolarKW = model.Float(solar)
				mode = model.ModeSolar
			}

			var hours model.HourlySeries
			if hoursPath != "" {
				hf, err := data.LoadHoursJSON(hoursPath)
				if err != nil {
					return err
				}
				hours = hf.Hours
			}

			out, err := runner.RunSingle(context.Background(), mode, sc, hours, dispatch.Options{RecordLedger: ledgerPath != ""})
			if err != nil {
				return err
			}
			if ledgerPath != "" {
				if err := dispatch.WriteLedgerCSVFile(ledgerPath, out.Dispatch.Ledger); err != nil {
					return fmt.Errorf("write ledger: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			s := out.Savings
			fmt.Fprintf(w, "mode=%s battery=%g kWh solar=%s consumption=%g kWh\n",
				mode, sc.BatteryKWh, solarLabel(sc.SolarKW), sc.AnnualConsumptionKWh)
			fmt.Fprintf(w, "electricity_cost_savings=%.4f transmission_cost_savings=%.4f selling_revenue=%.4f total_savings=%.4f\n",
				s.ElectricityCostSavings, s.TransmissionCostSavings, s.SellingRevenue, s.TotalSavings)
			fmt.Fprintf(w, "investment=%.2f net_savings=%.2f payback=%s final_charge=%.4f kWh\n",
				out.Result.InvestmentCost, out.Result.NetSavings, paybackLabel(out.Result), out.Dispatch.FinalCharge)
			if ledgerPath != "" {
				fmt.Fprintf(w, "ledger written to %s\n", ledgerPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&battery, "battery", 20, "battery capacity in kWh")
	f.Float64Var(&solar, "solar", 0, "solar system size in kW")
	f.Float64Var(&consumption, "consumption", 15000, "annual household consumption in kWh")
	f.BoolVar(&noSolar, "no-solar", false, "run the time-of-day policy without solar")
	f.StringVar(&hoursPath, "hours", "", "replay an hours JSON file instead of generating the year")
	f.StringVar(&ledgerPath, "ledger", "", "optional per-hour ledger CSV output path")
	return cmd
}
