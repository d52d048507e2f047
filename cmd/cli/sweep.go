package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"battery-payback/internal/analysis"
	"battery-payback/internal/logger"
	"battery-payback/internal/model"
	"battery-payback/internal/report"
	"battery-payback/internal/sweep"
)

func newSweepCmd(root *rootOptions) *cobra.Command {
	var (
		out     string
		workers int
		top     int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every battery/solar/consumption scenario and write the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Sweep.Workers = workers
			}
			log := logger.New("sweep")
			runner, err := sweep.NewRunner(cfg, log, nil)
			if err != nil {
				return err
			}
			res, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			if err := report.Write(out, res); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "wrote %s: %d with-solar rows, %d without-solar rows, %d failures\n",
				out, len(res.WithSolar), len(res.WithoutSolar), len(res.Failures))
			printTop(w, "with solar", res.WithSolar, top)
			printTop(w, "without solar", res.WithoutSolar, top)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "results/payback.xlsx", "output workbook path")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel scenarios (0 = one per CPU)")
	cmd.Flags().IntVar(&top, "top", 3, "number of fastest-payback scenarios to print")
	return cmd
}

func printTop(w io.Writer, title string, rows []model.ScenarioResult, n int) {
	ranked := analysis.RankByPayback(rows)
	if n > len(ranked) {
		n = len(ranked)
	}
	if n <= 0 {
		return
	}
	fmt.Fprintf(w, "fastest payback %s:\n", title)
	for _, r := range ranked[:n] {
		fmt.Fprintf(w, "  battery=%g kWh solar=%s consumption=%g kWh investment=%.2f total=%.2f payback=%s\n",
			r.BatteryKWh, solarLabel(r.SolarKW), r.AnnualConsumptionKWh, r.InvestmentCost, r.TotalSavings, paybackLabel(r))
	}
}

func solarLabel(kw *float64) string {
	if kw == nil {
		return "none"
	}
	return fmt.Sprintf("%g kW", *kw)
}

func paybackLabel(r model.ScenarioResult) string {
	if !r.PaysBack() {
		return "never"
	}
	return fmt.Sprintf("%.2f years", r.PaybackYears)
}
