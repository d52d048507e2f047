package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"battery-payback/internal/data"
	"battery-payback/internal/model"
	"battery-payback/internal/profile"
)

func newProfileCmd(root *rootOptions) *cobra.Command {
	var (
		out         string
		solar       float64
		consumption float64
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Generate one synthetic hourly year and save it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			gen, err := profile.NewGenerator(cfg.Profile.Tables)
			if err != nil {
				return err
			}

			var solarValues []float64
			var solarKW *float64
			if solar > 0 {
				solarKW = model.Float(solar)
				solarValues = gen.SolarFor(cfg.Sweep.SolarSizesKW, solar, cfg.Profile.Seed)
			}
			hours, err := profile.Build(gen.Prices(), gen.Consumption(consumption), solarValues)
			if err != nil {
				return err
			}
			if out == "" {
				out = data.DefaultHoursPath()
			}
			hf := &data.HoursFile{
				UpdatedAt:            time.Now().UTC().Format(time.RFC3339),
				Seed:                 cfg.Profile.Seed,
				SolarKW:              solarKW,
				AnnualConsumptionKWh: consumption,
				Hours:                hours,
			}
			if err := data.SaveHoursJSON(hf, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d hours to %s\n", len(hours), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output JSON path (default $PAYBACK_HOURS_FILE or ./data/hours.json)")
	cmd.Flags().Float64Var(&solar, "solar", 0, "solar system size in kW (0 = no solar column)")
	cmd.Flags().Float64Var(&consumption, "consumption", 15000, "annual household consumption in kWh")
	return cmd
}
