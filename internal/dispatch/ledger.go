package dispatch

import "battery-payback/internal/model"

// LedgerRow is one row of per-hour output.
// This is the primary artifact for "what happened" in a dispatch run.
type LedgerRow struct {
	Hour      int `json:"hour"`
	HourOfDay int `json:"hour_of_day"`

	Price       float64 `json:"price"`
	Solar       float64 `json:"solar_kwh"`
	Consumption float64 `json:"consumption_kwh"`

	Action model.Action `json:"action"`

	ChargeStart float64 `json:"charge_start_kwh"`
	ChargeEnd   float64 `json:"charge_end_kwh"`

	Charged    float64 `json:"charged_kwh"`
	Discharged float64 `json:"discharged_kwh"`
	GridTopUp  float64 `json:"grid_top_up_kwh"`
	GridDemand float64 `json:"grid_demand_kwh"`
	Sold       float64 `json:"sold_kwh"`

	HourSavings float64 `json:"hour_savings"`
	// CumTotal is TotalSavings before the end-of-year roll-up.
	CumTotal float64 `json:"cum_total"`
}

func newLedgerRow(h model.HourlyRecord, start, end float64, out hourOutcome, cum float64) LedgerRow {
	return LedgerRow{
		Hour:      h.Hour,
		HourOfDay: h.HourOfDay(),

		Price:       h.Price,
		Solar:       h.SolarKWh(),
		Consumption: h.Consumption,

		Action: model.ActionFromDelta(end - start),

		ChargeStart: start,
		ChargeEnd:   end,

		Charged:    out.Charged,
		Discharged: out.Discharged,
		GridTopUp:  out.GridTopUp,
		GridDemand: out.GridDemand,
		Sold:       out.Sold,

		HourSavings: out.HourSavings,
		CumTotal:    cum,
	}
}
