package dispatch

import (
	"math"

	"battery-payback/internal/model"
)

// hourOutcome records the energy flows of one simulated hour (kWh) and the
// per-hour increment of TotalSavings.
type hourOutcome struct {
	Charged     float64
	Discharged  float64
	GridTopUp   float64
	GridDemand  float64
	Sold        float64
	HourSavings float64
}

// policy decides the energy flows for one hour. It mutates the battery and
// the accumulator; finish applies the post-year roll-up.
type policy interface {
	mode() model.Mode
	step(h model.HourlyRecord, b *model.BatteryState, acc *model.Savings) hourOutcome
	finish(acc *model.Savings)
}

// solarPolicy serves consumption from solar first, stores surplus, sells the
// rest, and tops the battery up from the grid whenever power is cheaper than
// the feed-in price.
type solarPolicy struct {
	params    Params
	discharge func(b *model.BatteryState, need float64) float64
}

func (p solarPolicy) mode() model.Mode { return model.ModeSolar }

func (p solarPolicy) step(h model.HourlyRecord, b *model.BatteryState, acc *model.Savings) hourOutcome {
	var out hourOutcome

	solar := h.SolarKWh()
	consumption := h.Consumption
	excess := math.Max(0, solar-consumption)
	deficit := math.Max(0, consumption-solar)

	if solar >= consumption {
		if excess > 0 {
			charged := b.Store(excess)
			excess -= charged
			acc.TransmissionCostSavings += charged * p.params.TransmissionRate
			out.Charged = charged
		}
		if excess > 0 {
			acc.SellingRevenue += excess * p.params.SellPrice
			out.Sold = excess
		}
	} else {
		discharged := p.discharge(b, deficit)
		deficit -= discharged
		acc.ElectricityCostSavings += discharged * h.Price
		out.Discharged = discharged

		if deficit > 0 {
			withoutBattery := consumption * h.Price
			withBattery := deficit * h.Price
			out.HourSavings = withoutBattery - withBattery
			acc.TotalSavings += out.HourSavings
		}
	}
	out.GridDemand = deficit

	// Grid top-up is sized by the hour's raw consumption, not by the
	// remaining demand or the price spread.
	if !b.Full() && h.Price < p.params.SellPrice {
		out.GridTopUp = b.Store(consumption)
	}
	return out
}

// finish adds the category totals on top of the hourly savings already in
// TotalSavings, so discharge value is counted twice.
func (p solarPolicy) finish(acc *model.Savings) {
	acc.TotalSavings += acc.TransmissionCostSavings + acc.SellingRevenue + acc.ElectricityCostSavings
}

// timeOfDayPolicy charges from the grid off-peak and discharges into the
// evening peak. There is no export in this mode.
type timeOfDayPolicy struct {
	offPeak   minuteWindow
	peak      minuteWindow
	discharge func(b *model.BatteryState, need float64) float64
}

func (p timeOfDayPolicy) mode() model.Mode { return model.ModeNoSolar }

func (p timeOfDayPolicy) step(h model.HourlyRecord, b *model.BatteryState, acc *model.Savings) hourOutcome {
	var out hourOutcome

	consumption := h.Consumption
	grid := consumption
	hod := h.HourOfDay()

	switch {
	case p.offPeak.containsHour(hod):
		out.Charged = b.Store(consumption)
		grid = consumption - out.Charged
	case p.peak.containsHour(hod):
		out.Discharged = p.discharge(b, grid)
		grid -= out.Discharged
		acc.ElectricityCostSavings += out.Discharged * h.Price
	}

	out.GridDemand = grid
	out.HourSavings = consumption*h.Price - grid*h.Price
	acc.TotalSavings += out.HourSavings
	return out
}

// finish counts the discharge value a second time, as the solar mode does.
func (p timeOfDayPolicy) finish(acc *model.Savings) {
	acc.TotalSavings += acc.ElectricityCostSavings
}
