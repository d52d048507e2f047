package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"battery-payback/internal/model"
)

// PricePotential summarizes how much arbitrage room an hourly price profile
// offers, independent of a specific battery size.
type PricePotential struct {
	Count int `json:"count"`

	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MeanPrice float64 `json:"mean_price"`
	StdDev    float64 `json:"std_dev"`
	P05Price  float64 `json:"p05_price"`
	P95Price  float64 `json:"p95_price"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`

	// DailySpreadMean is the mean of (max - min) over every whole day.
	DailySpreadMean float64 `json:"daily_spread_mean"`

	// OracleProfit is the profit of a canonical battery with perfect
	// foresight:
	// - 1 kWh energy, 1 kW power, one decision per hour
	// - lossless, starts empty
	// - buys and sells at the hourly price
	OracleProfit float64 `json:"oracle_profit"`
}

// ComputePotential summarizes the prices of hours.
func ComputePotential(hours model.HourlySeries) PricePotential {
	p := PricePotential{}
	if len(hours) == 0 {
		return p
	}
	prices := hours.Prices()
	sorted := slices.Clone(prices)
	slices.Sort(sorted)

	p.Count = len(prices)
	p.MinPrice = floats.Min(prices)
	p.MaxPrice = floats.Max(prices)
	p.MeanPrice, p.StdDev = stat.MeanStdDev(prices, nil)
	if len(prices) < 2 {
		p.StdDev = 0
	}
	p.P05Price = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	p.P95Price = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	p.SpreadP95P05 = p.P95Price - p.P05Price
	p.DailySpreadMean = dailySpreadMean(prices)
	p.OracleProfit = oracleProfitCanonical(prices)
	return p
}

func dailySpreadMean(prices []float64) float64 {
	days := len(prices) / 24
	if days == 0 {
		return 0
	}
	spreads := make([]float64, days)
	for d := range spreads {
		day := prices[d*24 : (d+1)*24]
		spreads[d] = floats.Max(day) - floats.Min(day)
	}
	return stat.Mean(spreads, nil)
}

// oracleProfitCanonical runs a DP over the two charge states of a 1 kWh
// battery that moves 1 kWh per hour.
func oracleProfitCanonical(prices []float64) float64 {
	const steps = 1
	negInf := math.Inf(-1)
	dp := make([]float64, steps+1)
	next := make([]float64, steps+1)
	for i := range dp {
		dp[i] = negInf
	}
	dp[0] = 0

	for _, price := range prices {
		for i := range next {
			next[i] = negInf
		}
		for soc := 0; soc <= steps; soc++ {
			if math.IsInf(dp[soc], -1) {
				continue
			}
			// Idle
			next[soc] = math.Max(next[soc], dp[soc])
			// Charge: buy 1 kWh.
			if soc < steps {
				next[soc+1] = math.Max(next[soc+1], dp[soc]-price)
			}
			// Discharge: sell 1 kWh.
			if soc > 0 {
				next[soc-1] = math.Max(next[soc-1], dp[soc]+price)
			}
		}
		dp, next = next, dp
	}
	return floats.Max(dp)
}
