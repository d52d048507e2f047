package analysis

import (
	"cmp"
	"slices"

	"battery-payback/internal/model"
)

// RankByPayback returns a copy of rows sorted by payback period ascending.
// Rows that never pay back sort last; ties keep their input order.
func RankByPayback(rows []model.ScenarioResult) []model.ScenarioResult {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.ScenarioResult) int {
		return cmp.Compare(a.PaybackYears, b.PaybackYears)
	})
	return out
}

// Best returns the row with the shortest payback period, or false when no
// row pays back.
func Best(rows []model.ScenarioResult) (model.ScenarioResult, bool) {
	ranked := RankByPayback(rows)
	if len(ranked) == 0 || !ranked[0].PaysBack() {
		return model.ScenarioResult{}, false
	}
	return ranked[0], true
}
