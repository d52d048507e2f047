package model

import (
	"fmt"
	"math"
)

// BatteryState captures the mutable state of one dispatch run.
// Units: kWh. Invariant: 0 <= Charge <= Capacity.
type BatteryState struct {
	Capacity float64
	Charge   float64
}

// NewBatteryState returns an empty battery of the given capacity.
func NewBatteryState(capacity float64) (*BatteryState, error) {
	if math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return nil, fmt.Errorf("%w: battery capacity must be finite", ErrInvalidInput)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: battery capacity must be >= 0, got %g", ErrInvalidInput, capacity)
	}
	return &BatteryState{Capacity: capacity}, nil
}

// Room is the energy that can still be stored.
func (b *BatteryState) Room() float64 {
	return math.Max(0, b.Capacity-b.Charge)
}

// Full reports whether no more energy can be stored.
func (b *BatteryState) Full() bool {
	return b.Charge >= b.Capacity
}

// Store charges up to amount kWh, limited by the remaining room, and returns
// what was actually stored.
func (b *BatteryState) Store(amount float64) float64 {
	stored := math.Min(b.Room(), math.Max(0, amount))
	b.Charge = clamp(b.Charge+stored, 0, b.Capacity)
	return stored
}

// Draw discharges up to amount kWh, limited by the current charge, and
// returns what was actually withdrawn.
func (b *BatteryState) Draw(amount float64) float64 {
	drawn := math.Min(b.Charge, math.Max(0, amount))
	b.Charge = clamp(b.Charge-drawn, 0, b.Capacity)
	return drawn
}

// Within reports whether the state respects its bounds.
func (b *BatteryState) Within() bool {
	return b.Charge >= 0 && b.Charge <= b.Capacity
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
