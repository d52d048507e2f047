package model

// Action is a human-friendly operating mode for an hour.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromDelta maps the net change of battery charge over an hour to an action.
func ActionFromDelta(deltaKWh float64) Action {
	switch {
	case deltaKWh > 0:
		return ActionCharging
	case deltaKWh < 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
