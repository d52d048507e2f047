package dispatch

import (
	"fmt"
	"strings"
)

// Window is a daily time window [Start, End) in "HH:MM".
// If Start > End the window wraps across midnight; Start == End is empty.
type Window struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type minuteWindow struct {
	start int
	end   int
}

func (w Window) parse() (minuteWindow, error) {
	s, err := parseHHMM(w.Start)
	if err != nil {
		return minuteWindow{}, err
	}
	e, err := parseHHMM(w.End)
	if err != nil {
		return minuteWindow{}, err
	}
	return minuteWindow{start: s, end: e}, nil
}

func (w minuteWindow) containsHour(hourOfDay int) bool {
	return inWindow(hourOfDay*60, w.start, w.end)
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return 24 * 60, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start < end, it's a normal same-day window.
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	// wrap
	return tMins >= start || tMins < end
}
