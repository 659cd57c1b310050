// Package morse turns tap gestures into wire symbols and keeps the scrolling
// transcript shown on the operator's display.
package morse

import "time"

// Signal is one display symbol: dot, dash or an inter-word space.
type Signal string

const (
	Dot   Signal = "•"
	Dash  Signal = "-"
	Space Signal = " "
)

// DashThreshold separates a dot from a dash. Holds at or above it key a dash.
const DashThreshold = 300 * time.Millisecond

// Blank-timing bounds for the trailing-space timer knob.
const (
	MinBlankDelay = 500 * time.Millisecond
	MaxBlankDelay = 1500 * time.Millisecond
)

// Encode maps a press-and-hold duration to a dot or dash.
func Encode(press time.Duration) Signal {
	if press >= DashThreshold {
		return Dash
	}
	return Dot
}

// ClampBlankDelay forces a user-chosen blank timing into the supported range.
func ClampBlankDelay(d time.Duration) time.Duration {
	if d < MinBlankDelay {
		return MinBlankDelay
	}
	if d > MaxBlankDelay {
		return MaxBlankDelay
	}
	return d
}
