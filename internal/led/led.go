// Package led drives the activity indicator. The indicator is a plain
// on/off output with no feedback path; machine.Pin satisfies Indicator
// directly on the firmware build.
package led

import (
	"log/slog"
	"sync/atomic"
)

// Indicator is a single-bit output.
type Indicator interface {
	High()
	Low()
}

// Logged is an Indicator for hosted builds that have no LED. It keeps the
// state and logs each transition at debug level.
type Logged struct {
	name string
	on   atomic.Bool
	// toggles counts transitions into the on state.
	toggles atomic.Uint64
}

// Compile-time interface satisfaction check.
var _ Indicator = (*Logged)(nil)

// NewLogged creates a Logged indicator; name appears in log lines.
func NewLogged(name string) *Logged {
	return &Logged{name: name}
}

func (l *Logged) High() {
	if !l.on.Swap(true) {
		l.toggles.Add(1)
	}
	slog.Debug("[LED] on", "led", l.name)
}

func (l *Logged) Low() {
	l.on.Store(false)
	slog.Debug("[LED] off", "led", l.name)
}

// On reports the current state.
func (l *Logged) On() bool { return l.on.Load() }

// Pulses returns how many times the indicator has been switched on.
func (l *Logged) Pulses() uint64 { return l.toggles.Load() }

// None discards every transition.
type None struct{}

var _ Indicator = None{}

func (None) High() {}
func (None) Low()  {}
