package sequencer

import (
	"fmt"
	"time"

	"github.com/chaz8081/vizard/internal/hid"
)

// StepDelay is the pause after each of the first two greeting steps.
const StepDelay = time.Second

// Action is what a Step sends to the host.
type Action int

const (
	// ActionPrint types Text.
	ActionPrint Action = iota
	// ActionPrintln types Text followed by an end of line.
	ActionPrintln
	// ActionWrite taps Key.
	ActionWrite
)

func (a Action) String() string {
	switch a {
	case ActionPrint:
		return "print"
	case ActionPrintln:
		return "println"
	case ActionWrite:
		return "write"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Step is one HID emission followed by an optional pause.
type Step struct {
	Action Action
	Text   string
	Key    hid.Key
	// Log, if set, is written to the diagnostic log before the step.
	Log string
	// Delay is the pause after the emission.
	Delay time.Duration
}

// Script is an ordered, read-only list of steps.
type Script struct {
	steps []Step
}

// NewScript copies steps into a Script.
func NewScript(steps ...Step) Script {
	s := make([]Step, len(steps))
	copy(s, steps)
	return Script{steps: s}
}

// Greeting is the compiled-in script: "Hello from ESP32", Enter, then
// "Great work!!!" and a newline, with stepDelay after the first two.
func Greeting(stepDelay time.Duration) Script {
	return NewScript(
		Step{Action: ActionPrint, Text: "Hello from ESP32", Delay: stepDelay},
		Step{Action: ActionWrite, Key: hid.KeyEnter, Log: "Sending Enter key...", Delay: stepDelay},
		Step{Action: ActionPrintln, Text: "Great work!!!"},
	)
}

// Len returns the number of steps.
func (s Script) Len() int { return len(s.steps) }

// Step returns a copy of step i.
func (s Script) Step(i int) Step { return s.steps[i] }

// MinDuration is the sum of every step's pause: the least time a full
// pass can take regardless of transmission latency.
func (s Script) MinDuration() time.Duration {
	var d time.Duration
	for _, st := range s.steps {
		d += st.Delay
	}
	return d
}
