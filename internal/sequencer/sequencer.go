// Package sequencer emits the keystroke script to a connected host, with
// the activity indicator bracketing every emission.
package sequencer

import (
	"context"
	"log/slog"
	"time"

	"github.com/chaz8081/vizard/internal/clock"
	"github.com/chaz8081/vizard/internal/hid"
)

// Keyboard is the HID transport the script types through. Emission
// results are ignored: at this layer the transport is fire-and-forget.
type Keyboard interface {
	Print(text string) (int, error)
	Println(text string) (int, error)
	Write(k hid.Key) error
}

// Indicator is the activity LED.
type Indicator interface {
	High()
	Low()
}

// Gate answers whether a host is connected.
type Gate interface {
	IsConnected() bool
}

// Options configures the Sequencer.
type Options struct {
	// Recheck, if set, is queried before every step and the rest of the
	// pass is abandoned once it reports disconnected. Nil runs every pass
	// to completion regardless of the connection.
	Recheck Gate
	Logger  *slog.Logger // default slog.Default()
}

// Sequencer runs a Script. It is not safe for concurrent use; the device
// has a single thread of control.
type Sequencer struct {
	kb     Keyboard
	led    Indicator
	clk    clock.Clock
	script Script
	opts   Options
	log    *slog.Logger
}

// New creates a Sequencer.
// Panics if kb, led or clk is nil (programmer error).
func New(kb Keyboard, led Indicator, clk clock.Clock, script Script, opts Options) *Sequencer {
	if kb == nil || led == nil || clk == nil {
		panic("sequencer: New called with nil dependency")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{kb: kb, led: led, clk: clk, script: script, opts: opts, log: logger}
}

// Run performs one full pass of the script. The caller must already have
// seen the host connected; Run does not check again unless Options.Recheck
// is set. Cancelling ctx does not interrupt a pass.
func (s *Sequencer) Run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	start := s.clk.Now()

	for i := 0; i < s.script.Len(); i++ {
		step := s.script.Step(i)

		if s.opts.Recheck != nil && !s.opts.Recheck.IsConnected() {
			s.log.Warn("[SEQ] host gone, abandoning script", "step", i+1, "of", s.script.Len())
			return
		}
		if step.Log != "" {
			s.log.Info(step.Log)
		}

		s.led.High()
		s.emit(step)
		s.led.Low()

		if step.Delay > 0 {
			_ = s.clk.Sleep(ctx, step.Delay)
		}
	}

	s.log.Debug("[SEQ] script complete", "elapsed", s.clk.Now().Sub(start).Round(time.Millisecond))
}

// emit sends one step. Errors are deliberately dropped.
func (s *Sequencer) emit(step Step) {
	switch step.Action {
	case ActionPrint:
		_, _ = s.kb.Print(step.Text)
	case ActionPrintln:
		_, _ = s.kb.Println(step.Text)
	case ActionWrite:
		_ = s.kb.Write(step.Key)
	default:
		s.log.Error("[SEQ] unknown action", "action", step.Action)
	}
}
