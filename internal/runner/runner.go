// Package runner is the device's outer loop: poll the host connection,
// run one script pass when connected, then wait a fixed idle delay. It
// never stops on its own.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/chaz8081/vizard/internal/clock"
)

// IdleDelay is the wait after every iteration, connected or not.
const IdleDelay = 5 * time.Second

// State is the loop's position in its state machine.
type State int32

const (
	StateIdle State = iota
	StateCheckConnection
	StateRunScript
	StateIdleWait
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCheckConnection:
		return "CHECK_CONNECTION"
	case StateRunScript:
		return "RUN_SCRIPT"
	case StateIdleWait:
		return "IDLE_WAIT"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Monitor reports the host connection.
type Monitor interface {
	IsConnected() bool
}

// Script performs one full keystroke pass.
type Script interface {
	Run(ctx context.Context)
}

// Options configures the Loop.
type Options struct {
	IdleDelay time.Duration // default IdleDelay
	Logger    *slog.Logger  // default slog.Default()
	// OnState, if set, is called on every state transition.
	OnState func(State)
}

// Loop composes the connection monitor and the script.
type Loop struct {
	mon    Monitor
	script Script
	clk    clock.Clock
	opts   Options
	log    *slog.Logger

	state      atomic.Int32
	iterations atomic.Uint64
	passes     atomic.Uint64
}

// New creates a Loop in StateIdle.
// Panics if any dependency is nil (programmer error).
func New(mon Monitor, script Script, clk clock.Clock, opts Options) *Loop {
	if mon == nil || script == nil || clk == nil {
		panic("runner: New called with nil dependency")
	}
	if opts.IdleDelay <= 0 {
		opts.IdleDelay = IdleDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{mon: mon, script: script, clk: clk, opts: opts, log: logger}
}

// State returns the current state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Iterations returns how many iterations have completed their idle wait.
func (l *Loop) Iterations() uint64 { return l.iterations.Load() }

// Passes returns how many script passes have run.
func (l *Loop) Passes() uint64 { return l.passes.Load() }

// Run iterates until ctx is cancelled, which can only take effect during
// the idle wait. On the device ctx is never cancelled and Run never
// returns.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Iterate(ctx); err != nil {
			l.setState(StateIdle)
			return err
		}
	}
}

// Iterate performs one CHECK_CONNECTION step, the script pass if a host
// is connected, and the idle wait. It returns a non-nil error only when
// ctx is cancelled during the wait.
func (l *Loop) Iterate(ctx context.Context) error {
	l.setState(StateCheckConnection)
	if l.mon.IsConnected() {
		l.log.Info("[+] Connected")
		l.setState(StateRunScript)
		l.script.Run(ctx)
		l.passes.Add(1)
	}

	l.setState(StateIdleWait)
	l.log.Info(waitingMessage(l.opts.IdleDelay))
	if err := l.clk.Sleep(ctx, l.opts.IdleDelay); err != nil {
		return err
	}
	l.iterations.Add(1)
	return nil
}

// waitingMessage renders the idle-wait line. Whole seconds keep the
// device's "Waiting 5 seconds" wording; anything else prints the duration.
func waitingMessage(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("Waiting %d seconds to connection...", int64(d/time.Second))
	}
	return fmt.Sprintf("Waiting %v to connection...", d)
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	if l.opts.OnState != nil {
		l.opts.OnState(s)
	}
}
