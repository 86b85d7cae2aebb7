// Package monitor answers "is a host connected right now" for the
// keystroke loop. The answer is never cached: every call re-queries the
// transport, and any failure to determine the state reads as disconnected.
package monitor

import (
	"log/slog"
)

// Source is a transport that can report its host connection.
type Source interface {
	IsConnected() bool
}

// StatusReporter is a Source that can also explain why it could not
// determine the state. When a Source implements it, Monitor prefers it.
type StatusReporter interface {
	ConnectionStatus() (bool, error)
}

// Monitor gates the keystroke sequencer on the host connection.
type Monitor struct {
	src Source
}

// New creates a Monitor over src.
// Panics if src is nil (programmer error).
func New(src Source) *Monitor {
	if src == nil {
		panic("monitor: New called with nil source")
	}
	return &Monitor{src: src}
}

// IsConnected queries the source once. Errors and panics from the source
// are logged and reported as not connected.
func (m *Monitor) IsConnected() (connected bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("[MON] connection query panicked, treating as disconnected", "panic", r)
			connected = false
		}
	}()

	if rep, ok := m.src.(StatusReporter); ok {
		up, err := rep.ConnectionStatus()
		if err != nil {
			slog.Debug("[MON] connection query failed, treating as disconnected", "error", err)
			return false
		}
		return up
	}
	return m.src.IsConnected()
}
