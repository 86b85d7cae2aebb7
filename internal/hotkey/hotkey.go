// Package hotkey provides a global hotkey listener using gohook. Each
// press of the combo alternately connects and disconnects the local
// transport's simulated host.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType indicates whether the simulated host should connect or
// disconnect.
type EventType int

const (
	// EventConnect signals that the simulated host connected.
	EventConnect EventType = iota
	// EventDisconnect signals that the simulated host went away.
	EventDisconnect
)

func (e EventType) String() string {
	if e == EventConnect {
		return "connect"
	}
	return "disconnect"
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// Listener manages a global hotkey and emits connect/disconnect events.
type Listener struct {
	keys []string
	ch   chan Event
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	connected bool
}

// NewListener creates a Listener for the given key combo. keys should be
// lowercase key names (e.g., ["ctrl", "shift", "k"]). connected is the
// simulated host state before the first press.
func NewListener(keys []string, connected bool) *Listener {
	return &Listener{
		keys:      keys,
		ch:        make(chan Event, 16),
		done:      make(chan struct{}),
		connected: connected,
	}
}

// Events returns the channel that receives hotkey events.
// The channel is closed when the listener stops.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start begins listening for the global hotkey.
// This function blocks until Stop is called. Run it in a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		l.press()
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// press emits the event opposite to the current state without blocking.
// The state flips only once the event is queued.
func (l *Listener) press() {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{Type: EventConnect}
	if l.connected {
		ev.Type = EventDisconnect
	}
	select {
	case l.ch <- ev:
		l.connected = !l.connected
	default: // don't block if channel is full
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
