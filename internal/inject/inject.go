// Package inject provides a local stand-in for the BLE transport: it types
// into the active application on this machine using robotgo, and holds a
// simulated host connection flag that a hotkey toggles.
package inject

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/go-vgo/robotgo"

	"github.com/chaz8081/vizard/internal/hid"
)

// Typist performs the actual desktop input. The robotgo implementation is
// the default; tests substitute a recorder.
type Typist interface {
	Type(text string) error
	Paste(text string) error
	Tap(key string) error
}

// LocalKeyboard is a transport that types on this machine. Emissions while
// the simulated host is disconnected are silent no-ops, as on the device.
type LocalKeyboard struct {
	method    string // "type" or "paste"
	typist    Typist
	connected atomic.Bool
}

// NewLocalKeyboard creates a LocalKeyboard with the given method.
// method must be "type" (keystroke simulation) or "paste" (clipboard).
func NewLocalKeyboard(method string) *LocalKeyboard {
	return NewLocalKeyboardWith(method, robotgoTypist{})
}

// NewLocalKeyboardWith creates a LocalKeyboard on a custom Typist.
// Panics if typist is nil (programmer error).
func NewLocalKeyboardWith(method string, typist Typist) *LocalKeyboard {
	if typist == nil {
		panic("inject: NewLocalKeyboardWith called with nil typist")
	}
	return &LocalKeyboard{method: method, typist: typist}
}

// IsConnected reports the simulated host connection.
func (l *LocalKeyboard) IsConnected() bool {
	return l.connected.Load()
}

// SetConnected sets the simulated host connection.
func (l *LocalKeyboard) SetConnected(connected bool) {
	if l.connected.Swap(connected) != connected {
		slog.Info("[LOCAL] simulated host", "connected", connected)
	}
}

// Toggle flips the simulated host connection and returns the new state.
func (l *LocalKeyboard) Toggle() bool {
	for {
		old := l.connected.Load()
		if l.connected.CompareAndSwap(old, !old) {
			slog.Info("[LOCAL] simulated host", "connected", !old)
			return !old
		}
	}
}

// Print types text, dropping bytes a US keyboard cannot produce.
func (l *LocalKeyboard) Print(text string) (int, error) {
	if !l.connected.Load() {
		return 0, nil
	}
	text = typeable(text)
	if text == "" {
		return 0, nil
	}

	var err error
	switch l.method {
	case "paste":
		err = l.typist.Paste(text)
	default: // "type"
		err = l.typist.Type(text)
	}
	if err != nil {
		return 0, fmt.Errorf("inject: print: %w", err)
	}
	return len(text), nil
}

// Println types text and then Enter.
func (l *LocalKeyboard) Println(text string) (int, error) {
	n, err := l.Print(text)
	if err != nil || !l.connected.Load() {
		return n, err
	}
	if err := l.Write(hid.KeyEnter); err != nil {
		return n, err
	}
	return n + 1, nil
}

// Write taps a single non-printing key.
func (l *LocalKeyboard) Write(k hid.Key) error {
	if !l.connected.Load() {
		return nil
	}
	name, ok := keyNames[k]
	if !ok {
		return fmt.Errorf("inject: no desktop key for usage %#02x", uint8(k))
	}
	if err := l.typist.Tap(name); err != nil {
		return fmt.Errorf("inject: tap %s: %w", name, err)
	}
	return nil
}

// keyNames maps HID usages to robotgo key names.
var keyNames = map[hid.Key]string{
	hid.KeyEnter:     "enter",
	hid.KeyEscape:    "esc",
	hid.KeyBackspace: "backspace",
	hid.KeyTab:       "tab",
	hid.KeySpace:     "space",
	hid.KeyDelete:    "delete",
	hid.KeyHome:      "home",
	hid.KeyEnd:       "end",
	hid.KeyPageUp:    "pageup",
	hid.KeyPageDown:  "pagedown",
	hid.KeyLeft:      "left",
	hid.KeyRight:     "right",
	hid.KeyUp:        "up",
	hid.KeyDown:      "down",
}

// typeable keeps printable ASCII, tab and newline; CR is dropped the same
// way the HID encoder drops it.
func typeable(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r >= 0x20 && r < 0x7F:
			return r
		default:
			return -1
		}
	}, text)
}

// robotgoTypist drives the desktop through robotgo.
type robotgoTypist struct{}

// Type simulates individual keystrokes. Preserves clipboard contents
// but is slower for long text.
func (robotgoTypist) Type(text string) error {
	robotgo.Type(text)
	return nil
}

// Paste copies text to clipboard and pastes it with Cmd+V.
// Faster for long text but overwrites the clipboard.
func (robotgoTypist) Paste(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("write to clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("key tap paste: %w", err)
	}

	// Restore previous clipboard (best effort)
	_ = robotgo.WriteAll(prev)
	return nil
}

func (robotgoTypist) Tap(key string) error {
	return robotgo.KeyTap(key)
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
