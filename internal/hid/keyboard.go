// Package hid encodes keyboard activity as HID input reports. It knows
// nothing about the transport: reports are handed to a ReportWriter, which
// for the device is the BLE Report characteristic.
package hid

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRollover is returned when a seventh non-modifier key is pressed.
var ErrRollover = errors.New("hid: all six key slots in use")

// ReportWriter delivers one encoded input report to the host.
type ReportWriter interface {
	WriteReport(r Report) error
}

// Keyboard tracks pressed keys and emits a report on every change, the way
// a physical keyboard's firmware does. Safe for concurrent use.
type Keyboard struct {
	w ReportWriter

	mu     sync.Mutex
	report Report
}

// NewKeyboard creates a Keyboard that writes reports to w.
// Panics if w is nil (programmer error).
func NewKeyboard(w ReportWriter) *Keyboard {
	if w == nil {
		panic("hid: NewKeyboard called with nil writer")
	}
	return &Keyboard{w: w}
}

// Press adds k to the held set and sends the resulting report.
// Pressing a key that is already held sends nothing.
func (kb *Keyboard) Press(k Key) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.press(k, 0)
}

// Release removes k from the held set and sends the resulting report.
// Releasing a key that is not held sends nothing.
func (kb *Keyboard) Release(k Key) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.release(k, 0)
}

// ReleaseAll clears every key and modifier and sends an empty report.
func (kb *Keyboard) ReleaseAll() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.report = Report{}
	return kb.w.WriteReport(kb.report)
}

// Write taps a single key: one press report and one release report.
func (kb *Keyboard) Write(k Key) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if err := kb.press(k, 0); err != nil {
		return err
	}
	return kb.release(k, 0)
}

// Print types text one byte at a time, each as a press and a release.
// Bytes with no key on a US layout are skipped. It returns the number of
// bytes actually typed.
func (kb *Keyboard) Print(text string) (int, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	n := 0
	for i := 0; i < len(text); i++ {
		key, shift, ok := lookupASCII(text[i])
		if !ok {
			continue
		}
		var mod Modifier
		if shift {
			mod = ModLeftShift
		}
		if err := kb.press(key, mod); err != nil {
			return n, fmt.Errorf("hid: print %q: %w", text[i], err)
		}
		if err := kb.release(key, mod); err != nil {
			return n, fmt.Errorf("hid: print %q: %w", text[i], err)
		}
		n++
	}
	return n, nil
}

// Println types text followed by "\r\n". The carriage return has no key
// and is skipped, so the line ends with a single Enter.
func (kb *Keyboard) Println(text string) (int, error) {
	return kb.Print(text + "\r\n")
}

// Held returns a copy of the current report.
func (kb *Keyboard) Held() Report {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.report
}

// press must be called with mu held.
func (kb *Keyboard) press(k Key, mod Modifier) error {
	before := kb.report
	if k.IsModifier() {
		kb.report.Modifiers |= k.Modifier()
	} else if k != KeyNone && !kb.holds(k) {
		slot := -1
		for i, held := range kb.report.Keys {
			if held == KeyNone {
				slot = i
				break
			}
		}
		if slot < 0 {
			return ErrRollover
		}
		kb.report.Keys[slot] = k
	}
	kb.report.Modifiers |= mod
	if kb.report == before {
		return nil
	}
	return kb.w.WriteReport(kb.report)
}

// release must be called with mu held.
func (kb *Keyboard) release(k Key, mod Modifier) error {
	before := kb.report
	if k.IsModifier() {
		kb.report.Modifiers &^= k.Modifier()
	} else {
		for i, held := range kb.report.Keys {
			if held == k {
				kb.report.Keys[i] = KeyNone
			}
		}
	}
	kb.report.Modifiers &^= mod
	if kb.report == before {
		return nil
	}
	return kb.w.WriteReport(kb.report)
}

func (kb *Keyboard) holds(k Key) bool {
	for _, held := range kb.report.Keys {
		if held == k {
			return true
		}
	}
	return false
}
