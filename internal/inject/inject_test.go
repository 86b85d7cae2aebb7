package inject

import (
	"errors"
	"testing"

	"github.com/chaz8081/vizard/internal/hid"
)

// mockTypist records desktop input.
type mockTypist struct {
	typed  []string
	pasted []string
	tapped []string
	err    error
}

func (m *mockTypist) Type(text string) error {
	m.typed = append(m.typed, text)
	return m.err
}

func (m *mockTypist) Paste(text string) error {
	m.pasted = append(m.pasted, text)
	return m.err
}

func (m *mockTypist) Tap(key string) error {
	m.tapped = append(m.tapped, key)
	return m.err
}

func TestLocalKeyboardDisconnectedIsSilent(t *testing.T) {
	mock := &mockTypist{}
	kb := NewLocalKeyboardWith("type", mock)

	if _, err := kb.Print("hello"); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if err := kb.Write(hid.KeyEnter); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(mock.typed)+len(mock.tapped) != 0 {
		t.Errorf("typed = %v tapped = %v, want nothing while disconnected", mock.typed, mock.tapped)
	}
}

func TestLocalKeyboardTypesScript(t *testing.T) {
	mock := &mockTypist{}
	kb := NewLocalKeyboardWith("type", mock)
	kb.SetConnected(true)

	_, _ = kb.Print("Hello from ESP32")
	_ = kb.Write(hid.KeyEnter)
	n, err := kb.Println("Great work!!!")
	if err != nil {
		t.Fatalf("Println() error = %v", err)
	}
	if n != 14 {
		t.Errorf("Println() = %d, want 14", n)
	}

	if len(mock.typed) != 2 || mock.typed[0] != "Hello from ESP32" || mock.typed[1] != "Great work!!!" {
		t.Errorf("typed = %q", mock.typed)
	}
	if len(mock.tapped) != 2 || mock.tapped[0] != "enter" || mock.tapped[1] != "enter" {
		t.Errorf("tapped = %q, want two enters", mock.tapped)
	}
}

func TestLocalKeyboardPasteMethod(t *testing.T) {
	mock := &mockTypist{}
	kb := NewLocalKeyboardWith("paste", mock)
	kb.SetConnected(true)

	_, _ = kb.Print("hello world")

	if len(mock.pasted) != 1 || mock.pasted[0] != "hello world" {
		t.Errorf("pasted = %q", mock.pasted)
	}
	if len(mock.typed) != 0 {
		t.Errorf("typed = %q, want nothing in paste mode", mock.typed)
	}
}

func TestLocalKeyboardDropsUntypeable(t *testing.T) {
	mock := &mockTypist{}
	kb := NewLocalKeyboardWith("type", mock)
	kb.SetConnected(true)

	n, _ := kb.Print("a\rb\x01é")
	if n != 2 || len(mock.typed) != 1 || mock.typed[0] != "ab" {
		t.Errorf("Print() = %d, typed = %q; want 2, [ab]", n, mock.typed)
	}
}

func TestLocalKeyboardErrors(t *testing.T) {
	mock := &mockTypist{err: errors.New("no display")}
	kb := NewLocalKeyboardWith("type", mock)
	kb.SetConnected(true)

	if _, err := kb.Print("x"); err == nil {
		t.Error("Print() should surface typist errors")
	}
	if err := kb.Write(hid.KeyEnter); err == nil {
		t.Error("Write() should surface typist errors")
	}
	if err := kb.Write(hid.KeyF1); err == nil {
		t.Error("Write() of an unmapped key should fail")
	}
}

func TestLocalKeyboardToggle(t *testing.T) {
	kb := NewLocalKeyboardWith("type", &mockTypist{})

	if !kb.Toggle() || !kb.IsConnected() {
		t.Error("first Toggle() should connect")
	}
	if kb.Toggle() || kb.IsConnected() {
		t.Error("second Toggle() should disconnect")
	}
}
