package hid

import (
	"errors"
	"testing"
)

// recordingWriter captures every report written.
type recordingWriter struct {
	reports []Report
	err     error
}

func (w *recordingWriter) WriteReport(r Report) error {
	if w.err != nil {
		return w.err
	}
	w.reports = append(w.reports, r)
	return nil
}

// typed reconstructs the text from press reports, ignoring releases.
func typed(reports []Report) string {
	var out []byte
	for _, r := range reports {
		if r.Keys[0] == KeyNone {
			continue
		}
		for c := 0; c < 128; c++ {
			k, shift, ok := lookupASCII(byte(c))
			if ok && k == r.Keys[0] && shift == (r.Modifiers&ModLeftShift != 0) {
				out = append(out, byte(c))
				break
			}
		}
	}
	return string(out)
}

func TestPrintOneReportPairPerCharacter(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	n, err := kb.Print("Hello from ESP32")
	if err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if n != 16 {
		t.Errorf("Print() = %d, want 16", n)
	}
	if len(w.reports) != 32 {
		t.Fatalf("got %d reports, want 32 (press+release per char)", len(w.reports))
	}
	for i := 1; i < len(w.reports); i += 2 {
		if !w.reports[i].Empty() {
			t.Errorf("report %d = %+v, want release", i, w.reports[i])
		}
	}
	if got := typed(w.reports); got != "Hello from ESP32" {
		t.Errorf("typed = %q, want %q", got, "Hello from ESP32")
	}
}

func TestPrintShiftedCharacters(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	_, _ = kb.Print("H!")

	if len(w.reports) != 4 {
		t.Fatalf("got %d reports, want 4", len(w.reports))
	}
	if w.reports[0].Modifiers != ModLeftShift || w.reports[0].Keys[0] != 0x0B {
		t.Errorf("H press = %+v, want shift + 0x0B", w.reports[0])
	}
	if w.reports[2].Modifiers != ModLeftShift || w.reports[2].Keys[0] != 0x1E {
		t.Errorf("! press = %+v, want shift + 0x1E", w.reports[2])
	}
}

func TestPrintlnEndsWithSingleEnter(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	n, err := kb.Println("Great work!!!")
	if err != nil {
		t.Fatalf("Println() error = %v", err)
	}
	// 13 visible characters plus LF; CR has no key.
	if n != 14 {
		t.Errorf("Println() = %d, want 14", n)
	}
	last := w.reports[len(w.reports)-2]
	if last.Keys[0] != KeyEnter {
		t.Errorf("last press = %+v, want Enter", last)
	}
	enters := 0
	for _, r := range w.reports {
		if r.Keys[0] == KeyEnter {
			enters++
		}
	}
	if enters != 1 {
		t.Errorf("Enter pressed %d times, want 1", enters)
	}
}

func TestPrintSkipsUnmappedBytes(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	n, _ := kb.Print("a\x01\x7fé")
	if n != 1 {
		t.Errorf("Print() = %d, want 1", n)
	}
	if len(w.reports) != 2 {
		t.Errorf("got %d reports, want 2", len(w.reports))
	}
}

func TestWriteEnter(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	if err := kb.Write(KeyEnter); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(w.reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(w.reports))
	}
	if w.reports[0].Keys[0] != KeyEnter {
		t.Errorf("press = %+v, want Enter", w.reports[0])
	}
	if !w.reports[1].Empty() {
		t.Errorf("release = %+v, want empty", w.reports[1])
	}
}

func TestPressModifierAndRollover(t *testing.T) {
	w := &recordingWriter{}
	kb := NewKeyboard(w)

	if err := kb.Press(KeyLeftCtrl); err != nil {
		t.Fatalf("Press(ctrl) error = %v", err)
	}
	if kb.Held().Modifiers != ModLeftCtrl {
		t.Errorf("Modifiers = %08b, want ctrl", kb.Held().Modifiers)
	}
	for k := Key(0x04); k < 0x0A; k++ {
		if err := kb.Press(k); err != nil {
			t.Fatalf("Press(%#x) error = %v", k, err)
		}
	}
	if err := kb.Press(0x0A); !errors.Is(err, ErrRollover) {
		t.Errorf("seventh Press() error = %v, want ErrRollover", err)
	}
	// Repeated press of a held key is silent.
	before := len(w.reports)
	_ = kb.Press(0x04)
	if len(w.reports) != before {
		t.Error("pressing a held key should not send a report")
	}
	if err := kb.ReleaseAll(); err != nil {
		t.Fatalf("ReleaseAll() error = %v", err)
	}
	if !kb.Held().Empty() {
		t.Errorf("Held() = %+v after ReleaseAll, want empty", kb.Held())
	}
}

func TestPrintPropagatesWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("link lost")}
	kb := NewKeyboard(w)

	n, err := kb.Print("abc")
	if err == nil {
		t.Fatal("Print() should return writer error")
	}
	if n != 0 {
		t.Errorf("Print() = %d, want 0", n)
	}
}

func TestReportBytes(t *testing.T) {
	r := Report{Modifiers: ModLeftShift, Keys: [6]Key{0x0B}}
	b := r.Bytes()
	want := []byte{0x02, 0x00, 0x0B, 0, 0, 0, 0, 0}
	if string(b) != string(want) {
		t.Errorf("Bytes() = % x, want % x", b, want)
	}
}

func TestModifierBits(t *testing.T) {
	if KeyLeftShift.Modifier() != ModLeftShift {
		t.Errorf("KeyLeftShift.Modifier() = %08b", KeyLeftShift.Modifier())
	}
	if KeyRightGUI.Modifier() != ModRightGUI {
		t.Errorf("KeyRightGUI.Modifier() = %08b", KeyRightGUI.Modifier())
	}
	if KeyEnter.Modifier() != 0 {
		t.Error("KeyEnter should not be a modifier")
	}
}
