package monitor

import (
	"errors"
	"testing"
)

type fakeSource struct {
	connected bool
	calls     int
}

func (f *fakeSource) IsConnected() bool {
	f.calls++
	return f.connected
}

type panickySource struct{}

func (panickySource) IsConnected() bool { panic("transport fault") }

type reportingSource struct {
	connected bool
	err       error
}

func (r *reportingSource) IsConnected() bool { return true }

func (r *reportingSource) ConnectionStatus() (bool, error) {
	return r.connected, r.err
}

func TestIsConnectedRequeriesEveryCall(t *testing.T) {
	src := &fakeSource{connected: true}
	m := New(src)

	if !m.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	src.connected = false
	if m.IsConnected() {
		t.Error("IsConnected() = true after source changed, want false (no caching)")
	}
	if src.calls != 2 {
		t.Errorf("source queried %d times, want 2", src.calls)
	}
}

func TestIsConnectedPanicIsDisconnected(t *testing.T) {
	m := New(panickySource{})

	if m.IsConnected() {
		t.Error("IsConnected() = true on panicking source, want false")
	}
}

func TestIsConnectedPrefersStatusReporter(t *testing.T) {
	tests := []struct {
		name string
		src  *reportingSource
		want bool
	}{
		{name: "connected", src: &reportingSource{connected: true}, want: true},
		{name: "disconnected", src: &reportingSource{connected: false}, want: false},
		{name: "query error", src: &reportingSource{connected: true, err: errors.New("dbus: no reply")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.src).IsConnected(); got != tt.want {
				t.Errorf("IsConnected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewNilSourcePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) should panic")
		}
	}()
	New(nil)
}
