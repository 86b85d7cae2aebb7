package ble

import (
	"errors"
	"testing"
	"time"

	"github.com/chaz8081/vizard/internal/hid"
)

func zeroDelayOpts() Options {
	opts := DefaultOptions()
	opts.ReportDelay = 0
	return opts
}

func mustBegin(t *testing.T, adapter *mockAdapter, opts Options) *Keyboard {
	t.Helper()
	kb := NewKeyboard(adapter, opts)
	if err := kb.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return kb
}

func TestBeginRegistersServicesAndAdvertises(t *testing.T) {
	adapter := newMockAdapter()
	mustBegin(t, adapter, zeroDelayOpts())

	if !adapter.enabled {
		t.Error("adapter should be enabled after Begin()")
	}
	for _, uuid := range []uint16{ServiceHID, ServiceBattery, ServiceDeviceInformation} {
		if _, ok := adapter.service(uuid); !ok {
			t.Errorf("service %#04x not registered", uuid)
		}
	}
	svc, _ := adapter.service(ServiceHID)
	if string(svc.Characteristics[1].Value) != string(hid.ReportMap) {
		t.Error("Report Map characteristic should serve hid.ReportMap")
	}
	if adapter.advertiseCount() != 1 {
		t.Errorf("advertisements = %d, want 1", adapter.advertiseCount())
	}
}

func TestBeginEnableFailure(t *testing.T) {
	adapter := newMockAdapter()
	adapter.enableErr = errors.New("no controller")
	kb := NewKeyboard(adapter, zeroDelayOpts())

	if err := kb.Begin(); err == nil {
		t.Fatal("Begin() should fail when the adapter cannot be enabled")
	}
}

func TestConnectionFlagFollowsHandler(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())

	if kb.IsConnected() {
		t.Fatal("keyboard should start disconnected")
	}
	adapter.SimulateConnect("11:22:33:44:55:66", true)
	if !kb.IsConnected() {
		t.Error("IsConnected() = false after connect")
	}
	if kb.Peer() != "11:22:33:44:55:66" {
		t.Errorf("Peer() = %q", kb.Peer())
	}
	adapter.SimulateConnect("11:22:33:44:55:66", false)
	if kb.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
	if kb.Peer() != "" {
		t.Errorf("Peer() = %q after disconnect, want empty", kb.Peer())
	}
}

func TestPrintWhileDisconnectedIsSilent(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())

	if _, err := kb.Print("Hello"); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if n := len(adapter.char(ServiceHID, 2).Writes()); n != 0 {
		t.Errorf("got %d input reports while disconnected, want 0", n)
	}
}

func TestPrintWhileConnectedNotifiesReports(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())
	adapter.SimulateConnect("11:22:33:44:55:66", true)

	if _, err := kb.Print("Hi"); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if err := kb.Write(hid.KeyEnter); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	writes := adapter.char(ServiceHID, 2).Writes()
	if len(writes) != 6 {
		t.Fatalf("got %d input reports, want 6", len(writes))
	}
	if writes[0][0] != byte(hid.ModLeftShift) || writes[0][2] != 0x0B {
		t.Errorf("first report = % x, want shift+H", writes[0])
	}
	if writes[4][2] != byte(hid.KeyEnter) {
		t.Errorf("fifth report = % x, want Enter", writes[4])
	}
	for _, w := range writes {
		if len(w) != 8 {
			t.Errorf("report length = %d, want 8", len(w))
		}
	}
}

func TestWriteReportError(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())
	adapter.SimulateConnect("peer", true)
	adapter.char(ServiceHID, 2).err = errors.New("notify failed")

	if err := kb.Write(hid.KeyEnter); err == nil {
		t.Error("Write() should surface characteristic errors")
	}
}

func TestReportDelayAppliedPerReport(t *testing.T) {
	adapter := newMockAdapter()
	opts := DefaultOptions()
	kb := NewKeyboard(adapter, opts)
	var slept []time.Duration
	kb.sleep = func(d time.Duration) { slept = append(slept, d) }
	if err := kb.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	adapter.SimulateConnect("peer", true)

	_ = kb.Write(hid.KeyEnter)

	if len(slept) != 2 || slept[0] != 7*time.Millisecond {
		t.Errorf("slept = %v, want [7ms 7ms]", slept)
	}
}

func TestHostLEDs(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())

	svc, _ := adapter.service(ServiceHID)
	svc.Characteristics[3].OnWrite([]byte{byte(hid.LEDCapsLock | hid.LEDNumLock)})

	if kb.HostLEDs()&hid.LEDCapsLock == 0 {
		t.Error("caps lock LED should be set")
	}
	if kb.HostLEDs()&hid.LEDScrollLock != 0 {
		t.Error("scroll lock LED should be clear")
	}
}

func TestSetBatteryLevel(t *testing.T) {
	adapter := newMockAdapter()
	kb := mustBegin(t, adapter, zeroDelayOpts())

	if err := kb.SetBatteryLevel(150); err != nil {
		t.Fatalf("SetBatteryLevel() error = %v", err)
	}
	writes := adapter.char(ServiceBattery, 0).Writes()
	if len(writes) != 1 || writes[0][0] != 100 {
		t.Errorf("battery writes = %v, want [[100]]", writes)
	}
}

func TestSetBatteryLevelBeforeBegin(t *testing.T) {
	kb := NewKeyboard(newMockAdapter(), zeroDelayOpts())
	if err := kb.SetBatteryLevel(50); err == nil {
		t.Error("SetBatteryLevel() before Begin() should fail")
	}
}

func TestDeviceInformationPnPID(t *testing.T) {
	adapter := newMockAdapter()
	mustBegin(t, adapter, zeroDelayOpts())

	svc, ok := adapter.service(ServiceDeviceInformation)
	if !ok {
		t.Fatal("device information service not registered")
	}
	var pnp []byte
	for _, c := range svc.Characteristics {
		if c.UUID == CharPnPID {
			pnp = c.Value
		}
	}
	want := []byte{0x02, 0xAC, 0x05, 0x0A, 0x82, 0x10, 0x02}
	if string(pnp) != string(want) {
		t.Errorf("PnP ID = % X, want % X", pnp, want)
	}
}

func TestBeginMissingCharacteristics(t *testing.T) {
	tests := []struct {
		name    string
		service uint16
		handles int
	}{
		{"HID without input report", ServiceHID, 2},
		{"battery without level", ServiceBattery, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newMockAdapter()
			adapter.short = map[uint16]int{tt.service: tt.handles}
			kb := NewKeyboard(adapter, zeroDelayOpts())

			err := kb.Begin()
			if !errors.Is(err, ErrMissingCharacteristics) {
				t.Fatalf("Begin() error = %v, want ErrMissingCharacteristics", err)
			}
			if adapter.advertiseCount() != 0 {
				t.Error("should not advertise after a failed Begin()")
			}
		})
	}
}
