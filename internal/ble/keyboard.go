package ble

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chaz8081/vizard/internal/hid"
)

// PnP ID values reported in Device Information (vendor source USB-IF).
const (
	pnpVendorSource = 0x02
	pnpVendorID     = 0x05AC
	pnpProductID    = 0x820A
	pnpVersion      = 0x0210
)

// Options configures the BLE keyboard.
type Options struct {
	Name         string        // advertised local name
	Manufacturer string        // Device Information manufacturer string
	BatteryLevel uint8         // initial battery level, 0-100
	ReportDelay  time.Duration // pause after each input report (default 7ms)
	AdvertiseMax int           // max re-advertise backoff in seconds
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Name:         "Vizard Keyboard",
		Manufacturer: "Espressif",
		BatteryLevel: 100,
		ReportDelay:  7 * time.Millisecond,
		AdvertiseMax: 30,
	}
}

// Keyboard is the HID transport: a BLE peripheral that types through an
// embedded hid.Keyboard. Reports written while no host is connected are
// silently dropped.
type Keyboard struct {
	*hid.Keyboard

	adapter Adapter
	opts    Options

	connected atomic.Bool
	peer      atomic.Value // string
	leds      atomic.Uint32

	mu      sync.Mutex
	input   Characteristic
	battery Characteristic

	advertising atomic.Bool
	closed      chan struct{}
	closeOnce   sync.Once

	sleep func(time.Duration)
}

// NewKeyboard creates a BLE keyboard on adapter. Call Begin before use.
func NewKeyboard(adapter Adapter, opts Options) *Keyboard {
	if opts.Name == "" {
		opts.Name = "Vizard Keyboard"
	}
	if opts.BatteryLevel > 100 {
		opts.BatteryLevel = 100
	}
	if opts.ReportDelay < 0 {
		opts.ReportDelay = 0
	}
	if opts.AdvertiseMax <= 0 {
		opts.AdvertiseMax = 30
	}
	k := &Keyboard{
		adapter: adapter,
		opts:    opts,
		closed:  make(chan struct{}),
		sleep:   time.Sleep,
	}
	k.Keyboard = hid.NewKeyboard(k)
	return k
}

// Begin enables the stack, registers the HID, Battery and Device
// Information services and starts advertising. Called once at startup.
func (k *Keyboard) Begin() error {
	if err := k.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}

	k.adapter.SetConnectHandler(k.handleConnect)

	hidSvc := k.hidService()
	hidChars, err := k.adapter.AddService(hidSvc)
	if err != nil {
		return fmt.Errorf("ble: register HID service: %w", err)
	}
	if err := checkHandles(hidSvc, hidChars); err != nil {
		return err
	}
	batSvc := Service{
		UUID: ServiceBattery,
		Characteristics: []CharacteristicConfig{
			{UUID: CharBatteryLevel, Value: []byte{k.opts.BatteryLevel}, Flags: PermRead | PermNotify},
		},
	}
	batChars, err := k.adapter.AddService(batSvc)
	if err != nil {
		return fmt.Errorf("ble: register battery service: %w", err)
	}
	if err := checkHandles(batSvc, batChars); err != nil {
		return err
	}
	if _, err := k.adapter.AddService(k.deviceInfoService()); err != nil {
		return fmt.Errorf("ble: register device information service: %w", err)
	}

	k.mu.Lock()
	k.input = hidChars[2]
	k.battery = batChars[0]
	k.mu.Unlock()

	if err := k.adapter.Advertise(k.advertisement()); err != nil {
		return fmt.Errorf("ble: advertise: %w", err)
	}
	slog.Info("[BLE] advertising", "name", k.opts.Name)
	return nil
}

// ErrMissingCharacteristics is returned by Begin when the adapter hands
// back fewer characteristic handles than the service declared.
var ErrMissingCharacteristics = errors.New("ble: adapter returned too few characteristics")

func checkHandles(svc Service, chars []Characteristic) error {
	if len(chars) < len(svc.Characteristics) {
		return fmt.Errorf("%w: service %#04x got %d, want %d",
			ErrMissingCharacteristics, svc.UUID, len(chars), len(svc.Characteristics))
	}
	return nil
}

func (k *Keyboard) hidService() Service {
	return Service{
		UUID: ServiceHID,
		Characteristics: []CharacteristicConfig{
			// bcdHID 1.11, country 0, normally connectable.
			{UUID: CharHIDInformation, Value: []byte{0x11, 0x01, 0x00, 0x02}, Flags: PermRead},
			{UUID: CharReportMap, Value: hid.ReportMap, Flags: PermRead},
			{UUID: CharReport, Value: make([]byte, 8), Flags: PermRead | PermNotify},
			{
				UUID:    CharReport,
				Value:   []byte{0},
				Flags:   PermRead | PermWrite | PermWriteWithoutResponse,
				OnWrite: k.handleLEDs,
			},
			// Report protocol.
			{UUID: CharProtocolMode, Value: []byte{0x01}, Flags: PermRead | PermWriteWithoutResponse},
			{
				UUID:    CharHIDControlPoint,
				Flags:   PermWriteWithoutResponse,
				OnWrite: k.handleControlPoint,
			},
		},
	}
}

func (k *Keyboard) deviceInfoService() Service {
	pnp := []byte{
		pnpVendorSource,
		byte(pnpVendorID & 0xFF), byte(pnpVendorID >> 8),
		byte(pnpProductID & 0xFF), byte(pnpProductID >> 8),
		byte(pnpVersion & 0xFF), byte(pnpVersion >> 8),
	}
	return Service{
		UUID: ServiceDeviceInformation,
		Characteristics: []CharacteristicConfig{
			{UUID: CharManufacturerName, Value: []byte(k.opts.Manufacturer), Flags: PermRead},
			{UUID: CharPnPID, Value: pnp, Flags: PermRead},
		},
	}
}

func (k *Keyboard) advertisement() AdvertisementOptions {
	return AdvertisementOptions{
		LocalName:    k.opts.Name,
		ServiceUUIDs: []uint16{ServiceHID},
	}
}

// IsConnected reports whether a host is currently connected. It never
// blocks and never fails.
func (k *Keyboard) IsConnected() bool {
	return k.connected.Load()
}

// Peer returns the address of the connected host, or "".
func (k *Keyboard) Peer() string {
	if !k.connected.Load() {
		return ""
	}
	p, _ := k.peer.Load().(string)
	return p
}

// HostLEDs returns the lock-key LED state last written by the host.
func (k *Keyboard) HostLEDs() hid.LEDs {
	return hid.LEDs(k.leds.Load())
}

// WriteReport notifies the host with one input report. With no host
// connected the report is dropped and nil is returned.
func (k *Keyboard) WriteReport(r hid.Report) error {
	if !k.connected.Load() {
		return nil
	}
	k.mu.Lock()
	input := k.input
	k.mu.Unlock()
	if input == nil {
		return nil
	}

	if _, err := input.Write(r.Bytes()); err != nil {
		return fmt.Errorf("ble: write input report: %w", err)
	}
	if k.opts.ReportDelay > 0 {
		k.sleep(k.opts.ReportDelay)
	}
	return nil
}

// SetBatteryLevel updates the Battery Level characteristic.
func (k *Keyboard) SetBatteryLevel(level uint8) error {
	if level > 100 {
		level = 100
	}
	k.mu.Lock()
	battery := k.battery
	k.mu.Unlock()
	if battery == nil {
		return fmt.Errorf("ble: battery service not registered")
	}
	if _, err := battery.Write([]byte{level}); err != nil {
		return fmt.Errorf("ble: write battery level: %w", err)
	}
	return nil
}

// Close stops advertising and any pending re-advertise loop.
func (k *Keyboard) Close() error {
	k.closeOnce.Do(func() { close(k.closed) })
	k.connected.Store(false)
	return k.adapter.StopAdvertising()
}

func (k *Keyboard) handleConnect(peer string, connected bool) {
	if connected {
		k.peer.Store(peer)
		k.connected.Store(true)
		slog.Info("[BLE] host connected", "peer", peer)
		return
	}

	k.connected.Store(false)
	slog.Warn("[BLE] host disconnected, advertising again", "peer", peer)
	if k.advertising.CompareAndSwap(false, true) {
		go k.advertiseLoop()
	}
}

func (k *Keyboard) handleLEDs(value []byte) {
	if len(value) == 0 {
		return
	}
	k.leds.Store(uint32(value[0]))
	slog.Debug("[BLE] host LEDs", "state", fmt.Sprintf("%05b", value[0]))
}

func (k *Keyboard) handleControlPoint(value []byte) {
	if len(value) == 0 {
		return
	}
	switch value[0] {
	case 0x00:
		slog.Debug("[BLE] host suspended")
	case 0x01:
		slog.Debug("[BLE] host resumed")
	}
}

// backoffDelay returns the re-advertise delay for attempt n, capped at maxSeconds.
func backoffDelay(attempt int, maxSeconds int) time.Duration {
	max := time.Duration(maxSeconds) * time.Second
	if attempt >= 30 {
		return max
	}
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > max {
		return max
	}
	return delay
}

// advertiseLoop restarts advertising with exponential backoff until it
// succeeds, a host connects, or the keyboard is closed.
func (k *Keyboard) advertiseLoop() {
	defer k.advertising.Store(false)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, k.opts.AdvertiseMax)
			slog.Info("[BLE] advertise backoff", "attempt", attempt+1, "delay", delay)
			select {
			case <-k.closed:
				return
			case <-time.After(delay):
			}
		}

		select {
		case <-k.closed:
			return
		default:
		}
		if k.connected.Load() {
			return
		}

		if err := k.adapter.Advertise(k.advertisement()); err != nil {
			slog.Warn("[BLE] advertise failed", "error", err, "attempt", attempt+1)
			continue
		}
		slog.Info("[BLE] advertising", "name", k.opts.Name)
		return
	}
}
