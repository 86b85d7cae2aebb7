//go:build !tinygo

package ble

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBus         = "org.bluez"
	bluezDeviceIface = "org.bluez.Device1"
	propsIface       = "org.freedesktop.DBus.Properties"
	objectManager    = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
)

// BlueZStatus answers "is the host connected" from BlueZ over the system
// D-Bus instead of the GATT connect callback. It is used on Linux when the
// keyboard runs as a hosted peripheral and BlueZ owns the link.
type BlueZStatus struct {
	conn    *dbus.Conn
	adapter string // e.g. "hci0"
	host    string // bonded host MAC, or "" for any device on the adapter
}

// NewBlueZStatus connects to the system bus. host may be empty, in which
// case any connected device on adapter counts.
func NewBlueZStatus(adapter, host string) (*BlueZStatus, error) {
	if adapter == "" {
		adapter = "hci0"
	}
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("ble: connect to system bus: %w", err)
	}
	return &BlueZStatus{conn: conn, adapter: adapter, host: strings.ToUpper(host)}, nil
}

// ConnectionStatus queries BlueZ. Any D-Bus failure is returned as an error.
func (b *BlueZStatus) ConnectionStatus() (bool, error) {
	if b.host != "" {
		return b.deviceConnected()
	}
	return b.anyConnected()
}

// IsConnected is ConnectionStatus with errors read as disconnected.
func (b *BlueZStatus) IsConnected() bool {
	ok, err := b.ConnectionStatus()
	return err == nil && ok
}

// Close releases the bus connection.
func (b *BlueZStatus) Close() error {
	return b.conn.Close()
}

func (b *BlueZStatus) deviceConnected() (bool, error) {
	obj := b.conn.Object(bluezBus, deviceObjectPath(b.adapter, b.host))
	var v dbus.Variant
	if err := obj.Call(propsIface+".Get", 0, bluezDeviceIface, "Connected").Store(&v); err != nil {
		return false, fmt.Errorf("ble: read %s Connected: %w", b.host, err)
	}
	val, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("ble: property Connected is not bool")
	}
	return val, nil
}

func (b *BlueZStatus) anyConnected() (bool, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := b.conn.Object(bluezBus, "/").Call(objectManager, 0).Store(&objects); err != nil {
		return false, fmt.Errorf("ble: list bluez objects: %w", err)
	}
	return connectedOnAdapter(objects, b.adapter), nil
}

// deviceObjectPath converts "AA:BB:CC:DD:EE:FF" on hci0 to
// "/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF".
func deviceObjectPath(adapter, addr string) dbus.ObjectPath {
	escaped := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	return dbus.ObjectPath("/org/bluez/" + adapter + "/dev_" + escaped)
}

// connectedOnAdapter reports whether any Device1 under adapter has
// Connected=true.
func connectedOnAdapter(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant, adapter string) bool {
	prefix := "/org/bluez/" + adapter + "/dev_"
	for path, ifaces := range objects {
		if !strings.HasPrefix(string(path), prefix) {
			continue
		}
		props, ok := ifaces[bluezDeviceIface]
		if !ok {
			continue
		}
		if v, ok := props["Connected"]; ok {
			if connected, _ := v.Value().(bool); connected {
				return true
			}
		}
	}
	return false
}
