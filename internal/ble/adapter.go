// Package ble exposes the device to a host as a Bluetooth Low Energy HID
// keyboard. It handles GATT service registration, advertising and the
// host connection flag, and turns HID reports into Report characteristic
// notifications.
package ble

import "fmt"

// GATT assigned numbers used by the HID-over-GATT profile.
const (
	ServiceHID               uint16 = 0x1812
	ServiceBattery           uint16 = 0x180F
	ServiceDeviceInformation uint16 = 0x180A

	CharHIDInformation   uint16 = 0x2A4A
	CharReportMap        uint16 = 0x2A4B
	CharHIDControlPoint  uint16 = 0x2A4C
	CharReport           uint16 = 0x2A4D
	CharProtocolMode     uint16 = 0x2A4E
	CharBatteryLevel     uint16 = 0x2A19
	CharManufacturerName uint16 = 0x2A29
	CharPnPID            uint16 = 0x2A50
)

// Permission is a bit set of characteristic properties.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermWriteWithoutResponse
	PermNotify
)

// Characteristic is a local GATT characteristic the device can update.
type Characteristic interface {
	// Write replaces the value and notifies a subscribed host.
	Write(p []byte) (int, error)
}

// CharacteristicConfig describes one characteristic of a Service.
type CharacteristicConfig struct {
	UUID  uint16
	Value []byte
	Flags Permission
	// OnWrite, if set, receives values written by the host.
	OnWrite func(value []byte)
}

// Service is a GATT service to register on the adapter.
type Service struct {
	UUID            uint16
	Characteristics []CharacteristicConfig
}

// AdvertisementOptions configures what the device advertises.
type AdvertisementOptions struct {
	LocalName    string
	ServiceUUIDs []uint16
}

// Adapter abstracts the BLE peripheral stack for testing.
type Adapter interface {
	// Enable powers on the BLE stack.
	Enable() error
	// AddService registers svc and returns its characteristics in the
	// order they were configured.
	AddService(svc Service) ([]Characteristic, error)
	// Advertise (re)starts connectable advertising.
	Advertise(opts AdvertisementOptions) error
	// StopAdvertising stops advertising.
	StopAdvertising() error
	// SetConnectHandler registers a callback invoked whenever a central
	// connects or disconnects.
	SetConnectHandler(handler func(peer string, connected bool))
}

// advertisement is the start/stop surface of a stack's advertisement.
// Stacks such as BlueZ refuse Configure while an advertisement is still
// registered, even after the host that ended it has disconnected.
type advertisement interface {
	Configure() error
	Start() error
	Stop() error
}

// restartAdvertising stops adv, ignoring a not-started error, then
// configures and starts it again.
func restartAdvertising(adv advertisement) error {
	_ = adv.Stop()
	if err := adv.Configure(); err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertisement: %w", err)
	}
	return nil
}
