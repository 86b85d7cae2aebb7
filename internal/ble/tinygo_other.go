//go:build !linux && !tinygo

package ble

import "errors"

// ErrPeripheralUnsupported is returned on hosts where tinygo-org/bluetooth
// cannot act as a GATT server (macOS, Windows).
var ErrPeripheralUnsupported = errors.New("ble: peripheral role not supported on this OS, use transport \"local\"")

// TinyGoAdapter is unavailable on this OS; every call fails.
type TinyGoAdapter struct{}

// NewTinyGoAdapter returns an adapter whose methods all fail.
func NewTinyGoAdapter() *TinyGoAdapter {
	return &TinyGoAdapter{}
}

var _ Adapter = (*TinyGoAdapter)(nil)

func (a *TinyGoAdapter) Enable() error { return ErrPeripheralUnsupported }

func (a *TinyGoAdapter) AddService(Service) ([]Characteristic, error) {
	return nil, ErrPeripheralUnsupported
}

func (a *TinyGoAdapter) Advertise(AdvertisementOptions) error { return ErrPeripheralUnsupported }

func (a *TinyGoAdapter) StopAdvertising() error { return nil }

func (a *TinyGoAdapter) SetConnectHandler(func(peer string, connected bool)) {}
