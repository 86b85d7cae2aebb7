//go:build linux || tinygo

package ble

import (
	"fmt"
	"time"

	"tinygo.org/x/bluetooth"
)

// advertisingInterval is the advertising interval while waiting for a host.
const advertisingInterval = 100 * time.Millisecond

// TinyGoAdapter wraps tinygo-org/bluetooth. The same code serves the
// hosted Linux build (BlueZ) and the firmware build (SoftDevice, HCI or
// NINA depending on the board).
type TinyGoAdapter struct {
	adapter *bluetooth.Adapter
}

// NewTinyGoAdapter creates an adapter around bluetooth.DefaultAdapter.
func NewTinyGoAdapter() *TinyGoAdapter {
	return &TinyGoAdapter{adapter: bluetooth.DefaultAdapter}
}

// Compile-time check that TinyGoAdapter implements Adapter.
var _ Adapter = (*TinyGoAdapter)(nil)

func (a *TinyGoAdapter) Enable() error {
	return a.adapter.Enable()
}

func (a *TinyGoAdapter) AddService(svc Service) ([]Characteristic, error) {
	handles := make([]bluetooth.Characteristic, len(svc.Characteristics))
	configs := make([]bluetooth.CharacteristicConfig, len(svc.Characteristics))
	for i, c := range svc.Characteristics {
		configs[i] = bluetooth.CharacteristicConfig{
			Handle: &handles[i],
			UUID:   bluetooth.New16BitUUID(c.UUID),
			Value:  c.Value,
			Flags:  tinygoFlags(c.Flags),
		}
		if c.OnWrite != nil {
			onWrite := c.OnWrite
			configs[i].WriteEvent = func(client bluetooth.Connection, offset int, value []byte) {
				if offset != 0 {
					return
				}
				onWrite(value)
			}
		}
	}

	err := a.adapter.AddService(&bluetooth.Service{
		UUID:            bluetooth.New16BitUUID(svc.UUID),
		Characteristics: configs,
	})
	if err != nil {
		return nil, fmt.Errorf("ble: add service %#04x: %w", svc.UUID, err)
	}

	chars := make([]Characteristic, len(handles))
	for i := range handles {
		chars[i] = &handles[i]
	}
	return chars, nil
}

func (a *TinyGoAdapter) Advertise(opts AdvertisementOptions) error {
	uuids := make([]bluetooth.UUID, len(opts.ServiceUUIDs))
	for i, u := range opts.ServiceUUIDs {
		uuids[i] = bluetooth.New16BitUUID(u)
	}

	return restartAdvertising(&tinygoAdvertisement{
		adv: a.adapter.DefaultAdvertisement(),
		opts: bluetooth.AdvertisementOptions{
			LocalName:    opts.LocalName,
			ServiceUUIDs: uuids,
			Interval:     bluetooth.NewDuration(advertisingInterval),
		},
	})
}

// tinygoAdvertisement binds options to the library's advertisement so it
// can be driven by restartAdvertising.
type tinygoAdvertisement struct {
	adv  *bluetooth.Advertisement
	opts bluetooth.AdvertisementOptions
}

func (t *tinygoAdvertisement) Configure() error { return t.adv.Configure(t.opts) }
func (t *tinygoAdvertisement) Start() error     { return t.adv.Start() }
func (t *tinygoAdvertisement) Stop() error      { return t.adv.Stop() }

func (a *TinyGoAdapter) StopAdvertising() error {
	return a.adapter.DefaultAdvertisement().Stop()
}

func (a *TinyGoAdapter) SetConnectHandler(handler func(peer string, connected bool)) {
	a.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		handler(device.Address.String(), connected)
	})
}

func tinygoFlags(p Permission) bluetooth.CharacteristicPermissions {
	var flags bluetooth.CharacteristicPermissions
	if p&PermRead != 0 {
		flags |= bluetooth.CharacteristicReadPermission
	}
	if p&PermWrite != 0 {
		flags |= bluetooth.CharacteristicWritePermission
	}
	if p&PermWriteWithoutResponse != 0 {
		flags |= bluetooth.CharacteristicWriteWithoutResponsePermission
	}
	if p&PermNotify != 0 {
		flags |= bluetooth.CharacteristicNotifyPermission
	}
	return flags
}
