//go:build tinygo

package led

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// NewGPIO configures pin as an output, drives it low and returns it.
func NewGPIO(pin machine.Pin) Indicator {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return pin
}

// WS2812 is an Indicator on a single addressable RGB LED, for boards that
// have no plain status LED.
type WS2812 struct {
	dev   ws2812.Device
	color color.RGBA
}

// NewWS2812 configures pin for a WS2812 and switches it off.
func NewWS2812(pin machine.Pin, c color.RGBA) *WS2812 {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	w := &WS2812{dev: ws2812.New(pin), color: c}
	w.Low()
	return w
}

func (w *WS2812) High() {
	_ = w.dev.WriteColors([]color.RGBA{w.color})
}

func (w *WS2812) Low() {
	_ = w.dev.WriteColors([]color.RGBA{{}})
}
