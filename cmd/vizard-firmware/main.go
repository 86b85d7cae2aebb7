//go:build tinygo

// Command vizard-firmware is the on-device build. Flash with, for example:
//
//	tinygo flash -target=nrf52840-s140v7 ./cmd/vizard-firmware
//
// The board's status LED (pin 2 unless ledWS2812 is set) pulses while
// keystrokes are being sent; the serial console carries the diagnostic log
// at 115200 baud.
package main

import (
	"context"
	"image/color"
	"log/slog"
	"machine"
	"time"

	"github.com/chaz8081/vizard/internal/ble"
	"github.com/chaz8081/vizard/internal/clock"
	"github.com/chaz8081/vizard/internal/config"
	"github.com/chaz8081/vizard/internal/diag"
	"github.com/chaz8081/vizard/internal/led"
	"github.com/chaz8081/vizard/internal/monitor"
	"github.com/chaz8081/vizard/internal/runner"
	"github.com/chaz8081/vizard/internal/sequencer"
)

// ledWS2812 selects an addressable RGB LED on ledPin instead of a plain GPIO.
const ledWS2812 = false

const ledPin = machine.Pin(2)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: diag.DefaultBaud})
	time.Sleep(100 * time.Millisecond)

	cfg := config.Default()
	slog.SetDefault(diag.NewLogger(diag.BestEffort(machine.Serial), diag.ParseLevel(cfg.Log.Level)))
	slog.Info("[+] Starting project")

	var indicator led.Indicator
	if ledWS2812 {
		indicator = led.NewWS2812(ledPin, color.RGBA{R: 0, G: 0, B: 0x40, A: 0xFF})
	} else {
		indicator = led.NewGPIO(ledPin)
	}

	kb := ble.NewKeyboard(ble.NewTinyGoAdapter(), ble.Options{
		Name:         cfg.Device.Name,
		Manufacturer: cfg.Device.Manufacturer,
		BatteryLevel: cfg.Device.BatteryLevel,
		ReportDelay:  cfg.Script.ReportDelay,
	})
	must("start BLE keyboard", kb.Begin())

	clk := clock.Real{}
	mon := monitor.New(kb)
	seq := sequencer.New(kb, indicator, clk, sequencer.Greeting(cfg.Script.StepDelay), sequencer.Options{})
	loop := runner.New(mon, seq, clk, runner.Options{IdleDelay: cfg.Script.IdleDelay})

	// Background is never cancelled: the loop runs for the life of the device.
	_ = loop.Run(context.Background())
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + err.Error())
	}
}
