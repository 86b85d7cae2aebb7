// Command vizard runs the keystroke loop on a desktop machine, either as
// a BLE HID keyboard through the local Bluetooth adapter or against the
// local desktop with a hotkey standing in for the host connection.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/vizard/internal/ble"
	"github.com/chaz8081/vizard/internal/clock"
	"github.com/chaz8081/vizard/internal/config"
	"github.com/chaz8081/vizard/internal/diag"
	"github.com/chaz8081/vizard/internal/hotkey"
	"github.com/chaz8081/vizard/internal/inject"
	"github.com/chaz8081/vizard/internal/led"
	"github.com/chaz8081/vizard/internal/monitor"
	"github.com/chaz8081/vizard/internal/runner"
	"github.com/chaz8081/vizard/internal/sequencer"
)

// transport is what the loop needs from either keyboard.
type transport interface {
	monitor.Source
	sequencer.Keyboard
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/vizard/config.yaml)")
	writeDefault := flag.Bool("init", false, "write the default config file and exit")
	flag.Parse()

	if *writeDefault {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if path == "" {
			fmt.Println("Config already exists at", config.DefaultConfigPath())
			return
		}
		fmt.Println("Wrote", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	printBanner(cfg)
	slog.Info("[+] Starting project")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		kb      transport
		src     monitor.Source
		release func()
	)
	switch cfg.Transport {
	case "local":
		kb, release = startLocal(ctx, cfg)
		src = kb
	default: // "ble"
		bk := ble.NewKeyboard(ble.NewTinyGoAdapter(), ble.Options{
			Name:         cfg.Device.Name,
			Manufacturer: cfg.Device.Manufacturer,
			BatteryLevel: cfg.Device.BatteryLevel,
			ReportDelay:  cfg.Script.ReportDelay,
		})
		if err := bk.Begin(); err != nil {
			log.Fatalf("Failed to start BLE keyboard: %v\n\nCheck that Bluetooth is powered on and this user may register GATT services.", err)
		}
		kb, release = bk, func() { _ = bk.Close() }
		src = bk

		if cfg.Status == "bluez" {
			status, err := ble.NewBlueZStatus(cfg.BlueZ.Adapter, cfg.BlueZ.Host)
			if err != nil {
				log.Fatalf("Failed to connect to BlueZ: %v", err)
			}
			defer status.Close()
			src = status
		}
	}
	defer release()

	mon := monitor.New(src)

	var indicator led.Indicator = led.None{}
	if cfg.LED.Kind == "log" {
		indicator = led.NewLogged(fmt.Sprintf("gpio%d", cfg.LED.Pin))
	}

	var seqOpts sequencer.Options
	if cfg.Script.StrictRecheck {
		seqOpts.Recheck = mon
	}
	clk := clock.Real{}
	seq := sequencer.New(kb, indicator, clk, sequencer.Greeting(cfg.Script.StepDelay), seqOpts)

	loop := runner.New(mon, seq, clk, runner.Options{IdleDelay: cfg.Script.IdleDelay})

	slog.Info("Ready! Waiting for a host. Ctrl+C to quit.")
	if err := loop.Run(ctx); err != nil {
		slog.Info("Shutting down...", "reason", err)
	}
	slog.Info("Goodbye!")
}

// startLocal builds the desktop transport and its hotkey listener.
func startLocal(ctx context.Context, cfg *config.Config) (*inject.LocalKeyboard, func()) {
	kb := inject.NewLocalKeyboard(cfg.Local.Method)
	kb.SetConnected(cfg.Local.StartConnected)

	listener := hotkey.NewListener(cfg.Local.Keys, cfg.Local.StartConnected)
	go listener.Start()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-listener.Events():
				if !ok {
					slog.Info("[LOCAL] hotkey listener stopped")
					return
				}
				kb.SetConnected(ev.Type == hotkey.EventConnect)
			}
		}
	}()

	slog.Info("[LOCAL] press hotkey to connect/disconnect the simulated host",
		"keys", strings.Join(cfg.Local.Keys, "+"), "method", cfg.Local.Method)
	return kb, listener.Stop
}

// setupLogging installs the default slog logger on stderr or a serial
// console and returns a function that releases the sink.
func setupLogging(cfg config.LogConfig) (func(), error) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	if cfg.SerialPort != "" {
		port, err := diag.OpenSerial(cfg.SerialPort, cfg.Baud)
		if err != nil {
			return nil, err
		}
		w = diag.BestEffort(port)
		closeFn = func() { _ = port.Close() }
	}
	slog.SetDefault(diag.NewLogger(w, diag.ParseLevel(cfg.Level)))
	return closeFn, nil
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== vizard ===")
	fmt.Printf("  Device:     %s\n", cfg.Device.Name)
	fmt.Printf("  Transport:  %s (status: %s)\n", cfg.Transport, cfg.Status)
	fmt.Printf("  Timing:     step %s, idle %s\n", cfg.Script.StepDelay, cfg.Script.IdleDelay)
	fmt.Printf("  Strict:     %v\n", cfg.Script.StrictRecheck)
	fmt.Printf("  LED:        %s (pin %d)\n", cfg.LED.Kind, cfg.LED.Pin)
	fmt.Printf("  Log:        %s\n", cfg.Log.Level)
	fmt.Println("==============")
}
