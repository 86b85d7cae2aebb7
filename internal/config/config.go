// Package config loads the hosted daemon's YAML configuration. The
// firmware build has no filesystem and always runs with Default().
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Device    DeviceConfig `yaml:"device"`
	Transport string       `yaml:"transport"` // "ble" or "local"
	Status    string       `yaml:"status"`    // "transport" or "bluez"
	BlueZ     BlueZConfig  `yaml:"bluez"`
	Script    ScriptConfig `yaml:"script"`
	LED       LEDConfig    `yaml:"led"`
	Local     LocalConfig  `yaml:"local"`
	Log       LogConfig    `yaml:"log"`
}

// DeviceConfig holds what the keyboard tells the host about itself.
type DeviceConfig struct {
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	BatteryLevel uint8  `yaml:"battery_level"`
}

// BlueZConfig selects the adapter and host for the "bluez" status source.
type BlueZConfig struct {
	Adapter string `yaml:"adapter"`
	Host    string `yaml:"host"` // bonded host MAC; empty means any
}

// ScriptConfig holds keystroke loop timings. The script itself is fixed.
type ScriptConfig struct {
	StepDelay     time.Duration `yaml:"step_delay"`
	IdleDelay     time.Duration `yaml:"idle_delay"`
	ReportDelay   time.Duration `yaml:"report_delay"`
	StrictRecheck bool          `yaml:"strict_recheck"`
}

// LEDConfig holds activity indicator settings.
type LEDConfig struct {
	Kind string `yaml:"kind"` // "log" or "none"
	Pin  uint8  `yaml:"pin"`
}

// LocalConfig holds settings for the "local" transport, which types on
// this machine and simulates the host link with a hotkey.
type LocalConfig struct {
	Method         string   `yaml:"method"` // "type" or "paste"
	Keys           []string `yaml:"keys"`
	StartConnected bool     `yaml:"start_connected"`
}

// LogConfig holds diagnostic log settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	SerialPort string `yaml:"serial_port"` // empty logs to stderr
	Baud       int    `yaml:"baud"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vizard")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:         "Vizard Keyboard",
			Manufacturer: "Espressif",
			BatteryLevel: 100,
		},
		Transport: "ble",
		Status:    "transport",
		BlueZ: BlueZConfig{
			Adapter: "hci0",
		},
		Script: ScriptConfig{
			StepDelay:   time.Second,
			IdleDelay:   5 * time.Second,
			ReportDelay: 7 * time.Millisecond,
		},
		LED: LEDConfig{
			Kind: "log",
			Pin:  2,
		},
		Local: LocalConfig{
			Method: "type",
			Keys:   []string{"ctrl", "shift", "k"},
		},
		Log: LogConfig{
			Level: "info",
			Baud:  115200,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in log.serial_port is expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Log.SerialPort = expandTilde(cfg.Log.SerialPort)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return fmt.Errorf("device.name must not be empty")
	}
	if c.Device.BatteryLevel > 100 {
		return fmt.Errorf("device.battery_level must be 0-100, got %d", c.Device.BatteryLevel)
	}

	switch c.Transport {
	case "ble", "local":
	default:
		return fmt.Errorf("transport must be \"ble\" or \"local\", got %q", c.Transport)
	}

	switch c.Status {
	case "transport":
	case "bluez":
		if c.Transport != "ble" {
			return fmt.Errorf("status \"bluez\" requires transport \"ble\"")
		}
		if c.BlueZ.Host != "" {
			if _, err := net.ParseMAC(c.BlueZ.Host); err != nil {
				return fmt.Errorf("bluez.host must be a MAC address: %w", err)
			}
		}
	default:
		return fmt.Errorf("status must be \"transport\" or \"bluez\", got %q", c.Status)
	}

	if c.Script.StepDelay <= 0 {
		return fmt.Errorf("script.step_delay must be > 0")
	}
	if c.Script.IdleDelay <= 0 {
		return fmt.Errorf("script.idle_delay must be > 0")
	}
	if c.Script.ReportDelay < 0 {
		return fmt.Errorf("script.report_delay must be >= 0")
	}

	switch c.LED.Kind {
	case "log", "none":
	default:
		return fmt.Errorf("led.kind must be \"log\" or \"none\", got %q", c.LED.Kind)
	}

	if c.Transport == "local" {
		switch c.Local.Method {
		case "type", "paste":
		default:
			return fmt.Errorf("local.method must be \"type\" or \"paste\", got %q", c.Local.Method)
		}
		if len(c.Local.Keys) == 0 {
			return fmt.Errorf("local.keys must not be empty")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	if c.Log.SerialPort != "" && c.Log.Baud <= 0 {
		return fmt.Errorf("log.baud must be > 0")
	}

	return nil
}

const defaultConfigHeader = `# vizard configuration
# The keystroke script is compiled in; only its timings live here.
`

// WriteDefault writes the default config to DefaultConfigPath if no file
// exists there. It returns the path written, or "" if a file was already
// present.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultConfigHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
