// Package config loads the PlateCrane application configuration.
//
// The file is YAML:
//
//	port: /dev/ttyUSB0        # empty selects the simulator
//	baud: 9600
//	read_timeout_ms: 250
//	poll_interval_ms: 0
//	fast_channel: -1
//	config_dir: config        # holds system.params, driver.params, last.device
//	send_driver_params: false
//	programs_dir: programs
//	log:
//	  level: info
//	  format: json
//
// Load parses, Validate checks without mutating, and Normalize fills in
// defaults. Load calls both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File names inside the config directory.
const (
	SystemParamsFile = "system.params"
	DriverParamsFile = "driver.params"
	LastDeviceFile   = "last.device"
)

// Defaults applied by Normalize.
const (
	DefaultBaud          = 9600
	DefaultReadTimeoutMs = 250
	DefaultConfigDir     = "config"
	DefaultProgramsDir   = "programs"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

type Config struct {
	// Port is the serial device. Empty selects the simulator.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	ReadTimeoutMs  int `yaml:"read_timeout_ms"`
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// FastChannel is polled every cycle when set; nil or -1 disables it.
	FastChannel *int `yaml:"fast_channel"`

	ConfigDir        string `yaml:"config_dir"`
	SendDriverParams bool   `yaml:"send_driver_params"`
	ProgramsDir      string `yaml:"programs_dir"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a normalized configuration with no port.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)

	return cfg
}

// Load reads, validates and normalizes the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Decode parses, validates and normalizes a YAML document. Unknown keys
// are rejected.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)

	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}
