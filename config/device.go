package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SystemParamsPath returns the path of the system parameter list.
func (cfg *Config) SystemParamsPath() string {
	return filepath.Join(cfg.ConfigDir, SystemParamsFile)
}

// DriverParamsPath returns the path of the TERMINAL-mode driver parameter list.
func (cfg *Config) DriverParamsPath() string {
	return filepath.Join(cfg.ConfigDir, DriverParamsFile)
}

// ReadTimeout returns ReadTimeoutMs as a duration.
func (cfg *Config) ReadTimeout() time.Duration {
	return time.Duration(cfg.ReadTimeoutMs) * time.Millisecond
}

// PollInterval returns PollIntervalMs as a duration.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalMs) * time.Millisecond
}

// LastDevice returns the serial port remembered in configDir, or "" when
// none was saved.
func LastDevice(configDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(configDir, LastDeviceFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("config: last device: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// SaveLastDevice remembers port in configDir.
func SaveLastDevice(configDir, port string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("config: last device: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, LastDeviceFile), []byte(port+"\n"), 0o644); err != nil {
		return fmt.Errorf("config: last device: %w", err)
	}

	return nil
}
