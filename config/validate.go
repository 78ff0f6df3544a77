package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if strings.ContainsAny(cfg.Port, "\r\n") {
		return fmt.Errorf("port %q: must be a single line", cfg.Port)
	}

	if cfg.Baud < 0 {
		return fmt.Errorf("baud %d: must not be negative", cfg.Baud)
	}

	// 0 means default
	if cfg.ReadTimeoutMs != 0 && (cfg.ReadTimeoutMs < 10 || cfg.ReadTimeoutMs > 10000) {
		return fmt.Errorf("read_timeout_ms %d: out of range [10, 10000]", cfg.ReadTimeoutMs)
	}

	if cfg.PollIntervalMs < 0 || cfg.PollIntervalMs > 1000 {
		return fmt.Errorf("poll_interval_ms %d: out of range [0, 1000]", cfg.PollIntervalMs)
	}

	if cfg.FastChannel != nil && (*cfg.FastChannel < -1 || *cfg.FastChannel > 47) {
		return fmt.Errorf("fast_channel %d: out of range [-1, 47]", *cfg.FastChannel)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("log.level %q: must be one of debug, info, warn, error, fatal", cfg.Log.Level)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format %q: must be json or console", cfg.Log.Format)
	}

	return nil
}
