package config

import "strings"

// Normalize fills in defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Port = strings.TrimSpace(cfg.Port)

	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.ReadTimeoutMs == 0 {
		cfg.ReadTimeoutMs = DefaultReadTimeoutMs
	}
	if cfg.FastChannel == nil {
		disabled := -1
		cfg.FastChannel = &disabled
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir
	}
	if cfg.ProgramsDir == "" {
		cfg.ProgramsDir = DefaultProgramsDir
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
