package crane

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-platecrane/logger"
)

// Default values for Config.
const (
	DefaultReadTimeout  = 250 * time.Millisecond
	DefaultPollInterval = 0
	DefaultChannelCount = 48
	DefaultCloseTimeout = 3 * time.Second

	// NoFastChannel disables the fast input channel.
	NoFastChannel = -1
)

// Range limits for Config.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 10 * time.Second

	MaxPollInterval = time.Second

	MaxChannelCount = 256

	MinCloseTimeout = 10 * time.Millisecond
	MaxCloseTimeout = time.Minute
)

// Config holds the settings of a Driver.
type Config struct {
	// readTimeout bounds each line read on the transport.
	readTimeout time.Duration
	// pollInterval is slept between poll cycles.
	pollInterval time.Duration

	channelCount int
	fastChannel  int

	closeTimeout time.Duration

	systemParams InstructionSource
	driverParams InstructionSource

	logger logger.Logger
}

// NewConfig creates a driver configuration. opts are applied in order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		readTimeout:  DefaultReadTimeout,
		pollInterval: DefaultPollInterval,
		channelCount: DefaultChannelCount,
		fastChannel:  NoFastChannel,
		closeTimeout: DefaultCloseTimeout,
		systemParams: InstructionList(nil),
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.fastChannel >= cfg.channelCount {
		return nil, fmt.Errorf("crane: fast channel %d out of range [%d, %d]", cfg.fastChannel, NoFastChannel, cfg.channelCount-1)
	}

	return cfg, nil
}

// ReadTimeout returns the per-line read timeout.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// PollInterval returns the pause between poll cycles.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// ChannelCount returns the number of scanned input channels.
func (cfg *Config) ChannelCount() int { return cfg.channelCount }

// FastChannel returns the initial fast input channel, or NoFastChannel.
func (cfg *Config) FastChannel() int { return cfg.fastChannel }

// CloseTimeout returns how long Close waits for the poll worker.
func (cfg *Config) CloseTimeout() time.Duration { return cfg.closeTimeout }

// SystemParams returns the instructions replayed by Reset.
func (cfg *Config) SystemParams() InstructionSource { return cfg.systemParams }

// DriverParams returns the TERMINAL-mode instructions replayed by Reset, or nil.
func (cfg *Config) DriverParams() InstructionSource { return cfg.driverParams }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithReadTimeout sets the per-line read timeout, in [MinReadTimeout, MaxReadTimeout].
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("crane: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithPollInterval sets the pause between poll cycles, in [0, MaxPollInterval].
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxPollInterval {
			return fmt.Errorf("crane: poll interval %v out of range [0, %v]", d, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithChannelCount sets how many input channels the round-robin scan covers.
func WithChannelCount(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 1 || n > MaxChannelCount {
			return fmt.Errorf("crane: channel count %d out of range [1, %d]", n, MaxChannelCount)
		}
		cfg.channelCount = n

		return nil
	})
}

// WithFastChannel selects an input channel polled every cycle in place of
// the round-robin scan. NoFastChannel disables it.
func WithFastChannel(ch int) Option {
	return optFunc(func(cfg *Config) error {
		if ch < NoFastChannel {
			return fmt.Errorf("crane: fast channel %d out of range", ch)
		}
		cfg.fastChannel = ch

		return nil
	})
}

// WithCloseTimeout sets how long Close waits for the poll worker to stop.
func WithCloseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinCloseTimeout || d > MaxCloseTimeout {
			return fmt.Errorf("crane: close timeout %v out of range [%v, %v]", d, MinCloseTimeout, MaxCloseTimeout)
		}
		cfg.closeTimeout = d

		return nil
	})
}

// WithSystemParams sets the instructions replayed at the start of Reset.
func WithSystemParams(src InstructionSource) Option {
	return optFunc(func(cfg *Config) error {
		if src == nil {
			return errors.New("crane: nil system parameter source")
		}
		cfg.systemParams = src

		return nil
	})
}

// WithDriverParams enables the TERMINAL-mode driver parameter replay in Reset.
// The Y and P axis drivers lose these on power-up.
func WithDriverParams(src InstructionSource) Option {
	return optFunc(func(cfg *Config) error {
		cfg.driverParams = src
		return nil
	})
}

// WithLogger sets the logger used by the driver and its poll worker.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("crane: nil logger")
		}
		cfg.logger = l

		return nil
	})
}
