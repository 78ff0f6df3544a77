package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arloliu/go-platecrane/config"
	"github.com/arloliu/go-platecrane/crane"
	"github.com/arloliu/go-platecrane/logger"
	"github.com/arloliu/go-platecrane/transport"
)

// loadConfig reads the configuration file and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = logger.DebugLevel
	}

	logger.SetDefault(logger.NewSlogWithOptions(logger.SlogOptions{
		Level:  level,
		Format: logger.Format(cfg.Log.Format),
		Output: os.Stderr,
	}))

	return cfg, nil
}

// session is one driver connection for the lifetime of a command.
type session struct {
	cfg *config.Config
	drv *crane.Driver
	sim *transport.Simulator
}

// openSession resolves the port, opens the transport and starts the driver.
// With reset set, the driver is brought up through Reset instead of Start.
func openSession(reset bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}

	var tr transport.Transport
	port := resolvePort(cfg)
	if port == "" {
		logger.Info("no serial port configured, using simulator")
		s.sim = transport.NewSimulator()
		tr = s.sim
	} else {
		ser, err := transport.OpenSerial(transport.SerialConfig{Port: port, BaudRate: cfg.Baud})
		if err != nil {
			return nil, err
		}
		if err := config.SaveLastDevice(cfg.ConfigDir, port); err != nil {
			logger.Warn("failed to remember serial port", "port", port, "error", err)
		}
		tr = ser
	}

	driverOpts := []crane.Option{
		crane.WithReadTimeout(cfg.ReadTimeout()),
		crane.WithPollInterval(cfg.PollInterval()),
		crane.WithFastChannel(*cfg.FastChannel),
		crane.WithLogger(logger.With("port", port)),
	}
	if fileExists(cfg.SystemParamsPath()) {
		driverOpts = append(driverOpts, crane.WithSystemParams(crane.InstructionFile(cfg.SystemParamsPath())))
	}
	if cfg.SendDriverParams {
		driverOpts = append(driverOpts, crane.WithDriverParams(crane.InstructionFile(cfg.DriverParamsPath())))
	}

	dcfg, err := crane.NewConfig(driverOpts...)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}

	drv, err := crane.NewDriver(appCtx, tr, dcfg)
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	s.drv = drv

	if reset {
		err = drv.Reset()
	} else {
		err = drv.Start()
	}
	if err != nil {
		_ = drv.Close()
		return nil, err
	}

	return s, nil
}

func (s *session) Close() error {
	return s.drv.Close()
}

// resolvePort picks --sim, --port, the configured port and the last used
// device, in that order.
func resolvePort(cfg *config.Config) string {
	switch {
	case opts.Sim:
		return ""
	case opts.Port != "":
		return opts.Port
	case cfg.Port != "":
		return cfg.Port
	}

	port, err := config.LastDevice(cfg.ConfigDir)
	if err != nil {
		logger.Warn("failed to read last serial port", "error", err)
		return ""
	}

	return port
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// withDriver runs fn against a started driver and closes it afterwards.
func withDriver(fn func(d *crane.Driver) error) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}

	runErr := fn(s.drv)
	if err := s.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close: %w", err)
	}

	return runErr
}
