package transport

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the PlateCrane controller's fixed line speed.
const DefaultBaudRate = 9600

const (
	readChunkSize = 256
	maxLineSize   = 4096
)

// SerialConfig describes how to open a serial port.
type SerialConfig struct {
	// Port is the device path, e.g. /dev/ttyUSB0 or COM3.
	Port string
	// BaudRate defaults to DefaultBaudRate when zero.
	BaudRate int
}

// port is the subset of serial.Port used by Serial.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Serial is a Transport over a physical serial port.
//
// Bytes that arrive after a line terminator are kept and returned by the
// next ReadLine call.
type Serial struct {
	port    port
	name    string
	pending []byte
	buf     []byte

	mu     sync.Mutex
	closed bool
}

var _ Transport = (*Serial)(nil)

// OpenSerial opens cfg.Port as 8N1 at cfg.BaudRate.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("transport: serial port name is empty")
	}

	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Port, err)
	}

	// discard whatever the controller printed before we attached
	_ = p.ResetInputBuffer()

	return newSerial(p, cfg.Port), nil
}

func newSerial(p port, name string) *Serial {
	return &Serial{
		port: p,
		name: name,
		buf:  make([]byte, readChunkSize),
	}
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("transport: list ports: %w", err)
	}

	return ports, nil
}

// Name returns the device path the transport was opened with.
func (s *Serial) Name() string {
	return s.name
}

// Write implements Transport.
func (s *Serial) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}

	written := 0
	for written < len(p) {
		n, err := s.port.Write(p[written:])
		if err != nil {
			return written, fmt.Errorf("transport: write %s: %w", s.name, err)
		}
		if n == 0 {
			return written, fmt.Errorf("transport: write %s: no progress", s.name)
		}
		written += n
	}

	return written, nil
}

// Flush implements Transport by waiting for the output buffer to drain.
func (s *Serial) Flush() error {
	if s.isClosed() {
		return ErrClosed
	}

	if err := s.port.Drain(); err != nil {
		return fmt.Errorf("transport: drain %s: %w", s.name, err)
	}

	return nil
}

// ReadLine implements Transport.
//
// It returns the bytes up to and including the next '\n'. When the timeout
// expires first, whatever partial data was received is returned; an empty
// slice means nothing arrived at all.
func (s *Serial) ReadLine(timeout time.Duration) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	if line, ok := s.takeLine(); ok {
		return line, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return s.takePartial(), nil
		}

		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("transport: set read timeout: %w", err)
		}

		n, err := s.port.Read(s.buf)
		if err != nil {
			if s.isClosed() {
				return nil, ErrClosed
			}

			return nil, fmt.Errorf("transport: read %s: %w", s.name, err)
		}
		if n == 0 {
			return s.takePartial(), nil
		}

		s.pending = append(s.pending, s.buf[:n]...)
		if line, ok := s.takeLine(); ok {
			return line, nil
		}

		if len(s.pending) > maxLineSize {
			return s.takePartial(), nil
		}
	}
}

// Close implements Transport. It is safe to call more than once.
func (s *Serial) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("transport: close %s: %w", s.name, err)
	}

	return nil
}

func (s *Serial) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Serial) takeLine() ([]byte, bool) {
	idx := bytes.IndexByte(s.pending, '\n')
	if idx < 0 {
		return nil, false
	}

	line := make([]byte, idx+1)
	copy(line, s.pending[:idx+1])
	s.pending = append(s.pending[:0], s.pending[idx+1:]...)

	return line, true
}

func (s *Serial) takePartial() []byte {
	if len(s.pending) == 0 {
		return []byte{}
	}

	line := s.pending
	s.pending = nil

	return line
}
