// Package transport provides the byte links the PlateCrane driver talks over.
//
// A Transport is a half-duplex, line-oriented channel: the driver writes one
// CRLF-terminated instruction, flushes it, and reads the device's lines back
// one at a time. ReadLine blocks for at most the given timeout and reports a
// timeout as an empty line rather than an error, matching how the controller
// signals "nothing more to say".
//
// Two implementations are provided: Serial, backed by go.bug.st/serial, and
// Simulator, an in-memory PlateCrane used for tests and for running without
// hardware.
package transport

import (
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = errors.New("transport: closed")

// Transport is the contract the link worker depends on.
//
// Implementations are not required to be goroutine-safe; the driver
// guarantees that a single goroutine uses a Transport at a time.
type Transport interface {
	// Write writes p to the device.
	Write(p []byte) (int, error)
	// Flush blocks until written data has been transmitted.
	Flush() error
	// ReadLine returns the next line including its line terminator, or an
	// empty slice when no complete line arrived within timeout.
	ReadLine(timeout time.Duration) ([]byte, error)
	// Close releases the underlying device.
	Close() error
}
