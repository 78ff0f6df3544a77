package crane

import (
	"errors"
	"fmt"
	"strconv"
)

// Validation errors. Operations failing with one of these never reach the wire.
var (
	ErrInvalidAxis      = errors.New("crane: invalid axis")
	ErrInvalidSpeed     = errors.New("crane: speed out of range [0, 100]")
	ErrInvalidGripForce = errors.New("crane: grip force out of range [0, 3]")
	ErrInvalidPointName = errors.New("crane: invalid point name")
	ErrInvalidChannel   = errors.New("crane: input channel out of range")
	ErrInvalidCommand   = errors.New("crane: invalid instruction")
)

// Link errors, carried by *LinkError.
var (
	ErrEchoMismatch     = errors.New("crane: echo mismatch")
	ErrResponseMismatch = errors.New("crane: unexpected response")
	ErrResponseTimeout  = errors.New("crane: response timeout")
	ErrCorruptPoint     = errors.New("crane: corrupt point record")
)

// Lifecycle errors.
var (
	ErrNotRunning     = errors.New("crane: poll worker not running")
	ErrClosed         = errors.New("crane: driver closed")
	ErrCommandPending = errors.New("crane: command slot occupied")
)

// LinkError describes a fault detected on the wire.
type LinkError struct {
	// Op is the worker duty that failed, e.g. "command" or "listpoints".
	Op string
	// Sent is the instruction that was written, without CRLF.
	Sent string
	// Got is what the controller returned.
	Got []byte
	// Expected is what the driver was waiting for, if anything.
	Expected []byte
	// Err is one of the link sentinels.
	Err error
}

func (e *LinkError) Error() string {
	msg := e.Err.Error() + ": " + e.Op + " " + strconv.Quote(e.Sent)
	if e.Got != nil {
		msg += fmt.Sprintf(": got %q", e.Got)
	}
	if e.Expected != nil {
		msg += fmt.Sprintf(", expected %q", e.Expected)
	}

	return msg
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
