// Package serial provides the byte-level transport the update receiver
// runs over: a single blocking read with timeout, a single blocking
// write, and a way to drain whatever the line buffer is currently
// holding. Everything above this layer (ymodem, boot) is written
// against the Port interface so it runs identically against a real
// UART and against the in-memory doubles used in tests.
package serial

import (
	"errors"
	"time"
)

// ErrTimeout is returned by Port.RecvByte when no byte arrives within
// the requested window. Callers distinguish it from other I/O errors
// because a receive timeout is part of the normal YMODEM retry flow,
// not a transport failure.
var ErrTimeout = errors.New("serial: receive timeout")

// Port is the byte-level transport the update receiver and the update
// controller depend on. Implementations must be safe to use from a
// single goroutine only — nothing in this module calls a Port
// concurrently.
type Port interface {
	// RecvByte blocks until a byte arrives or timeout elapses, in
	// which case it returns ErrTimeout.
	RecvByte(timeout time.Duration) (byte, error)

	// SendByte writes a single byte, blocking until it is accepted by
	// the transport.
	SendByte(b byte) error

	// FlushInput discards any bytes currently buffered or arriving in
	// the next short interval, so a fresh protocol exchange does not
	// see stale bytes from a previous, abandoned one.
	FlushInput()
}

// flushQuantum is the per-read timeout FlushInput uses while draining
// a port: short enough that flushing a clean line returns quickly,
// long enough that a burst of buffered bytes is fully consumed before
// the flush gives up.
const flushQuantum = 10 * time.Millisecond

// Flush drains p until a read times out. It is the shared
// implementation behind every Port's FlushInput method.
func Flush(p interface {
	RecvByte(timeout time.Duration) (byte, error)
}) {
	for {
		if _, err := p.RecvByte(flushQuantum); err != nil {
			return
		}
	}
}
