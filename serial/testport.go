package serial

import "time"

// ByteFeeder is a Port backed by a fixed byte slice: RecvByte serves
// bytes from Script in order and returns ErrTimeout once exhausted.
// Sent bytes are recorded in Sent for assertions. It runs on the
// regular Go toolchain (no machine package involved), which is what
// makes the ymodem and boot packages host-testable.
type ByteFeeder struct {
	Script []byte
	Sent   []byte

	pos int
}

func (f *ByteFeeder) RecvByte(timeout time.Duration) (byte, error) {
	if f.pos >= len(f.Script) {
		return 0, ErrTimeout
	}
	b := f.Script[f.pos]
	f.pos++
	return b, nil
}

func (f *ByteFeeder) SendByte(b byte) error {
	f.Sent = append(f.Sent, b)
	return nil
}

func (f *ByteFeeder) FlushInput() {
	f.pos = len(f.Script)
}

// loopbackQueueDepth bounds how far a sender can run ahead of its
// peer's receive loop before SendByte blocks; generous enough that
// no realistic test transfer fills it.
const loopbackQueueDepth = 1 << 16

// Loopback is one end of a pair of connected Ports: bytes sent on one
// end appear as received bytes on the other. Tests use it to drive a
// ymodem.Sender and ymodem.Receiver against each other, or a
// boot.Controller against a scripted peer, without any real hardware
// transport.
type Loopback struct {
	rx <-chan byte
	tx chan<- byte
}

// NewLoopbackPair returns two ends of one loopback channel: bytes
// written to a are read from b, and vice versa.
func NewLoopbackPair() (a, b *Loopback) {
	atob := make(chan byte, loopbackQueueDepth)
	btoa := make(chan byte, loopbackQueueDepth)
	return &Loopback{rx: btoa, tx: atob}, &Loopback{rx: atob, tx: btoa}
}

func (l *Loopback) RecvByte(timeout time.Duration) (byte, error) {
	select {
	case b := <-l.rx:
		return b, nil
	case <-time.After(timeout):
		return 0, ErrTimeout
	}
}

func (l *Loopback) SendByte(b byte) error {
	l.tx <- b
	return nil
}

func (l *Loopback) FlushInput() {
	for {
		select {
		case <-l.rx:
		default:
			return
		}
	}
}
