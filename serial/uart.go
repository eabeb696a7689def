//go:build tinygo

package serial

import (
	"machine"
	"time"
)

// UART adapts a machine.UART to the Port interface. ReadByte on
// machine.UART is non-blocking (it returns an error immediately if
// the receive buffer is empty), so RecvByte polls it at pollInterval
// until timeout elapses.
type UART struct {
	dev          *machine.UART
	pollInterval time.Duration
}

// NewUART wraps dev, already configured and enabled by the caller
// (baud rate, pins), for use as a Port.
func NewUART(dev *machine.UART) *UART {
	return &UART{dev: dev, pollInterval: 100 * time.Microsecond}
}

func (u *UART) RecvByte(timeout time.Duration) (byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		if u.dev.Buffered() > 0 {
			b, err := u.dev.ReadByte()
			if err == nil {
				return b, nil
			}
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
		time.Sleep(u.pollInterval)
	}
}

func (u *UART) SendByte(b byte) error {
	_, err := u.dev.Write([]byte{b})
	return err
}

func (u *UART) FlushInput() {
	Flush(u)
}
