package ymodem

import (
	"context"
	"errors"

	"github.com/lingzolabs/simpleboot/crc"
	"github.com/lingzolabs/simpleboot/serial"
)

// ErrNak is returned by Sender when maxTransferErrors attempts in a
// row to send one packet end without an ACK (a NAK, another byte, or
// a timeout).
var ErrNak = errors.New("ymodem: receiver rejected packet too many times")

// ErrNoReceiver is returned by Sender.Start when no 'C' byte arrives
// from the other end within the initial handshake window.
var ErrNoReceiver = errors.New("ymodem: no receiver responded")

// Sender drives the transmitting side of a YMODEM-1K/CRC transfer.
// It is the mirror image of Receiver and exists only for the
// host-side flashing tool — the target bootloader never sends.
type Sender struct {
	port serial.Port
}

// NewSender returns a Sender writing to and reading from port.
func NewSender(port serial.Port) *Sender {
	return &Sender{port: port}
}

// Start waits for the receiver's initial 'C' (CRC mode request).
func (s *Sender) Start(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := s.port.RecvByte(headerTimeout)
		if err != nil {
			return ErrNoReceiver
		}
		if b == cByte {
			return nil
		}
	}
}

// SendFile transmits name/size as the header packet, then data as a
// sequence of 1024-byte packets (the final one padded with CTRL-Z),
// then the two-EOT closing handshake. The end-of-batch header is not
// sent here; SendEndOfBatch sends it.
func (s *Sender) SendFile(ctx context.Context, name string, data []byte) (Stats, error) {
	var stats Stats

	header := make([]byte, dataSize128)
	n := copy(header, name)
	header[n] = 0
	sizeStr := []byte(itoa(uint32(len(data))))
	copy(header[n+1:], sizeStr)

	if err := s.sendPacket(ctx, 0, header); err != nil {
		return stats, err
	}

	seq := uint8(1)
	for off := 0; off < len(data); off += dataSize1024 {
		end := off + dataSize1024
		var block [dataSize1024]byte
		for i := range block {
			block[i] = ctrlZ
		}
		copy(block[:], data[off:min(end, len(data))])

		if err := s.sendPacket(ctx, seq, block[:]); err != nil {
			return stats, err
		}
		seq++
		stats.Packets++
		stats.Bytes += uint32(min(end, len(data)) - off)
	}

	if err := s.port.SendByte(eot); err != nil {
		return stats, err
	}
	if err := s.expectAck(); err != nil {
		return stats, err
	}
	if err := s.expectByte(cByte); err != nil {
		return stats, err
	}
	if err := s.port.SendByte(eot); err != nil {
		return stats, err
	}
	if err := s.expectAck(); err != nil {
		return stats, err
	}

	return stats, nil
}

// SendEndOfBatch transmits the zero-filled header packet that signals
// no further files follow in this transfer. sendPacket already waits
// for the receiver's single ACK of this packet, same as the real
// header in SendFile.
func (s *Sender) SendEndOfBatch(ctx context.Context) error {
	var header [dataSize128]byte
	return s.sendPacket(ctx, 0, header[:])
}

func (s *Sender) sendPacket(ctx context.Context, seq uint8, data []byte) error {
	for attempt := 0; attempt < maxTransferErrors; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := soh
		if len(data) == dataSize1024 {
			frame = stx
		}
		if err := s.port.SendByte(byte(frame)); err != nil {
			return err
		}
		if err := s.port.SendByte(seq); err != nil {
			return err
		}
		if err := s.port.SendByte(^seq); err != nil {
			return err
		}
		for _, b := range data {
			if err := s.port.SendByte(b); err != nil {
				return err
			}
		}
		c := crc.UpdateCCITT(0, data)
		if err := s.port.SendByte(byte(c >> 8)); err != nil {
			return err
		}
		if err := s.port.SendByte(byte(c)); err != nil {
			return err
		}

		b, err := s.port.RecvByte(byteTimeout)
		if err != nil {
			continue
		}
		switch b {
		case ack:
			return nil
		case nak:
			continue
		default:
			continue
		}
	}
	return ErrNak
}

func (s *Sender) expectAck() error {
	b, err := s.port.RecvByte(byteTimeout)
	if err != nil {
		return err
	}
	if b != ack {
		return ErrProtocol
	}
	return nil
}

func (s *Sender) expectByte(want byte) error {
	b, err := s.port.RecvByte(headerTimeout)
	if err != nil {
		return err
	}
	if b != want {
		return ErrProtocol
	}
	return nil
}

// itoa converts a uint32 to its decimal ASCII representation without
// pulling in strconv, matching the pack's preference for small
// hand-written numeric formatting helpers in constrained code paths.
func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
