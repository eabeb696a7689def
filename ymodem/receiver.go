package ymodem

import (
	"context"
	"errors"

	"github.com/lingzolabs/simpleboot/serial"
)

// ErrCancelled is returned when the remote side sends CAN.
var ErrCancelled = errors.New("ymodem: transfer cancelled by sender")

// ErrShortFile is returned if the sender signals end-of-transmission
// before the declared file size has been received.
var ErrShortFile = errors.New("ymodem: end of transmission before file size reached")

// ErrProtocol is returned for a packet sequence that doesn't match
// any state the receiver's state machine expects.
var ErrProtocol = errors.New("ymodem: unexpected packet sequence")

// Receiver drives the receiving side of a YMODEM-1K/CRC transfer over
// a serial.Port. It holds no buffers across calls beyond what a
// single in-flight packet needs, so one Receiver can be reused for
// consecutive transfers.
type Receiver struct {
	port  serial.Port
	stats Stats
}

// New returns a Receiver reading and writing over port.
func New(port serial.Port) *Receiver {
	return &Receiver{port: port}
}

// Stats reports packet/retry/byte counters for the most recently
// completed ReceiveFile call.
func (r *Receiver) Stats() Stats {
	return r.stats
}

// AwaitHeader sends the initial 'C' byte and waits for the header
// packet, retrying up to retries times as the original implementation
// does. A file size of zero in the returned FileInfo with a nil error
// signals the end-of-batch sentinel (no more files in this transfer).
func (r *Receiver) AwaitHeader(ctx context.Context, retries int) (FileInfo, error) {
	r.port.FlushInput()

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return FileInfo{}, err
		}
		if err := r.port.SendByte(cByte); err != nil {
			return FileInfo{}, err
		}

		pkt, err := readPacket(r.port, headerTimeout)
		if err != nil {
			lastErr = err
			continue
		}
		if pkt.isCAN {
			return FileInfo{State: StateCancelled}, ErrCancelled
		}
		if pkt.isEOT {
			lastErr = ErrProtocol
			continue
		}

		info, endOfBatch := parseHeader(pkt.data)
		if err := r.port.SendByte(ack); err != nil {
			return FileInfo{}, err
		}
		if endOfBatch {
			info.State = StateComplete
			return info, nil
		}
		info.State = StateReceiving
		info.PacketCount = 1
		return info, nil
	}

	if lastErr == nil {
		lastErr = serial.ErrTimeout
	}
	return FileInfo{State: StateError}, lastErr
}

// ReceiveFile runs the data phase: reading packets, validating them,
// streaming payloads to sink in order, and handling the EOT/ACK/'C'
// handshake that closes out the transfer.
func (r *Receiver) ReceiveFile(ctx context.Context, info *FileInfo, sink BlockSink) (Result, error) {
	r.stats = Stats{}
	errorCount := 0

	for {
		if err := ctx.Err(); err != nil {
			return ResultError, err
		}

		pkt, err := readPacket(r.port, byteTimeout)
		if err != nil {
			errorCount++
			r.stats.Retries++
			if errorCount >= maxTransferErrors {
				info.State = StateError
				info.ErrorCount = errorCount
				r.port.SendByte(can)
				return ResultTimeout, err
			}
			r.port.SendByte(nak)
			continue
		}

		if pkt.isCAN {
			info.State = StateCancelled
			return ResultCancelled, ErrCancelled
		}

		if pkt.isEOT {
			result, err := r.finish(info)
			return result, err
		}

		remaining := info.FileSize - info.ReceivedSize
		n := uint32(len(pkt.data))
		if n > remaining {
			n = remaining
		}

		if err := sink.WriteBlock(pkt.seq, pkt.data[:n]); err != nil {
			info.State = StateError
			r.port.SendByte(can)
			return ResultFlashError, err
		}

		if err := r.port.SendByte(ack); err != nil {
			return ResultError, err
		}

		info.ReceivedSize += n
		info.PacketCount++
		errorCount = 0
		r.stats.Packets++
		r.stats.Bytes += n
	}
}

// finish handles the two-stage EOT handshake: ACK the first EOT, ask
// for one more packet with a 'C', then expect either a second EOT
// (transfer truly over) or an end-of-batch header packet.
func (r *Receiver) finish(info *FileInfo) (Result, error) {
	if err := r.port.SendByte(ack); err != nil {
		return ResultError, err
	}
	if err := r.port.SendByte(cByte); err != nil {
		return ResultError, err
	}

	pkt, err := readPacket(r.port, byteTimeout)
	if err != nil {
		info.State = StateError
		return ResultError, err
	}

	if pkt.isEOT {
		if err := r.port.SendByte(ack); err != nil {
			return ResultError, err
		}
		if info.ReceivedSize < info.FileSize {
			info.State = StateError
			return ResultFileError, ErrShortFile
		}
		info.State = StateComplete
		return ResultOK, nil
	}

	if _, endOfBatch := parseHeader(pkt.data); endOfBatch {
		if err := r.port.SendByte(ack); err != nil {
			return ResultError, err
		}
		info.State = StateComplete
		return ResultOK, nil
	}

	info.State = StateError
	return ResultPacketError, ErrProtocol
}
