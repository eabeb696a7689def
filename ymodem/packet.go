package ymodem

import (
	"errors"
	"time"

	"github.com/lingzolabs/simpleboot/crc"
	"github.com/lingzolabs/simpleboot/serial"
)

// ErrCRC is returned when a packet's CRC-16 does not match its data.
var ErrCRC = errors.New("ymodem: crc mismatch")

// ErrSequence is returned when a packet's sequence byte and its
// complement don't sum to 0xFF. Per the original implementation this
// is the only sequence check performed — the running packet number is
// never compared against the sender's, an intentionally preserved
// deviation from the YMODEM specification (see repository notes).
var ErrSequence = errors.New("ymodem: bad sequence byte")

// ErrFrame is returned for a header byte that is none of SOH, STX,
// EOT or CAN.
var ErrFrame = errors.New("ymodem: unrecognized frame byte")

// packet is one parsed YMODEM block: a data frame, or the sentinel
// isEOT flag for an End-Of-Transmission marker.
type packet struct {
	isEOT bool
	isCAN bool
	seq   uint8
	data  []byte
}

// readPacket reads one packet from p, validating its sequence byte
// and CRC-16 exactly as the original decoder does: frame byte first
// (selecting payload size), then seq/~seq, then data, then the
// big-endian CRC-16 trailer.
func readPacket(p serial.Port, timeout time.Duration) (packet, error) {
	header, err := p.RecvByte(timeout)
	if err != nil {
		return packet{}, err
	}

	switch header {
	case eot:
		return packet{isEOT: true}, nil
	case can:
		return packet{isCAN: true}, nil
	case soh:
		return readPacketBody(p, timeout, dataSize128)
	case stx:
		return readPacketBody(p, timeout, dataSize1024)
	default:
		return packet{}, ErrFrame
	}
}

func readPacketBody(p serial.Port, timeout time.Duration, size int) (packet, error) {
	seq, err := p.RecvByte(timeout)
	if err != nil {
		return packet{}, err
	}
	seqInv, err := p.RecvByte(timeout)
	if err != nil {
		return packet{}, err
	}

	data := make([]byte, size)
	for i := range data {
		b, err := p.RecvByte(timeout)
		if err != nil {
			return packet{}, err
		}
		data[i] = b
	}

	crcHi, err := p.RecvByte(timeout)
	if err != nil {
		return packet{}, err
	}
	crcLo, err := p.RecvByte(timeout)
	if err != nil {
		return packet{}, err
	}

	if seq+seqInv != 0xFF {
		return packet{}, ErrSequence
	}

	wantCRC := uint16(crcHi)<<8 | uint16(crcLo)
	gotCRC := crc.UpdateCCITT(0, data)
	if gotCRC != wantCRC {
		return packet{}, ErrCRC
	}

	return packet{seq: seq, data: data}, nil
}

// parseHeader extracts the filename and decimal file size from a
// header packet's payload, following the original's NUL-terminated
// filename then NUL-terminated ASCII decimal size layout. A payload
// whose first byte is 0x00 is the end-of-batch sentinel.
func parseHeader(data []byte) (info FileInfo, endOfBatch bool) {
	if len(data) == 0 || data[0] == 0 {
		return FileInfo{}, true
	}

	nameEnd := indexByte(data, 0)
	if nameEnd < 0 {
		nameEnd = len(data)
	}
	info.Filename = string(data[:nameEnd])

	sizeStart := nameEnd + 1
	if sizeStart >= len(data) {
		return info, false
	}
	sizeEnd := indexByte(data[sizeStart:], 0)
	if sizeEnd < 0 {
		sizeEnd = len(data) - sizeStart
	}
	info.FileSize = parseDecimal(data[sizeStart : sizeStart+sizeEnd])
	return info, false
}

func indexByte(b []byte, v byte) int {
	for i, c := range b {
		if c == v {
			return i
		}
	}
	return -1
}

// parseDecimal converts an ASCII decimal string to a uint32 without
// allocation, in the style of the pack's fixed-width atoi2/atoi4
// helpers generalized to a variable-length field.
func parseDecimal(s []byte) uint32 {
	var n uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + uint32(c-'0')
	}
	return n
}
