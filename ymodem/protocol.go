// Package ymodem implements the YMODEM-1K/CRC file transfer protocol
// used to push a new firmware image into the bootloader: packet
// framing, CRC-16 validation, and the ACK/NAK/CAN handshake, as a
// Receiver driven by the update controller, and a Sender used only by
// the host-side flashing tool.
package ymodem

import "time"

// Control bytes, unchanged from the classic XMODEM/YMODEM framing.
const (
	soh   = 0x01
	stx   = 0x02
	eot   = 0x04
	ack   = 0x06
	nak   = 0x15
	can   = 0x18
	ctrlZ = 0x1A
	cByte = 0x43
)

// Packet payload sizes for the two frame types.
const (
	dataSize128  = 128
	dataSize1024 = 1024
)

// maxTransferErrors aborts a transfer after this many consecutive
// packet errors or timeouts.
const maxTransferErrors = 10

// byteTimeout is how long the receiver waits for each byte of a
// packet once the frame marker has arrived.
const byteTimeout = 1000 * time.Millisecond

// headerTimeout is the longer timeout used while waiting for the
// very first header packet, giving a human time to start the sender.
const headerTimeout = 10 * time.Second

// State is the transfer's lifecycle stage, tracked in FileInfo for
// diagnostics and tests; it does not drive control flow on its own —
// Receiver.ReceiveFile's internal state machine does that.
type State uint8

const (
	StateIdle State = iota
	StateAwaitHeader
	StateReceiving
	StateFinalizing
	StateComplete
	StateError
	StateCancelled
)

// Result is the outcome of a receive operation.
type Result uint8

const (
	ResultOK Result = iota
	ResultError
	ResultTimeout
	ResultCancelled
	ResultCRCError
	ResultPacketError
	ResultFileError
	ResultFlashError
)

// FileInfo describes the file named in the header packet and tracks
// progress through the transfer.
type FileInfo struct {
	Filename     string
	FileSize     uint32
	ReceivedSize uint32
	PacketCount  uint32
	ErrorCount   int
	State        State
}

// Stats summarizes a completed or aborted transfer. Receiver.Stats
// reports it for the last ReceiveFile call; Sender.SendFile returns
// it for the file it sent.
type Stats struct {
	Packets uint32
	Retries int
	Bytes   uint32
}

// BlockSink receives successfully validated packet payloads in order.
// It is the Go expression of the original callback contract: called
// synchronously, at most once per packet, with the packet's payload
// cut to the bytes still remaining in the file (so a short final
// packet never delivers its padding). Returning an error aborts the transfer
// with a CAN.
type BlockSink interface {
	WriteBlock(seq uint8, data []byte) error
}
