package boot

import (
	"github.com/lingzolabs/simpleboot/crc"
	"github.com/lingzolabs/simpleboot/firmware"
	"github.com/lingzolabs/simpleboot/flash"
)

// ErrInvalidImage is returned by ValidateImage when the installed
// image fails any of its three structural checks.
var ErrInvalidImage = errBoot("boot: installed image invalid")

// ErrVerifyMismatch is returned when a freshly written image's CRC-32
// does not match the value recorded in its metadata.
var ErrVerifyMismatch = errBoot("boot: firmware CRC-32 mismatch")

type errBoot string

func (e errBoot) Error() string { return string(e) }

// ValidateImage runs the three structural checks the original
// bootloader performs before trusting an installed image enough to
// jump to it: the first word at AppStart must look like a stack
// pointer into RAM, the second word must look like a Thumb reset
// vector into flash, and the metadata record's magic must match.
// Any single failure means "not ready", not a hard error — the
// caller falls back to waiting for a new firmware image.
func ValidateImage(r flash.Reader, l Layout) bool {
	header, err := r.ReadAt(l.AppStart, 8)
	if err != nil {
		return false
	}
	stackPtr := leUint32(header[0:4])
	resetVector := leUint32(header[4:8])

	if stackPtr < l.RAMStart || stackPtr > l.RAMEnd {
		return false
	}
	if resetVector < l.AppStart || resetVector > l.FlashEnd {
		return false
	}
	if resetVector&1 == 0 {
		// Thumb bit must be set: every valid Cortex-M reset vector
		// points at Thumb code.
		return false
	}

	metaRaw, err := r.ReadAt(l.MetaAddr, firmware.Size)
	if err != nil {
		return false
	}
	meta, err := firmware.Decode(metaRaw)
	if err != nil {
		return false
	}
	return meta.Valid()
}

// VerifyImage re-runs ValidateImage's structural checks, then
// recomputes the installed image's CRC-32 over its recorded size and
// compares it against the metadata record. Both must hold for an
// update to be considered successful.
func VerifyImage(r flash.Reader, l Layout) error {
	if !ValidateImage(r, l) {
		return ErrInvalidImage
	}

	metaRaw, err := r.ReadAt(l.MetaAddr, firmware.Size)
	if err != nil {
		return ErrInvalidImage
	}
	meta, err := firmware.Decode(metaRaw)
	if err != nil {
		return ErrInvalidImage
	}

	data, err := r.ReadAt(l.AppStart, meta.Size)
	if err != nil {
		return ErrVerifyMismatch
	}
	if calculated := crc.UpdateIEEE(0xFFFFFFFF, data); calculated != meta.CRC32 {
		return ErrVerifyMismatch
	}
	return nil
}

// ErrTooShort is returned by ValidateImageBytes for a file too small
// to even hold the stack-pointer/reset-vector header.
var ErrTooShort = errBoot("boot: image shorter than the 8-byte header")

// ErrBadStackPointer and ErrBadResetVector report which structural
// check ValidateImageBytes failed, for the host tool's more verbose
// pre-flight diagnostics (ValidateImage itself, running on-target,
// only needs a bool).
var (
	ErrBadStackPointer = errBoot("boot: stack pointer not within the board's RAM range")
	ErrBadResetVector  = errBoot("boot: reset vector not within flash, or missing the Thumb bit")
)

// ValidateImageBytes runs the same stack-pointer/reset-vector checks
// ValidateImage does, directly against a raw firmware file rather
// than programmed flash. It exists for the host-side tool to sanity
// check an image before spending time on a transfer; it cannot check
// the metadata record, since a raw image file has none yet.
func ValidateImageBytes(data []byte, l Layout) error {
	if len(data) < 8 {
		return ErrTooShort
	}
	stackPtr := leUint32(data[0:4])
	resetVector := leUint32(data[4:8])

	if stackPtr < l.RAMStart || stackPtr > l.RAMEnd {
		return ErrBadStackPointer
	}
	if resetVector < l.AppStart || resetVector > l.FlashEnd || resetVector&1 == 0 {
		return ErrBadResetVector
	}
	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
