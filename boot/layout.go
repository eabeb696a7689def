// Package boot implements the update controller: the entry decision,
// the receive-erase-program-verify sequence, the installed-image
// validator, and (on real hardware) the handover into the
// application. It is written against the flash.Driver and
// serial.Port interfaces, so a Controller runs identically against
// real silicon and against the in-memory test doubles.
//
// The metadata record is programmed before VerifyImage re-reads the
// image, so an image that fails verification keeps a valid magic
// until the next update cycle erases it.
package boot

// Layout describes one board's flash geometry and the fixed
// addresses the update controller depends on. Every address is
// absolute, not an offset from FlashBase. Two instantiations ship in
// board/rp2040 and board/stm32f1; nothing in this package hardcodes a
// particular board's numbers.
type Layout struct {
	// FlashBase is the first address of flash memory.
	FlashBase uint32
	// FlashEnd is the last valid address of flash memory (inclusive).
	FlashEnd uint32
	// PageSize is the erase granularity in bytes.
	PageSize uint32

	// BootloaderSize is how much of flash, starting at FlashBase, this
	// firmware itself occupies.
	BootloaderSize uint32

	// MetaAddr is where the 16-byte firmware.Metadata record lives,
	// conventionally AppStart-0x30.
	MetaAddr uint32
	// MetaSize is the reserved region size at MetaAddr (>= firmware.Size).
	MetaSize uint32
	// AppStart is the first address of the application image.
	AppStart uint32

	// RAMStart and RAMEnd bound the region a valid stack pointer must
	// fall within (the first installed-image validity check).
	RAMStart uint32
	RAMEnd   uint32

	// EntryCellAddr is the RAM address of the word that, when holding
	// EntryMagic at boot, forces re-entry into update mode.
	EntryCellAddr uint32
}

// EntryMagic is the sentinel value application code writes to a
// board's EntryCellAddr (immediately before a self-triggered reset)
// to ask the bootloader to wait for a new firmware image instead of
// jumping straight back into the application.
const EntryMagic = 0xDEADBEEF

// EraseLen returns the number of bytes the update sequence erases:
// everything from MetaAddr through FlashEnd.
func (l Layout) EraseLen() uint32 {
	return l.FlashEnd - l.MetaAddr + 1
}
