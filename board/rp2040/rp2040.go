// Package rp2040 instantiates boot.Layout for an RP2040-class board:
// 2MB of QSPI flash addressed through the XIP window, erased in 4KB
// sectors, bootloader occupying the first 256KB.
package rp2040

import "github.com/lingzolabs/simpleboot/boot"

const (
	flashBase      = 0x10000000
	flashSize      = 2 * 1024 * 1024
	pageSize       = 4096
	bootloaderSize = 256 * 1024
	metaSize       = 0x30

	ramStart = 0x20000000
	ramSize  = 264 * 1024 // RP2040 total SRAM across banks 0-3 + 4-5

	// defaultUARTBaud is the fallback used by UARTBaud when no
	// override file is present. Lives here, not in device_tinygo.go,
	// so the host build (and overrides_test.go) can see it too.
	defaultUARTBaud = 115200
)

// Layout is the flash/RAM geometry for this board.
var Layout = boot.Layout{
	FlashBase:      flashBase,
	FlashEnd:       flashBase + flashSize - 1,
	PageSize:       pageSize,
	BootloaderSize: bootloaderSize,
	MetaAddr:       flashBase + bootloaderSize - metaSize,
	MetaSize:       metaSize,
	AppStart:       flashBase + bootloaderSize,
	RAMStart:       ramStart,
	RAMEnd:         ramStart + ramSize - 1,
	EntryCellAddr:  ramStart,
}
