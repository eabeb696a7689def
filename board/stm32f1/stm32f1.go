// Package stm32f1 instantiates boot.Layout for the original bootloader's
// reference part: a 64KB single-bank STM32F1 with a 16KB bootloader
// partition and a 1KB page erase granularity.
package stm32f1

import "github.com/lingzolabs/simpleboot/boot"

const (
	flashBase      = 0x08000000
	flashEnd       = 0x0800FFFF
	pageSize       = 1024
	bootloaderSize = 0x4000 // 16KB
	metaSize       = 0x30

	ramStart = 0x20000000
	ramEnd   = 0x20004FFF // 20KB SRAM

	// defaultUARTBaud is the fallback used by UARTBaud when no
	// override file is present. Lives here, not in device_tinygo.go,
	// so the host build (and overrides_test.go) can see it too.
	defaultUARTBaud = 115200
)

// Layout is the flash/RAM geometry for this board.
var Layout = boot.Layout{
	FlashBase:      flashBase,
	FlashEnd:       flashEnd,
	PageSize:       pageSize,
	BootloaderSize: bootloaderSize,
	MetaAddr:       flashBase + bootloaderSize - metaSize,
	MetaSize:       metaSize,
	AppStart:       flashBase + bootloaderSize,
	RAMStart:       ramStart,
	RAMEnd:         ramEnd,
	EntryCellAddr:  ramStart,
}
