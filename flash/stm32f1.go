//go:build tinygo

package flash

import "unsafe"

// STM32F1 register offsets from the flash interface (FPEC) base,
// matching the original bootloader's HAL_FLASH_* calls and the
// KEY/CTL/SR layout used by the pack's other Cortex-M flash driver.
const (
	stm32f1RegACR  = 0x00
	stm32f1RegKEYR = 0x04
	stm32f1RegSR   = 0x0C
	stm32f1RegCR   = 0x10
	stm32f1RegAR   = 0x14

	stm32f1Key1 = 0x45670123
	stm32f1Key2 = 0xCDEF89AB

	stm32f1CRPG    = 1 << 0 // programming
	stm32f1CRPER   = 1 << 1 // page erase
	stm32f1CRSTRT  = 1 << 6 // start
	stm32f1CRLOCK  = 1 << 7 // lock
	stm32f1SRBusy  = 1 << 0
	stm32f1SREOP   = 1 << 5
)

// STM32F1 programs the single-bank embedded flash on an STM32F1-class
// part through its FPEC register block, the same unlock-key/CR-bit
// sequence the original firmware issued via the HAL, reimplemented at
// the register level the way the pack's gd32vf103 driver does it.
type STM32F1 struct {
	fpecBase uint32
	pageSize uint32
}

// NewSTM32F1 returns a driver for flash at fpecBase (conventionally
// 0x40022000) with the given page size (1KB on the original board).
func NewSTM32F1(fpecBase, pageSize uint32) *STM32F1 {
	return &STM32F1{fpecBase: fpecBase, pageSize: pageSize}
}

func (d *STM32F1) reg(offset uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(uintptr(d.fpecBase + offset)))
}

func (d *STM32F1) PageSize() uint32 { return d.pageSize }

// ReadAt reads directly from flash's normal memory-mapped address
// space (distinct from the FPEC register block this driver otherwise
// talks to); no unlock is required to read.
func (d *STM32F1) ReadAt(addr, length uint32) ([]byte, error) {
	out := make([]byte, length)
	src := (*[1 << 20]byte)(unsafe.Pointer(uintptr(addr)))[:length:length]
	copy(out, src)
	return out, nil
}

func (d *STM32F1) Unlock() error {
	cr := d.reg(stm32f1RegCR)
	if *cr&stm32f1CRLOCK == 0 {
		return nil
	}
	*d.reg(stm32f1RegKEYR) = stm32f1Key1
	*d.reg(stm32f1RegKEYR) = stm32f1Key2
	if *cr&stm32f1CRLOCK != 0 {
		return ErrLocked
	}
	return nil
}

func (d *STM32F1) Lock() error {
	*d.reg(stm32f1RegCR) |= stm32f1CRLOCK
	return nil
}

func (d *STM32F1) waitReady() {
	for *d.reg(stm32f1RegSR)&stm32f1SRBusy != 0 {
	}
}

func (d *STM32F1) EraseRange(startAddr, byteLen uint32) error {
	end := startAddr + byteLen
	for addr := startAddr; addr < end; addr += d.pageSize {
		d.waitReady()
		cr := d.reg(stm32f1RegCR)
		*cr |= stm32f1CRPER
		*d.reg(stm32f1RegAR) = addr
		*cr |= stm32f1CRSTRT
		d.waitReady()
		*cr &^= stm32f1CRPER
		*d.reg(stm32f1RegSR) = stm32f1SREOP
	}
	return nil
}

func (d *STM32F1) ProgramHalfword(addr uint32, value uint16) error {
	if addr%2 != 0 {
		return ErrRange
	}
	d.waitReady()
	cr := d.reg(stm32f1RegCR)
	*cr |= stm32f1CRPG
	target := (*uint16)(unsafe.Pointer(uintptr(addr)))
	*target = value
	d.waitReady()
	*cr &^= stm32f1CRPG
	*d.reg(stm32f1RegSR) = stm32f1SREOP

	if *target != value {
		return ErrVerifyFailed
	}
	return nil
}
