//go:build tinygo

package boot

import (
	"device/arm"
	"unsafe"

	"github.com/lingzolabs/simpleboot/serial"
)

// vtorAddr is the Cortex-M System Control Block's Vector Table
// Offset Register.
const vtorAddr = 0xE000ED08

// Handover transfers control from the bootloader to the installed
// application at layout.AppStart. It disables interrupts, lets the
// caller deinitialize any peripherals it owns (the serial port at
// minimum), relocates the vector table, loads the application's
// initial stack pointer, and jumps to its reset handler. It does not
// return; callers that somehow regain control after calling it
// should treat that as a fatal condition.
//
// The function pointer construction below is inherently unsafe: the
// reset vector read from flash is an address, not a Go value, and
// turning it into something callable requires reaching past the type
// system. This is kept to the smallest body that does so.
func Handover(layout Layout, port serial.Port, deinit func()) {
	header := (*[2]uint32)(unsafe.Pointer(uintptr(layout.AppStart)))
	stackPtr := header[0]
	resetVector := header[1]

	// The original bootloader's handover additionally called
	// __set_PRIMASK(0) here, which actually clears PRIMASK (re-enabling
	// interrupts) rather than masking them further — a quirk of that
	// implementation, not a step worth reproducing: DisableInterrupts
	// already leaves the core in the masked state a fresh vector table
	// and stack pointer should be installed under.
	arm.DisableInterrupts()

	if deinit != nil {
		deinit()
	}
	_ = port

	*(*uint32)(unsafe.Pointer(uintptr(vtorAddr))) = layout.AppStart
	arm.AsmFull("msr MSP, {sp}", map[string]interface{}{"sp": stackPtr})

	entry := *(*func())(unsafe.Pointer(&resetVector))
	entry()

	for {
		// entry() must never return; if it somehow does, lock up
		// rather than fall back into bootloader code running with the
		// application's vector table installed.
	}
}
