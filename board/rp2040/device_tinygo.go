//go:build tinygo

package rp2040

import (
	"machine"
	"time"
	"unsafe"

	"github.com/lingzolabs/simpleboot/boot"
	"github.com/lingzolabs/simpleboot/diag"
	"github.com/lingzolabs/simpleboot/flash"
	"github.com/lingzolabs/simpleboot/serial"
)

const (
	buttonPin = machine.GP15

	watchdogBase    = 0x40058000
	watchdogCtrlOff = 0x00
	watchdogTrigger = 1 << 31
)

// New wires a boot.Controller for this board: the debug UART, the
// boot-ROM-call flash driver, the BOOTSEL-adjacent entry button, and
// a watchdog-trigger reset the controller calls after too many
// consecutive failed update cycles.
func New() *boot.Controller {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: uint32(UARTBaud())})

	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	return &boot.Controller{
		Layout:     Layout,
		Port:       serial.NewUART(uart),
		Flash:      flash.NewRP2040(Layout.FlashBase, Layout.PageSize),
		Entry:      boot.NewRAMEntryCell(Layout.EntryCellAddr),
		Log:        diag.New(uart),
		ButtonDown: func() bool { return !buttonPin.Get() },
		Reset:      reset,
	}
}

// reset forces an immediate watchdog reset by setting the RP2040
// watchdog's TRIGGER bit directly, the same register Pico SDK's
// watchdog_reboot uses, rather than waiting out a timeout.
func reset() {
	ctrl := (*uint32)(unsafe.Pointer(uintptr(watchdogBase + watchdogCtrlOff)))
	*ctrl |= watchdogTrigger
	for {
		time.Sleep(time.Second)
	}
}
