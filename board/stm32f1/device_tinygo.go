//go:build tinygo

package stm32f1

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
	buttonPin = machine.PA0
	fpecBase  = 0x40022000

	iwdgBase = 0x40003000
	iwdgKR   = 0x00
	iwdgPR   = 0x04
	iwdgRLR  = 0x08

	iwdgKeyUnlock = 0x5555
	iwdgKeyStart  = 0xCCCC
	iwdgFastestPR = 0x00 // divide-by-4, the shortest prescaler IWDG offers
	iwdgMinReload = 0x000
)

// New wires a boot.Controller for this board: the debug USART, the
// FPEC register-level flash driver, the KEY2 entry button (active
// high, matching bootloader_is_button_pressed), and an independent
// watchdog trigger for the functional watchdog's last resort.
func New() *boot.Controller {
	uart := machine.UART1
	uart.Configure(machine.UARTConfig{BaudRate: uint32(UARTBaud())})

	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	return &boot.Controller{
		Layout:     Layout,
		Port:       serial.NewUART(uart),
		Flash:      flash.NewSTM32F1(fpecBase, Layout.PageSize),
		Entry:      boot.NewRAMEntryCell(Layout.EntryCellAddr),
		Log:        diag.New(uart),
		ButtonDown: func() bool { return buttonPin.Get() },
		Reset:      reset,
	}
}

// reset forces an immediate reset through the STM32F1's independent
// watchdog (IWDG). The part has no single trigger bit like RP2040's,
// so this arms IWDG with its fastest prescaler and minimum reload and
// starts it, resetting within one LSI-clocked tick instead of a
// software HAL reset.
func reset() {
	kr := (*uint32)(unsafe.Pointer(uintptr(iwdgBase + iwdgKR)))
	pr := (*uint32)(unsafe.Pointer(uintptr(iwdgBase + iwdgPR)))
	rlr := (*uint32)(unsafe.Pointer(uintptr(iwdgBase + iwdgRLR)))

	*kr = iwdgKeyUnlock
	*pr = iwdgFastestPR
	*rlr = iwdgMinReload
	*kr = iwdgKeyStart

	for {
		time.Sleep(time.Second)
	}
}
