//go:build tinygo && !stm32f1

package main

import (
	"github.com/lingzolabs/simpleboot/board/rp2040"
	"github.com/lingzolabs/simpleboot/boot"
)

// newController wires up the board this firmware is built for. The
// reference build target is RP2040; pass -tags stm32f1 to build for
// the STM32F1 layout instead.
func newController() *boot.Controller {
	return rp2040.New()
}
