//go:build tinygo && stm32f1

package main

import (
	"github.com/lingzolabs/simpleboot/board/stm32f1"
	"github.com/lingzolabs/simpleboot/boot"
)

func newController() *boot.Controller {
	return stm32f1.New()
}
