//go:build !tinygo

package main

// This file provides a stub definition for the regular Go toolchain
// (staticcheck, go vet). The actual entry point is in main.go and the
// board_*.go files (TinyGo only).

import "github.com/lingzolabs/simpleboot/boot"

func newController() *boot.Controller {
	panic("simpleboot: newController is only implemented for tinygo targets")
}

func main() {}
