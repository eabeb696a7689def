//go:build !tinygo

package boot

import "github.com/lingzolabs/simpleboot/serial"

// Handover is unavailable on the regular Go toolchain (staticcheck,
// go vet, host tests): the real implementation in handover_arm.go
// requires Cortex-M register access that only exists under TinyGo.
// This stub lets the rest of the package type-check and be tested on
// the host; it must never actually run there.
func Handover(layout Layout, port serial.Port, deinit func()) {
	panic("boot: Handover is only implemented for tinygo targets")
}
