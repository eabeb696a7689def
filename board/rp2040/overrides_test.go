package rp2040

import "testing"

func TestUARTBaudDefaultsWhenOverrideEmpty(t *testing.T) {
	if got := UARTBaud(); got != defaultUARTBaud {
		t.Fatalf("UARTBaud() = %d, want default %d", got, defaultUARTBaud)
	}
}
