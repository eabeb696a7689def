package stm32f1

import (
	_ "embed"
	"strconv"
	"strings"
)

// uartBaudOverride lets a per-unit build pin a non-default UART baud
// rate without a source change, the same go:embed-text-file-with-
// fallback mechanism the teacher's config package uses for its own
// deploy-time overrides.
//
//go:embed uart_baud.text
var uartBaudOverride string

// UARTBaud returns the configured UART baud rate: the override file's
// contents if non-empty and parseable, else defaultUARTBaud.
func UARTBaud() int {
	if v := strings.TrimSpace(uartBaudOverride); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultUARTBaud
}
