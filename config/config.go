// Package config holds build-time overridable operational parameters for the
// bootloader core: the busy-poll iteration budgets from spec §4.1/§4.7 and the
// UART baud rate from §6. Overrides are optional embedded text files so a
// board variant can tune timing without touching Go source, the same pattern
// the teacher repo uses for its MQTT broker address and refresh intervals.
package config

import (
	_ "embed"
	"strconv"
	"strings"
)

// Defaults, taken directly from spec.md §4.1 and §4.7.
const (
	DefaultInFrameTimeoutIters  = 65535       // per-byte timeout while inside a frame
	DefaultIdleTimeoutIters     = 1_000_000   // inter-command idle timeout
	DefaultActivateTimeoutIters = 1_000_000   // activation poll budget
	DefaultUARTBaud             = 500000
)

// Optional overrides (empty file = use default).
var (
	//go:embed in_frame_timeout.text
	inFrameTimeoutOverride string

	//go:embed idle_timeout.text
	idleTimeoutOverride string

	//go:embed activate_timeout.text
	activateTimeoutOverride string

	//go:embed uart_baud.text
	uartBaudOverride string
)

// InFrameTimeoutIters returns the busy-poll budget for a single byte inside
// an in-progress frame (spec §4.1's "~65,535 iterations" tier).
func InFrameTimeoutIters() int {
	return overrideInt(inFrameTimeoutOverride, DefaultInFrameTimeoutIters)
}

// IdleTimeoutIters returns the busy-poll budget between commands (spec
// §4.7's "~10^6 poll iterations" idle timeout).
func IdleTimeoutIters() int {
	return overrideInt(idleTimeoutOverride, DefaultIdleTimeoutIters)
}

// ActivateTimeoutIters returns the busy-poll budget for the activation
// handshake (spec §4.7's activate(timeout)).
func ActivateTimeoutIters() int {
	return overrideInt(activateTimeoutOverride, DefaultActivateTimeoutIters)
}

// UARTBaud returns the configured baud rate, defaulting to the spec's 500000.
func UARTBaud() uint32 {
	return uint32(overrideInt(uartBaudOverride, DefaultUARTBaud))
}

func overrideInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
