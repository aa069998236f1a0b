//go:build tinygo

package link

import "machine"

// UARTLink backs Link with a real machine.UART, configured by the caller
// (baud/parity/pins are the out-of-scope "UART driver bring-up" concern
// spec.md §1 names as an external collaborator).
type UARTLink struct {
	uart *machine.UART
}

// NewUARTLink wraps an already-configured UART.
func NewUARTLink(uart *machine.UART) *UARTLink {
	return &UARTLink{uart: uart}
}

func (u *UARTLink) RecvReady() bool {
	return u.uart.Buffered() > 0
}

func (u *UARTLink) Recv() byte {
	b, _ := u.uart.ReadByte()
	return b
}

func (u *UARTLink) WaitByte(timeoutIters int) (byte, bool) {
	for i := 0; i < timeoutIters; i++ {
		if u.RecvReady() {
			return u.Recv(), true
		}
	}
	return 0, false
}

func (u *UARTLink) Send(b byte) {
	u.uart.WriteByte(b)
}

func (u *UARTLink) SendBlock(buf []byte) {
	for _, b := range buf {
		u.Send(b)
	}
}
