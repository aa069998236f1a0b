// Package link implements spec.md §4.1's Byte Link: the blocking,
// order-preserving single-byte transport every protocol frame is built on
// top of. Concrete implementations live behind build tags: link_tinygo.go
// drives a real machine.UART, pipe.go is an in-memory transport for tests,
// and hostserial_*.go back the host-side cmd/flashctl
// tool with a real or emulated serial port.
package link

// Link is the Byte Link interface the session engine is written against.
// Every wait has a caller-supplied iteration budget rather than a wall
// clock, matching the bare-metal busy-poll model of spec.md §5.
type Link interface {
	// RecvReady reports whether a byte is currently buffered.
	RecvReady() bool
	// Recv returns the currently buffered byte. Undefined if !RecvReady().
	Recv() byte
	// WaitByte busy-polls RecvReady up to timeoutIters times, returning
	// the byte and true on success, or 0 and false on timeout.
	WaitByte(timeoutIters int) (byte, bool)
	// Send blocks until the transmitter is ready, then writes b.
	Send(b byte)
	// SendBlock calls Send for every byte of buf in order.
	SendBlock(buf []byte)
}
