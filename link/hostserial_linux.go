//go:build linux

package link

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// HostSerial backs Link with a real /dev/ttyUSBx (or similar) port for
// cmd/flashctl, configured to the 8E1-like framing spec.md §4.1 requires at
// a possibly non-standard baud (the spec's default is 500000, which isn't
// one of the fixed termios speeds, hence the termios2/BOTHER custom-speed
// path below, extending the ioctl technique in
// _examples/Daedaluz-goserial/port_linux.go).
type HostSerial struct {
	port    *serial.Port
	pending []byte
}

// OpenHostSerial opens name at baud with 8 data bits, even parity, one stop
// bit, and a short read timeout so WaitByte's iteration budget can do its
// own busy-poll pacing instead of blocking indefinitely in the kernel.
func OpenHostSerial(name string, baud uint32) (*HostSerial, error) {
	opts := serial.NewOptions().SetReadTimeout(2 * time.Millisecond)
	port, err := serial.Open(name, opts)
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", name, err)
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("link: get attrs: %w", err)
	}
	attrs.MakeRaw()
	attrs.Cflag &^= serial.CSTOPB
	attrs.Cflag &^= serial.CSIZE
	attrs.Cflag |= serial.CS8 | serial.PARENB
	attrs.Cflag &^= serial.PARODD // even parity
	attrs.SetCustomSpeed(baud)

	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("link: set attrs: %w", err)
	}

	return &HostSerial{port: port}, nil
}

// RecvReady performs a short, timeout-bounded read and buffers any byte it
// gets so Recv can hand it back without doing a second syscall.
func (h *HostSerial) RecvReady() bool {
	if len(h.pending) > 0 {
		return true
	}
	var buf [1]byte
	n, err := h.port.Read(buf[:])
	if err != nil || n == 0 {
		return false
	}
	h.pending = append(h.pending, buf[0])
	return true
}

func (h *HostSerial) Recv() byte {
	if len(h.pending) == 0 {
		return 0
	}
	b := h.pending[0]
	h.pending = h.pending[1:]
	return b
}

func (h *HostSerial) WaitByte(timeoutIters int) (byte, bool) {
	for i := 0; i < timeoutIters; i++ {
		if h.RecvReady() {
			return h.Recv(), true
		}
	}
	return 0, false
}

func (h *HostSerial) Send(b byte) {
	h.port.Write([]byte{b})
}

func (h *HostSerial) SendBlock(buf []byte) {
	h.port.Write(buf)
}

func (h *HostSerial) Close() error {
	return h.port.Close()
}

// Fd exposes the underlying file descriptor so cmd/flashctl's console mode
// can multiplex it against stdin with unix.Select.
func (h *HostSerial) Fd() int {
	return h.port.Fd()
}
