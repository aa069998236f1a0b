//go:build !linux

package link

import (
	"fmt"

	"github.com/pkg/term"
)

// HostSerial is the non-Linux fallback transport for cmd/flashctl: the
// termios2/BOTHER custom-speed path in hostserial_linux.go is Linux-only,
// so here we fall back to github.com/pkg/term's portable raw-mode open,
// the same library _examples/tinkerator-qftool/qftool.go uses to talk to
// its own serial bootloader.
type HostSerial struct {
	t       *term.Term
	pending []byte
}

// OpenHostSerial opens name in raw mode at baud. Parity/stop-bit framing
// is left to the OS default on this fallback path; the spec's 8E1 framing
// is best-effort here and exact only on the Linux path.
func OpenHostSerial(name string, baud uint32) (*HostSerial, error) {
	t, err := term.Open(name, term.Speed(int(baud)), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", name, err)
	}
	return &HostSerial{t: t}, nil
}

func (h *HostSerial) RecvReady() bool {
	var buf [1]byte
	n, err := h.t.Read(buf[:])
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
	h.t.Write([]byte{b})
}

func (h *HostSerial) SendBlock(buf []byte) {
	h.t.Write(buf)
}

func (h *HostSerial) Close() error {
	return h.t.Close()
}
