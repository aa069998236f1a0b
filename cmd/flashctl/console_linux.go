//go:build linux

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// fdHolder is implemented by link.HostSerial on Linux: console mode needs
// the raw fd to multiplex it against stdin with unix.Select, something the
// Link interface's busy-poll model doesn't expose.
type fdHolder interface {
	Fd() int
}

// runConsole puts the local terminal in raw mode and relays bytes between
// stdin/stdout and the serial port until Ctrl-] is pressed, the same
// passthrough escape qftool's raw-mode terminal uses.
func runConsole(h fdHolder) error {
	serialFd := h.Fd()
	stdinFd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		return fmt.Errorf("console: raw mode: %w", err)
	}
	defer term.Restore(stdinFd, oldState)

	fmt.Fprint(os.Stderr, "\r\nentering console passthrough, Ctrl-] to exit\r\n")

	buf := make([]byte, 256)
	for {
		var rfds unix.FdSet
		fdSet(&rfds, stdinFd)
		fdSet(&rfds, serialFd)
		maxFd := stdinFd
		if serialFd > maxFd {
			maxFd = serialFd
		}

		n, err := unix.Select(maxFd+1, &rfds, nil, nil, nil)
		if err != nil || n <= 0 {
			continue
		}

		if fdIsSet(&rfds, stdinFd) {
			n, err := unix.Read(stdinFd, buf)
			if err != nil || n == 0 {
				return nil
			}
			for _, b := range buf[:n] {
				if b == 0x1D { // Ctrl-]
					return nil
				}
				unix.Write(serialFd, []byte{b})
			}
		}

		if fdIsSet(&rfds, serialFd) {
			n, err := unix.Read(serialFd, buf)
			if err != nil || n == 0 {
				continue
			}
			os.Stdout.Write(buf[:n])
		}
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
