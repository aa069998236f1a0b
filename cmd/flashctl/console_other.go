//go:build !linux

package main

import "errors"

// fdHolder and runConsole are only implemented on Linux, where
// golang.org/x/sys/unix.Select can multiplex stdin against the serial fd.
type fdHolder interface {
	Fd() int
}

func runConsole(fdHolder) error {
	return errors.New("console mode is only supported on linux")
}
