// Package flash defines the device-independent flash-programming contract
// spec.md §4.3 asks commands to drive: unlock/lock, word programming, an
// application-region erase plan, and a raw read primitive for cmd_read.
// flash_tinygo.go backs it with the real FPEC register sequence; flash_sim.go
// backs it with an in-memory byte slice for host tests, including
// cmd/flashctl's.
package flash

import "github.com/openenterprise/an3155boot/bootcfg"

// Status mirrors the FPEC status-register outcomes a program/erase
// operation can end in.
type Status int

const (
	Complete Status = iota
	Busy
	ProgramError
	WriteProtected
	AlignError
	Timeout
)

func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case Busy:
		return "busy"
	case ProgramError:
		return "program error"
	case WriteProtected:
		return "write protected"
	case AlignError:
		return "alignment error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Facade is the flash controller surface session.Session drives. Every
// Session holds exactly one Facade for the lifetime of an activation.
type Facade interface {
	Unlock() error
	Lock() error
	ClearErrors()
	ProgramWord(addr, value uint32) Status
	EraseApplication(plan []bootcfg.SectorSpan) Status
	Read(addr uint32, dst []byte)

	// ReadoutProtected reports the option byte readout-protection state
	// (bootloader_init's check_protect gate), so session.RunSelfTest can
	// drive it through the same interface tests use.
	ReadoutProtected() bool
}
