//go:build !tinygo

package flash

import "github.com/openenterprise/an3155boot/bootcfg"

// SimReadoutProtected is the host-simulator stand-in for the option byte
// readout-protection state FPEC reads from silicon.
var SimReadoutProtected = true

// Sim is an in-memory Facade for host tests, including cmd/flashctl's
// client tests: a byte slice addressed by Layout.FlashBase, the host-testable twin
// to FPEC the way link.Pipe stands in for link.UARTLink.
type Sim struct {
	Layout   bootcfg.Layout
	mem      []byte
	locked   bool
	lastSR   Status
	WriteErr map[uint32]Status // addresses that should report a program error
}

// NewSim allocates a simulated flash image sized to l.FlashSizeBytes.
func NewSim(l bootcfg.Layout) *Sim {
	return &Sim{
		Layout:   l,
		mem:      make([]byte, l.FlashSizeBytes),
		locked:   true,
		WriteErr: map[uint32]Status{},
	}
}

func (s *Sim) offset(addr uint32) (int, bool) {
	if addr < s.Layout.FlashBase || addr >= s.Layout.FlashEnd() {
		return 0, false
	}
	return int(addr - s.Layout.FlashBase), true
}

func (s *Sim) Unlock() error {
	s.locked = false
	return nil
}

func (s *Sim) Lock() error {
	s.locked = true
	return nil
}

func (s *Sim) ClearErrors() {
	s.lastSR = Complete
}

func (s *Sim) ProgramWord(addr, value uint32) Status {
	if addr&0x3 != 0 {
		return AlignError
	}
	if s.locked {
		return WriteProtected
	}
	if st, bad := s.WriteErr[addr]; bad {
		return st
	}
	off, ok := s.offset(addr)
	if !ok || off+4 > len(s.mem) {
		return ProgramError
	}
	s.mem[off] = byte(value)
	s.mem[off+1] = byte(value >> 8)
	s.mem[off+2] = byte(value >> 16)
	s.mem[off+3] = byte(value >> 24)
	return Complete
}

func (s *Sim) EraseApplication(plan []bootcfg.SectorSpan) Status {
	if s.locked {
		return WriteProtected
	}
	for _, span := range plan {
		off, ok := s.offset(span.Addr)
		if !ok || off+int(span.Size) > len(s.mem) {
			return ProgramError
		}
		for i := 0; i < int(span.Size); i++ {
			s.mem[off+i] = 0xFF
		}
	}
	return Complete
}

// ReadoutProtected mirrors flash_tinygo.go's FPEC option-byte read.
func (s *Sim) ReadoutProtected() bool {
	return SimReadoutProtected
}

func (s *Sim) Read(addr uint32, dst []byte) {
	off, ok := s.offset(addr)
	if !ok {
		for i := range dst {
			dst[i] = 0xFF
		}
		return
	}
	n := copy(dst, s.mem[off:])
	for i := n; i < len(dst); i++ {
		dst[i] = 0xFF
	}
}
