//go:build !tinygo

package flash

import (
	"testing"

	"github.com/openenterprise/an3155boot/bootcfg"
)

func TestProgramWordRequiresUnlock(t *testing.T) {
	s := NewSim(bootcfg.Active)
	if st := s.ProgramWord(bootcfg.Active.BootloaderTo, 0x11223344); st != WriteProtected {
		t.Fatalf("status = %v, want WriteProtected", st)
	}
}

func TestProgramWordRoundTrip(t *testing.T) {
	l := bootcfg.Active
	s := NewSim(l)
	s.Unlock()

	addr := l.BootloaderTo
	if st := s.ProgramWord(addr, 0xDEADBEEF); st != Complete {
		t.Fatalf("status = %v, want Complete", st)
	}

	got := make([]byte, 4)
	s.Read(addr, got)
	want := []byte{0xEF, 0xBE, 0xAD, 0xDE}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestProgramWordRejectsMisalignedAddress(t *testing.T) {
	l := bootcfg.Active
	s := NewSim(l)
	s.Unlock()
	if st := s.ProgramWord(l.BootloaderTo+1, 0); st != AlignError {
		t.Fatalf("status = %v, want AlignError", st)
	}
}

func TestEraseApplicationFillsWithErasedValue(t *testing.T) {
	l := bootcfg.Active
	s := NewSim(l)
	s.Unlock()
	s.ProgramWord(l.BootloaderTo, 0x01020304)

	if st := s.EraseApplication(l.ApplicationErasePlan()); st != Complete {
		t.Fatalf("status = %v, want Complete", st)
	}

	got := make([]byte, 4)
	s.Read(l.BootloaderTo, got)
	for _, b := range got {
		if b != 0xFF {
			t.Fatal("erased region must read back as 0xFF")
		}
	}
}

func TestReadOutsideFlashReturnsFF(t *testing.T) {
	s := NewSim(bootcfg.Active)
	got := make([]byte, 4)
	s.Read(0xE0000000, got)
	for _, b := range got {
		if b != 0xFF {
			t.Fatal("out-of-range read must fill 0xFF")
		}
	}
}

func TestStatusStrings(t *testing.T) {
	cases := map[Status]string{
		Complete:       "complete",
		Busy:           "busy",
		ProgramError:   "program error",
		WriteProtected: "write protected",
		AlignError:     "alignment error",
		Timeout:        "timeout",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
