package region

import (
	"testing"

	"github.com/openenterprise/an3155boot/bootcfg"
)

func TestCheckAddrRejectsBootloaderRange(t *testing.T) {
	l := bootcfg.Active
	if CheckAddr(l, l.BootloaderFrom) {
		t.Fatal("BootloaderFrom must be rejected")
	}
	if CheckAddr(l, l.BootloaderTo-1) {
		t.Fatal("last byte before BootloaderTo must be rejected")
	}
}

func TestCheckAddrAcceptsApplicationRegion(t *testing.T) {
	l := bootcfg.Active
	if !CheckAddr(l, l.BootloaderTo) {
		t.Fatal("BootloaderTo (start of application) must be accepted")
	}
	if !CheckAddr(l, l.FlashEnd()-1) {
		t.Fatal("last byte of flash must be accepted")
	}
}

func TestCheckAddrAcceptsFlashSizeIDWindow(t *testing.T) {
	l := bootcfg.Active
	if !CheckAddr(l, l.FlashSizeIDAddr) {
		t.Fatal("flash-size id address must be accepted")
	}
}

func TestCheckAddrRejectsOutOfRange(t *testing.T) {
	l := bootcfg.Active
	if CheckAddr(l, 0xE0000000) {
		t.Fatal("address far outside flash/id window must be rejected")
	}
}

func TestCorrectedSizeBytesExcludesBootloader(t *testing.T) {
	l := bootcfg.Active
	lo, hi := CorrectedSizeBytes(l)
	got := uint16(hi)<<8 | uint16(lo)
	want := l.UsableSizeKiB()
	if got != want {
		t.Fatalf("corrected size = %d, want %d", got, want)
	}
}

func TestFlashSizeIDByteOffset(t *testing.T) {
	l := bootcfg.Active
	if off := FlashSizeIDByteOffset(l, l.FlashSizeIDAddr); off != 0 {
		t.Fatalf("low byte offset = %d, want 0", off)
	}
	if off := FlashSizeIDByteOffset(l, l.FlashSizeIDAddr+1); off != 1 {
		t.Fatalf("high byte offset = %d, want 1", off)
	}
	if off := FlashSizeIDByteOffset(l, l.FlashSizeIDAddr+2); off != -1 {
		t.Fatalf("unrelated address offset = %d, want -1", off)
	}
}
