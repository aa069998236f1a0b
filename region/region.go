// Package region implements spec.md §4.5's check_addr policy: which
// addresses the command engine is allowed to read or write, and the
// flash-size-identifier substitution that makes the device report its
// application-usable size rather than its physical size.
package region

import (
	"golang.org/x/exp/constraints"

	"github.com/openenterprise/an3155boot/bootcfg"
)

// clampRange reports whether lo <= v < hi. CheckAddr uses it for the
// bootloader-range exclusion; the flash and id-window inclusion checks
// compare the address's top bits instead.
func clampRange[T constraints.Unsigned](v, lo, hi T) bool {
	return v >= lo && v < hi
}

// CheckAddr reports whether addr may be read or written: it must not fall
// in the reserved bootloader range, and it must fall either in the flash
// range or in the 64 KiB window containing the chip's flash-size
// identifier half-word (spec.md §4.5).
func CheckAddr(l bootcfg.Layout, addr uint32) bool {
	if clampRange(addr, l.BootloaderFrom, l.BootloaderTo) {
		return false
	}
	if (addr >> 24) == (l.FlashBase >> 24) {
		return true
	}
	if (addr >> 16) == (l.FlashSizeIDAddr >> 16) {
		return true
	}
	return false
}

// FlashSizeIDByteOffset returns 0 if addr is the low byte of the flash-size
// identifier, 1 if it's the high byte, or -1 if addr isn't part of it.
func FlashSizeIDByteOffset(l bootcfg.Layout, addr uint32) int {
	switch addr {
	case l.FlashSizeIDAddr:
		return 0
	case l.FlashSizeIDAddr + 1:
		return 1
	default:
		return -1
	}
}

// CorrectedSizeBytes returns the low/high bytes substituted for the
// physical flash-size identifier so host tools see the application's
// usable size: (FLASH_SIZE_BYTES - BOOTLOADER_SIZE) / 1024 (spec.md §4.5).
func CorrectedSizeBytes(l bootcfg.Layout) (lo, hi byte) {
	v := l.UsableSizeKiB()
	return byte(v), byte(v >> 8)
}
