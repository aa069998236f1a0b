// Package bootcfg holds the compile-time flash layout (spec.md §3's
// BootCfg): the reserved bootloader range, the application region, the
// chip's flash-size identifier address, the USB/AN3155 product ID the
// GetID command reports, and the erase granularity plan for the target
// family. Exactly one family is compiled in, selected by the family_b
// build tag (family_a.go / family_b.go).
package bootcfg

// SectorSpan is one erase unit: a page (uniform-page families) or a sector
// (mixed-sector families), expressed as an absolute flash address and size.
type SectorSpan struct {
	Addr uint32
	Size uint32
}

// Layout is the full BootCfg for one target family.
type Layout struct {
	FlashBase       uint32
	FlashSizeBytes  uint32
	BootloaderFrom  uint32
	BootloaderTo    uint32
	FlashSizeIDAddr uint32
	SRAMBase        uint32
	PIDHi, PIDLo    uint8

	// Exactly one of PageSize or Sectors describes the erase granularity.
	PageSize uint32       // uniform-page family; 0 if Sectors is used instead
	Sectors  []SectorSpan // mixed-sector family; nil if PageSize is used instead

	// GoRewriteTarget, if non-zero, is the address family B's Go handler
	// substitutes for the caller's address (spec.md §4.8 / §9 open question 3).
	// GoRequireBootloaderTo additionally restricts family B's Go to only
	// accept addr == BootloaderTo before applying the rewrite.
	GoRewriteTarget       uint32
	GoRequireBootloaderTo bool
}

// BootloaderSize is BOOTLOADER_TO - BOOTLOADER_FROM.
func (l Layout) BootloaderSize() uint32 { return l.BootloaderTo - l.BootloaderFrom }

// FlashEnd is FLASH_BASE + FLASH_SIZE_BYTES, the exclusive end of physical flash.
func (l Layout) FlashEnd() uint32 { return l.FlashBase + l.FlashSizeBytes }

// UsableSizeKiB is the value substituted for the physical flash-size
// identifier (spec.md §4.5): (FLASH_SIZE_BYTES - BOOTLOADER_SIZE) / 1024.
func (l Layout) UsableSizeKiB() uint16 {
	return uint16((l.FlashSizeBytes - l.BootloaderSize()) / 1024)
}

// ApplicationErasePlan returns every page/sector wholly contained in
// [BootloaderTo, FlashEnd), in ascending address order, as required by
// spec.md §4.3's erase_application().
func (l Layout) ApplicationErasePlan() []SectorSpan {
	end := l.FlashEnd()
	if l.PageSize != 0 {
		var plan []SectorSpan
		for addr := l.BootloaderTo; addr+l.PageSize <= end; addr += l.PageSize {
			plan = append(plan, SectorSpan{Addr: addr, Size: l.PageSize})
		}
		return plan
	}
	var plan []SectorSpan
	for _, s := range l.Sectors {
		if s.Addr >= l.BootloaderTo && s.Addr+s.Size <= end {
			plan = append(plan, s)
		}
	}
	return plan
}

// Active is the compiled-in layout for this build (set in family_a.go or
// family_b.go, selected by the family_b build tag).
var Active = activeLayout
