//go:build family_b

// Family B mirrors _examples/original_source/boot_stm32F400x: a
// large-flash, mixed-sector device (STM32F40x-class). Erase walks the
// device's declared sector plan; Go only accepts the canonical
// BOOTLOADER_TO address and silently rewrites the jump target, matching
// the original's behavior (spec.md §4.8, §9 open question 3).
package bootcfg

const sectorPlanBase = 0x08000000

var activeLayout = Layout{
	FlashBase:       sectorPlanBase,
	FlashSizeBytes:  1024 * 1024,
	BootloaderFrom:  sectorPlanBase,
	BootloaderTo:    sectorPlanBase + 0x4000, // sector 0 only (16 KiB)
	FlashSizeIDAddr: 0x1FFF7A22,
	SRAMBase:        0x20000000,
	PIDHi:           0x04,
	PIDLo:           0x13,
	Sectors: []SectorSpan{
		{Addr: sectorPlanBase + 0x00000, Size: 16 * 1024},
		{Addr: sectorPlanBase + 0x04000, Size: 16 * 1024},
		{Addr: sectorPlanBase + 0x08000, Size: 16 * 1024},
		{Addr: sectorPlanBase + 0x0C000, Size: 16 * 1024},
		{Addr: sectorPlanBase + 0x10000, Size: 64 * 1024},
		{Addr: sectorPlanBase + 0x20000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0x40000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0x60000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0x80000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0xA0000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0xC0000, Size: 128 * 1024},
		{Addr: sectorPlanBase + 0xE0000, Size: 128 * 1024},
	},
	GoRewriteTarget:       sectorPlanBase + 0x10000,
	GoRequireBootloaderTo: true,
}
