//go:build !family_b

// Family A mirrors _examples/original_source/boot_stm32F100x: a
// small-flash, uniform-page device (STM32F100x8-class "medium density
// value line"). Erase is page-by-page; Go accepts any validated address.
package bootcfg

var activeLayout = Layout{
	FlashBase:       0x08000000,
	FlashSizeBytes:  128 * 1024,
	BootloaderFrom:  0x08000000,
	BootloaderTo:    0x08008000, // 32 KiB bootloader region
	FlashSizeIDAddr: 0x1FFFF7E0,
	SRAMBase:        0x20000000,
	PIDHi:           0x04,
	PIDLo:           0x20,
	PageSize:        1024,
}
