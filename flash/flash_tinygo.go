//go:build tinygo

package flash

/*
#include <stdint.h>

// FPEC register block (RM0008/RM0090 "Flash memory interface registers").
#define FLASH_R_BASE 0x40022000
#define FLASH_ACR    (*(volatile uint32_t*)(FLASH_R_BASE + 0x00))
#define FLASH_KEYR   (*(volatile uint32_t*)(FLASH_R_BASE + 0x04))
#define FLASH_SR     (*(volatile uint32_t*)(FLASH_R_BASE + 0x0C))
#define FLASH_CR     (*(volatile uint32_t*)(FLASH_R_BASE + 0x10))
#define FLASH_AR     (*(volatile uint32_t*)(FLASH_R_BASE + 0x14))

#define FLASH_KEY1 0x45670123
#define FLASH_KEY2 0xCDEF89AB

#define CR_PG    (1u << 0)
#define CR_PER   (1u << 1)
#define CR_STRT  (1u << 6)
#define CR_LOCK  (1u << 7)

#define SR_BSY     (1u << 0)
#define SR_PGERR   (1u << 2)
#define SR_WRPRTERR (1u << 4)
#define SR_EOP     (1u << 5)

static void fpec_unlock(void) {
    FLASH_KEYR = FLASH_KEY1;
    FLASH_KEYR = FLASH_KEY2;
}

static void fpec_lock(void) {
    FLASH_CR |= CR_LOCK;
}

static void fpec_clear_errors(void) {
    FLASH_SR = SR_PGERR | SR_WRPRTERR | SR_EOP;
}

static uint32_t fpec_wait_busy(void) {
    uint32_t spins = 0;
    while (FLASH_SR & SR_BSY) {
        if (++spins > 1000000) return SR_BSY;
    }
    return 0;
}

static uint32_t fpec_program_word(uint32_t addr, uint32_t value) {
    if (addr & 0x3) return SR_PGERR;
    if (fpec_wait_busy()) return SR_BSY;

    FLASH_CR |= CR_PG;
    *(volatile uint16_t*)addr = (uint16_t)(value & 0xFFFF);
    if (fpec_wait_busy()) { FLASH_CR &= ~CR_PG; return SR_BSY; }
    *(volatile uint16_t*)(addr + 2) = (uint16_t)(value >> 16);
    uint32_t busy = fpec_wait_busy();
    FLASH_CR &= ~CR_PG;

    uint32_t sr = FLASH_SR;
    if (busy) return SR_BSY;
    return sr & (SR_PGERR | SR_WRPRTERR);
}

static uint32_t fpec_erase_page(uint32_t addr) {
    if (fpec_wait_busy()) return SR_BSY;
    FLASH_CR |= CR_PER;
    FLASH_AR = addr;
    FLASH_CR |= CR_STRT;
    uint32_t busy = fpec_wait_busy();
    FLASH_CR &= ~CR_PER;
    if (busy) return SR_BSY;
    return FLASH_SR & (SR_PGERR | SR_WRPRTERR);
}
*/
import "C"

import (
	"unsafe"

	"github.com/openenterprise/an3155boot/bootcfg"
)

// FPEC drives the real STM32 FPEC controller: a single Facade instance
// owned by the active Session for the lifetime of one activation, the way
// ota.go's ROM-call wrappers are driven directly by OTA's transfer loop.
type FPEC struct{}

// ReadoutProtected reports the option byte readout-protection state
// (FLASH_GetReadOutProtectionStatus in the original).
func (FPEC) ReadoutProtected() bool {
	const optByteRDP = 0x1FFFF800
	rdp := *(*uint16)(unsafe.Pointer(uintptr(optByteRDP)))
	return byte(rdp) != 0xA5
}

func (FPEC) Unlock() error {
	C.fpec_unlock()
	return nil
}

func (FPEC) Lock() error {
	C.fpec_lock()
	return nil
}

func (FPEC) ClearErrors() {
	C.fpec_clear_errors()
}

func toStatus(sr C.uint32_t) Status {
	switch {
	case sr&C.SR_BSY != 0:
		return Busy
	case sr&C.SR_WRPRTERR != 0:
		return WriteProtected
	case sr&C.SR_PGERR != 0:
		return ProgramError
	default:
		return Complete
	}
}

func (FPEC) ProgramWord(addr, value uint32) Status {
	if addr&0x3 != 0 {
		return AlignError
	}
	return toStatus(C.fpec_program_word(C.uint32_t(addr), C.uint32_t(value)))
}

func (FPEC) EraseApplication(plan []bootcfg.SectorSpan) Status {
	for _, s := range plan {
		if st := toStatus(C.fpec_erase_page(C.uint32_t(s.Addr))); st != Complete {
			return st
		}
	}
	return Complete
}

func (FPEC) Read(addr uint32, dst []byte) {
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(dst))
	copy(dst, src)
}
