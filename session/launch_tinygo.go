//go:build tinygo

package session

/*
static void transfer_control(unsigned int sp, unsigned int entry) {
    __asm__ volatile ("msr msp, %0" : : "r" (sp));
    ((void (*)(void))entry)();
}
*/
import "C"

// HardwareLauncher calls into the real reset-vector pair the way
// bootloader.c's bootloader_go does: __set_MSP on the stack-pointer word,
// then an indirect call through the entry-point word.
type HardwareLauncher struct{}

func (HardwareLauncher) Launch(stackPointer, entryPoint uint32) {
	C.transfer_control(C.uint(stackPointer), C.uint(entryPoint))
}
