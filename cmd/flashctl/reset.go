package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// BootPins toggles BOOT0/RESET over an FT232H's MPSSE GPIO so flashctl can
// force the target into its UART bootloader without a manual jumper,
// mirroring gentam-gice's FPGA reset line.
type BootPins struct {
	FTDI  *ftdi.FT232H
	boot0 gpio.PinIO
	reset gpio.PinIO
}

var hostInitialized atomic.Bool

// OpenBootPins finds an FT232H and wires ADBUS4 to BOOT0 and ADBUS7 to the
// target's reset line.
func OpenBootPins() (*BootPins, error) {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
	}

	b := &BootPins{}
	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if ft, ok := dev.(*ftdi.FT232H); ok {
			b.FTDI = ft
			break
		}
	}
	if b.FTDI == nil {
		return nil, errors.New("flashctl: no FT232H adapter found")
	}

	b.boot0 = b.FTDI.D4
	b.reset = b.FTDI.D7
	return b, nil
}

// EnterBootloader asserts BOOT0, pulses reset, and releases BOOT0 once the
// target has latched it off the reset line, putting the target into its
// AN3155 UART bootloader.
func (b *BootPins) EnterBootloader() error {
	if err := b.boot0.Out(gpio.High); err != nil {
		return err
	}
	if err := b.reset.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	if err := b.reset.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return b.boot0.Out(gpio.Low)
}

// Release pulses reset with BOOT0 low, handing control back to the
// application image.
func (b *BootPins) Release() error {
	if err := b.boot0.Out(gpio.Low); err != nil {
		return err
	}
	if err := b.reset.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return b.reset.Out(gpio.High)
}
