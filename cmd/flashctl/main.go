// Command flashctl is the host-side counterpart to the on-chip bootloader:
// it drives the AN3155-style UART protocol to query, erase, write, and read
// a target's flash, and to hand control back to the application.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/config"
	"github.com/openenterprise/an3155boot/link"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial device connected to the target's UART")
	baud := flag.Uint("baud", uint(config.UARTBaud()), "baud rate")
	resetFTDI := flag.Bool("reset", false, "pulse BOOT0/RESET over an FTDI MPSSE adapter before activating")
	cmd := flag.String("cmd", "", "id | erase | write | read | go | console")
	file := flag.String("file", "", "firmware image for write, or output path for read")
	addr := flag.Uint("addr", 0, "application-relative offset in bytes")
	length := flag.Uint("len", 256, "byte count for read")
	verbose := flag.Bool("verbose", false, "hex-dump read output instead of writing a file")
	flag.Parse()

	if *cmd == "" {
		printUsage()
		os.Exit(1)
	}

	if *resetFTDI {
		pins, err := OpenBootPins()
		if err != nil {
			fmt.Fprintf(os.Stderr, "flashctl: %v\n", err)
			os.Exit(1)
		}
		if err := pins.EnterBootloader(); err != nil {
			fmt.Fprintf(os.Stderr, "flashctl: reset failed: %v\n", err)
			os.Exit(1)
		}
	}

	serial, err := link.OpenHostSerial(*port, uint32(*baud))
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashctl: open %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer serial.Close()

	if *cmd == "console" {
		fh, ok := any(serial).(fdHolder)
		if !ok {
			fmt.Fprintln(os.Stderr, "flashctl: console mode needs a real fd, not supported on this platform")
			os.Exit(1)
		}
		if err := runConsole(fh); err != nil {
			fmt.Fprintf(os.Stderr, "flashctl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	c := &Client{Link: serial, Layout: bootcfg.Active, TimeoutIters: 5_000_000}
	if err := c.Activate(20); err != nil {
		fmt.Fprintf(os.Stderr, "flashctl: %v\n", err)
		os.Exit(1)
	}

	if err := run(c, *cmd, *file, uint32(*addr), int(*length), *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "flashctl: %v\n", err)
		os.Exit(1)
	}
}

func run(c *Client, cmd, file string, addr uint32, length int, verbose bool) error {
	switch cmd {
	case "id":
		pid, err := c.GetID()
		if err != nil {
			return err
		}
		fmt.Printf("product id: 0x%04x\n", pid)
		return nil

	case "erase":
		fmt.Println("erasing application region...")
		start := time.Now()
		if err := c.Erase(); err != nil {
			return err
		}
		fmt.Printf("erased in %s\n", time.Since(start))
		return nil

	case "write":
		if file == "" {
			return fmt.Errorf("write requires -file")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if pad := len(data) % 4; pad != 0 {
			data = append(data, make([]byte, 4-pad)...)
		}
		fmt.Printf("writing %d bytes from %s at offset 0x%06x...\n", len(data), file, addr)
		if err := c.WriteMemory(addr, data); err != nil {
			return err
		}

		readBack, err := c.ReadMemory(addr, len(data))
		if err != nil {
			return fmt.Errorf("post-write verify: %w", err)
		}
		if err := verifyImage(readBack, data); err != nil {
			return err
		}
		fmt.Println("write verified")
		return nil

	case "read":
		data, err := c.ReadMemory(addr, length)
		if err != nil {
			return err
		}
		if verbose || file == "" {
			dumpVerbose(addr, data)
			return nil
		}
		return os.WriteFile(file, data, 0o644)

	case "go":
		return c.Go(addr)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Println("flashctl: host-side driver for the AN3155-style UART bootloader")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flashctl -port <dev> -cmd id")
	fmt.Println("  flashctl -port <dev> -cmd erase")
	fmt.Println("  flashctl -port <dev> -cmd write -file <image.bin> [-addr N]")
	fmt.Println("  flashctl -port <dev> -cmd read -addr N -len N [-file out.bin | -verbose]")
	fmt.Println("  flashctl -port <dev> -cmd go [-addr N]")
	fmt.Println()
	fmt.Println("Add -reset to pulse BOOT0/RESET over an FTDI MPSSE adapter first.")
}
