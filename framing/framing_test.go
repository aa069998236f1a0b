package framing

import (
	"testing"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/proto"
)

func TestReadAddressRebasesAndAcks(t *testing.T) {
	l := bootcfg.Active
	host, dev := link.NewPipePair(8)

	top := l.FlashBase >> 24
	addr := []byte{byte(top), 0x00, 0x00, 0x10}
	host.SendBlock(addr)
	host.Send(addr[0] ^ addr[1] ^ addr[2] ^ addr[3])

	got, ok := ReadAddress(dev, l, 1000)
	if !ok {
		t.Fatal("expected success")
	}
	want := l.FlashBase + l.BootloaderSize() + 0x10
	if got != want {
		t.Fatalf("addr = %#x, want %#x", got, want)
	}
	if ack, got := host.WaitByte(1000); !got || ack != proto.ACK {
		t.Fatal("expected ACK on success")
	}
}

func TestReadAddressRejectsBadChecksum(t *testing.T) {
	l := bootcfg.Active
	host, dev := link.NewPipePair(8)

	addr := []byte{byte(l.FlashBase >> 24), 0x00, 0x00, 0x10}
	host.SendBlock(addr)
	host.Send(0x00)

	if _, ok := ReadAddress(dev, l, 1000); ok {
		t.Fatal("bad checksum must be rejected")
	}
}

func TestReadAddressRejectsBootloaderRange(t *testing.T) {
	// Wire addresses sharing FlashBase's top byte are rebased by
	// +BootloaderSize, so with the bootloader at FlashBase no wire address
	// lands inside it. Move the reserved range up by one bootloader size so
	// that the wire address FlashBase rebases onto BootloaderFrom.
	l := bootcfg.Active
	size := l.BootloaderSize()
	l.BootloaderFrom += size
	l.BootloaderTo += size
	host, dev := link.NewPipePair(8)

	addr := []byte{
		byte(l.FlashBase >> 24), byte(l.FlashBase >> 16),
		byte(l.FlashBase >> 8), byte(l.FlashBase),
	}
	host.SendBlock(addr)
	host.Send(addr[0] ^ addr[1] ^ addr[2] ^ addr[3])

	if _, ok := ReadAddress(dev, l, 1000); ok {
		t.Fatal("address inside the bootloader range must be rejected")
	}
}

func TestReadAddressTimesOutWithoutBytes(t *testing.T) {
	l := bootcfg.Active
	_, dev := link.NewPipePair(8)

	if _, ok := ReadAddress(dev, l, 10); ok {
		t.Fatal("expected timeout when no bytes arrive")
	}
}

func TestReadLengthDecodesNPlusOne(t *testing.T) {
	host, dev := link.NewPipePair(8)
	host.Send(0x00)
	host.Send(0xFF)

	n, ok := ReadLength(dev, 1000)
	if !ok || n != 1 {
		t.Fatalf("n = %d, ok = %v, want 1, true", n, ok)
	}
}

func TestReadLengthMaxIsTwoFiftySix(t *testing.T) {
	host, dev := link.NewPipePair(8)
	host.Send(0xFF)
	host.Send(0x00)

	n, ok := ReadLength(dev, 1000)
	if !ok || n != 256 {
		t.Fatalf("n = %d, ok = %v, want 256, true", n, ok)
	}
}

func TestReadLengthRejectsBadComplement(t *testing.T) {
	host, dev := link.NewPipePair(8)
	host.Send(0x10)
	host.Send(0x10)

	if _, ok := ReadLength(dev, 1000); ok {
		t.Fatal("mismatched complement must be rejected")
	}
}
