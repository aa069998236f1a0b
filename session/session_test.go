package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/flash"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/proto"
	"github.com/openenterprise/an3155boot/telemetry"
)

func newTestSession(t *testing.T) (*Session, *link.Pipe, *flash.Sim, *RecordingLauncher) {
	t.Helper()
	return newTestSessionWithLayout(t, bootcfg.Active)
}

func newTestSessionWithLayout(t *testing.T, l bootcfg.Layout) (*Session, *link.Pipe, *flash.Sim, *RecordingLauncher) {
	t.Helper()
	t.Cleanup(telemetry.ResetState)
	f := flash.NewSim(l)
	launcher := &RecordingLauncher{}
	log := slog.New(telemetry.NewSlogHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSession(l, f, launcher, log)
	host, dev := link.NewPipePair(512)
	go s.ServeCommands(dev)
	return s, host, f, launcher
}

// sectorLayout is a Family-B-shaped layout (Sectors set, PageSize zero) for
// tests that exercise the sector-erase wire grammar independent of which
// family build tag is active.
var sectorLayout = bootcfg.Layout{
	FlashBase:       0x08000000,
	FlashSizeBytes:  1024 * 1024,
	BootloaderFrom:  0x08000000,
	BootloaderTo:    0x08004000,
	FlashSizeIDAddr: 0x1FFF7A22,
	SRAMBase:        0x20000000,
	PIDHi:           0x04,
	PIDLo:           0x13,
	Sectors: []bootcfg.SectorSpan{
		{Addr: 0x08004000, Size: 16 * 1024},
		{Addr: 0x08008000, Size: 16 * 1024},
	},
}

func expectBytes(t *testing.T, host *link.Pipe, want ...byte) {
	t.Helper()
	for i, w := range want {
		got, ok := host.WaitByte(1_000_000)
		if !ok {
			t.Fatalf("byte %d: timed out waiting for %#x", i, w)
		}
		if got != w {
			t.Fatalf("byte %d = %#x, want %#x", i, got, w)
		}
	}
}

func sendCommand(host *link.Pipe, cmd byte) {
	host.Send(cmd)
	host.Send(cmd ^ 0xFF)
}

func TestGetVersionRoundTrip(t *testing.T) {
	_, host, _, _ := newTestSession(t)
	sendCommand(host, proto.CmdGetVersionProt)
	expectBytes(t, host, proto.ACK, proto.Version, 0x00, 0x00, proto.ACK)
}

func TestGetIDReportsConfiguredPID(t *testing.T) {
	l := bootcfg.Active
	_, host, _, _ := newTestSession(t)
	sendCommand(host, proto.CmdGetID)
	expectBytes(t, host, proto.ACK, 0x01, l.PIDHi, l.PIDLo, proto.ACK)
}

func TestBadComplementIsRejected(t *testing.T) {
	_, host, _, _ := newTestSession(t)
	host.Send(proto.CmdGetVersionProt)
	host.Send(0x00) // wrong complement
	expectBytes(t, host, proto.Error)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	l := bootcfg.Active
	_, host, _, _ := newTestSession(t)

	// Wire addresses share FlashBase's top byte and get rebased by
	// +BootloaderSize (spec.md §4.4), so BootloaderFrom on the wire lands
	// on BootloaderTo physically — the start of a valid sweep.
	addr := l.BootloaderFrom
	data := []byte{0x01, 0x02, 0x03, 0x04}

	sendCommand(host, proto.CmdWriteMemory)
	expectBytes(t, host, proto.ACK)

	addrBytes := []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	host.SendBlock(addrBytes)
	host.Send(addrBytes[0] ^ addrBytes[1] ^ addrBytes[2] ^ addrBytes[3])
	expectBytes(t, host, proto.ACK)

	lenByte := byte(len(data) - 1)
	host.Send(lenByte)
	xor := lenByte
	for _, b := range data {
		host.Send(b)
		xor ^= b
	}
	host.Send(xor)
	expectBytes(t, host, proto.ACK)

	found := false
	for _, e := range telemetry.GetLogQueue() {
		if string(e.Body[:e.BodyLen]) != "" && e.Severity == telemetry.SeverityInfo {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the write to queue an info-level telemetry record")
	}

	sendCommand(host, proto.CmdReadMemory)
	expectBytes(t, host, proto.ACK)
	host.SendBlock(addrBytes)
	host.Send(addrBytes[0] ^ addrBytes[1] ^ addrBytes[2] ^ addrBytes[3])
	expectBytes(t, host, proto.ACK)
	host.Send(lenByte)
	host.Send(^lenByte)
	expectBytes(t, host, proto.ACK)
	expectBytes(t, host, data...)
}

func TestRegionViolationIsRejected(t *testing.T) {
	_, host, _, _ := newTestSession(t)

	sendCommand(host, proto.CmdWriteMemory)
	expectBytes(t, host, proto.ACK)

	addr := uint32(0xE0000000)
	addrBytes := []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	host.SendBlock(addrBytes)
	host.Send(addrBytes[0] ^ addrBytes[1] ^ addrBytes[2] ^ addrBytes[3])

	expectBytes(t, host, proto.Error)
}

func TestGoRejectsBadVectors(t *testing.T) {
	l := bootcfg.Active
	_, host, _, launcher := newTestSession(t)

	sendCommand(host, proto.CmdGo)
	expectBytes(t, host, proto.ACK)

	addr := l.BootloaderFrom
	addrBytes := []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	host.SendBlock(addrBytes)
	host.Send(addrBytes[0] ^ addrBytes[1] ^ addrBytes[2] ^ addrBytes[3])
	expectBytes(t, host, proto.ACK) // address frame accepted

	expectBytes(t, host, proto.Error)
	if launcher.Launched {
		t.Fatal("launcher must not be invoked on bad reset vectors")
	}
}

func TestEraseFamilyAAcceptsLengthFrame(t *testing.T) {
	l := bootcfg.Active
	if l.PageSize == 0 {
		t.Skip("active layout is not a uniform-page family")
	}
	_, host, _, _ := newTestSession(t)

	sendCommand(host, proto.CmdErase)
	expectBytes(t, host, proto.ACK)

	host.Send(0xFF)
	host.Send(0x00)
	expectBytes(t, host, proto.ACK)
}

func TestEraseFamilyBAcceptsSectorFrame(t *testing.T) {
	_, host, _, _ := newTestSessionWithLayout(t, sectorLayout)

	sendCommand(host, proto.CmdErase)
	expectBytes(t, host, proto.ACK)

	host.Send(0xFF)
	host.Send(0xFF)
	host.Send(0x00)
	expectBytes(t, host, proto.ACK)
}

func TestRunSelfTestReflectsReadoutProtection(t *testing.T) {
	l := bootcfg.Active
	f := flash.NewSim(l)
	log := slog.New(telemetry.NewSlogHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSession(l, f, &RecordingLauncher{}, log)
	t.Cleanup(telemetry.ResetState)

	flash.SimReadoutProtected = false
	defer func() { flash.SimReadoutProtected = true }()
	if s.RunSelfTest() {
		t.Fatal("expected self-test to fail when readout protection is disabled")
	}

	flash.SimReadoutProtected = true
	if !s.RunSelfTest() {
		t.Fatal("expected self-test to pass when readout protection is enabled")
	}
}

func TestEraseFamilyBRejectsMalformedSectorFrame(t *testing.T) {
	_, host, _, _ := newTestSessionWithLayout(t, sectorLayout)

	sendCommand(host, proto.CmdErase)
	expectBytes(t, host, proto.ACK)

	host.Send(0xFF)
	host.Send(0xFF)
	host.Send(0x01) // third byte must be 0x00
	expectBytes(t, host, proto.Error)
}
