// Package session implements the command engine of spec.md §4.7: the
// per-activation dispatch loop, each command handler's exact wire grammar,
// and the Go handoff. A Session owns everything state a single activation
// accumulates: the flash-sweep tracker, the keystream, and the high-water
// mark that bounds ReadMemory's masking window.
package session

import (
	"context"
	"log/slog"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/config"
	"github.com/openenterprise/an3155boot/flash"
	"github.com/openenterprise/an3155boot/framing"
	"github.com/openenterprise/an3155boot/keystream"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/linearity"
	"github.com/openenterprise/an3155boot/proto"
	"github.com/openenterprise/an3155boot/region"
)

// Session is the command engine's state for one activation.
type Session struct {
	Layout   bootcfg.Layout
	Flash    flash.Facade
	Launcher Launcher
	Log      *slog.Logger

	keystream keystream.Stream
	linear    linearity.Tracker

	// MainEnd is the high-water mark of application flash content,
	// bootloader_main_end in the original: the backward scan finds it at
	// init, a write can only move it forward, and a successful erase
	// resets it to BootloaderTo.
	MainEnd uint32

	block [256]byte
}

// NewSession builds a Session for l, scanning backward from the end of
// flash to find MainEnd the way bootloader_init does.
func NewSession(l bootcfg.Layout, f flash.Facade, launcher Launcher, log *slog.Logger) *Session {
	s := &Session{Layout: l, Flash: f, Launcher: launcher, Log: log}
	s.MainEnd = s.scanMainEnd()
	return s
}

func (s *Session) scanMainEnd() uint32 {
	end := s.Layout.FlashEnd() - 1
	buf := make([]byte, 1)
	for end > s.Layout.BootloaderTo {
		s.Flash.Read(end, buf)
		if buf[0] != 0xFF {
			break
		}
		end--
	}
	return end
}

// HasApplication reports whether the application region holds any
// non-erased byte (bootloader_init's return value): either MainEnd moved
// past BootloaderTo, or the byte at BootloaderTo itself, which the backward
// scan stops at without reading, is not 0xFF.
func (s *Session) HasApplication() bool {
	if s.MainEnd > s.Layout.BootloaderTo {
		return true
	}
	buf := make([]byte, 1)
	s.Flash.Read(s.Layout.BootloaderTo, buf)
	return buf[0] != 0xFF
}

// NeedProtectMessage is the self-test failure notice, sent repeatedly over
// the link while RunSelfTest fails (bootloader_init's "NEED_PROTECT\r").
var NeedProtectMessage = []byte("NEED_PROTECT\r")

// RunSelfTest reports whether the readout-protection gate passes
// (bootloader_init's check_protect branch). It does not loop: the caller
// is expected to keep sending NeedProtectMessage over its Link until this
// returns true, the way main.go's entrypoint does, so the check itself
// stays a plain testable predicate instead of an infinite C loop.
func (s *Session) RunSelfTest() bool {
	ok := s.Flash.ReadoutProtected()
	if !ok {
		s.logf(slog.LevelError, "selftest:need-protect")
	}
	return ok
}

// Activate busy-polls lk for the activation byte up to timeoutIters times,
// ACKing it and returning true on success, ERRORing every other byte seen.
func Activate(lk link.Link, timeoutIters int) bool {
	for i := 0; i < timeoutIters; i++ {
		if !lk.RecvReady() {
			continue
		}
		activated := lk.Recv() == proto.Activate
		if activated {
			lk.Send(proto.ACK)
			return true
		}
		lk.Send(proto.Error)
	}
	return false
}

func (s *Session) logf(level slog.Level, msg string, args ...any) {
	if s.Log == nil {
		return
	}
	s.Log.Log(context.Background(), level, msg, args...)
}

// ServeCommands runs the dispatch loop until config.IdleTimeoutIters()
// poll iterations elapse without a successful command, matching
// bootloader_commands's reset-on-success idle window.
func (s *Session) ServeCommands(lk link.Link) {
	timeout := config.IdleTimeoutIters()
	for i := 0; i < timeout; i++ {
		if !lk.RecvReady() {
			continue
		}

		num := lk.Recv()
		xorByte, got := lk.WaitByte(config.InFrameTimeoutIters())
		ok := got && (num^xorByte) == 0xFF
		handler, known := dispatch[num]
		ok = ok && known

		if ok {
			lk.Send(proto.ACK)
		} else {
			s.logf(slog.LevelWarn, "command:rejected", slog.Int("num", int(num)))
			lk.Send(proto.Error)
			continue
		}

		if handler(s, lk) {
			i = 0
		} else {
			s.logf(slog.LevelWarn, "command:failed", slog.Int("num", int(num)))
			lk.Send(proto.Error)
		}
	}
	s.logf(slog.LevelInfo, "session:idle-timeout")
	lk.Send(proto.Error)
}

type handlerFunc func(*Session, link.Link) bool

var dispatch = map[byte]handlerFunc{
	proto.CmdGet:            (*Session).cmdGetCommands,
	proto.CmdGetVersionProt: (*Session).cmdGetVersion,
	proto.CmdGetID:          (*Session).cmdGetID,
	proto.CmdReadMemory:     (*Session).cmdReadMemory,
	proto.CmdGo:             (*Session).cmdGo,
	proto.CmdWriteMemory:    (*Session).cmdWriteMemory,
	proto.CmdErase:          (*Session).cmdErase,
}

func (s *Session) cmdGetCommands(lk link.Link) bool {
	out := make([]byte, 0, len(proto.AdvertisedCommands)+3)
	out = append(out, proto.AdvertisedCommandCount, proto.Version)
	out = append(out, proto.AdvertisedCommands...)
	out = append(out, proto.ACK)
	lk.SendBlock(out)
	return true
}

func (s *Session) cmdGetVersion(lk link.Link) bool {
	lk.SendBlock([]byte{proto.Version, 0x00, 0x00, proto.ACK})
	return true
}

func (s *Session) cmdGetID(lk link.Link) bool {
	lk.SendBlock([]byte{0x01, s.Layout.PIDHi, s.Layout.PIDLo, proto.ACK})
	return true
}

func (s *Session) readAddress(lk link.Link) (uint32, bool) {
	addr, ok := framing.ReadAddress(lk, s.Layout, config.InFrameTimeoutIters())
	if !ok {
		s.logf(slog.LevelWarn, "address:rejected")
	}
	return addr, ok
}

func (s *Session) checkLinear(addr, count uint32) bool {
	if s.linear.Check(s.Layout, &s.keystream, addr, count) {
		return true
	}
	s.logf(slog.LevelWarn, "linearity:violation", slog.Int("addr", int(addr)), slog.Int("count", int(count)))
	return false
}

func (s *Session) cmdReadMemory(lk link.Link) bool {
	addr, ok := s.readAddress(lk)
	if !ok {
		return false
	}
	count, ok := framing.ReadLength(lk, config.InFrameTimeoutIters())
	if !ok {
		return false
	}
	if !s.checkLinear(addr, uint32(count)) {
		return false
	}

	lk.Send(proto.ACK)

	buf := s.block[:count]
	s.Flash.Read(addr, buf)
	for pos := uint32(0); pos < uint32(count); pos++ {
		if off := region.FlashSizeIDByteOffset(s.Layout, addr+pos); off == 0 {
			buf[pos], _ = region.CorrectedSizeBytes(s.Layout)
		} else if off == 1 {
			_, buf[pos] = region.CorrectedSizeBytes(s.Layout)
		}
	}

	if (addr >> 24) == (s.Layout.FlashBase >> 24) {
		for pos := uint32(0); pos < uint32(count); pos++ {
			if addr+pos > s.MainEnd {
				break
			}
			buf[pos] ^= s.keystream.Next()
		}
	}

	lk.SendBlock(buf)
	return true
}

func (s *Session) cmdWriteMemory(lk link.Link) bool {
	addr, ok := s.readAddress(lk)
	if !ok {
		return false
	}

	lenByte, got := lk.WaitByte(config.InFrameTimeoutIters())
	if !got {
		return false
	}
	count := uint16(lenByte) + 1
	if count == 0 || count%4 != 0 {
		return false
	}
	if !s.checkLinear(addr, uint32(count)) {
		return false
	}

	xor := lenByte
	buf := s.block[:count]
	for i := range buf {
		b, got := lk.WaitByte(config.InFrameTimeoutIters())
		if !got {
			return false
		}
		xor ^= b
		buf[i] = b
	}

	checksum, got := lk.WaitByte(config.InFrameTimeoutIters())
	if !got || checksum != xor {
		return false
	}

	s.keystream.XOR(buf)

	s.Flash.Unlock()
	s.Flash.ClearErrors()
	status := flash.Complete
	for i := 0; i < len(buf); i += 4 {
		word := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
		status = s.Flash.ProgramWord(addr+uint32(i), word)
		if status != flash.Complete {
			break
		}
	}
	s.Flash.Lock()

	end := addr + uint32(count)
	if end > s.MainEnd {
		s.MainEnd = end
	}

	s.logf(slog.LevelInfo, "flash:write", slog.Int("addr", int(addr)), slog.Int("count", int(count)), slog.String("status", status.String()))
	lk.Send(statusAck(status))
	return true
}

// cmdErase reads the family-specific erase-all frame: Family A (uniform
// page erase) sends the n/~n length pair and requires it to decode to 256,
// bootloader.c's cmd_erase under #ifdef STM32F1xx; Family B (sector erase)
// instead sends three raw bytes 0xFF 0xFF 0x00, the #ifdef STM32F4XX branch
// of the same function.
func (s *Session) cmdErase(lk link.Link) bool {
	if s.Layout.PageSize != 0 {
		count, ok := framing.ReadLength(lk, config.InFrameTimeoutIters())
		if !ok || count != 0x100 {
			return false
		}
	} else {
		a, ok := lk.WaitByte(config.InFrameTimeoutIters())
		if !ok {
			return false
		}
		b, ok := lk.WaitByte(config.InFrameTimeoutIters())
		if !ok {
			return false
		}
		c, ok := lk.WaitByte(config.InFrameTimeoutIters())
		if !ok {
			return false
		}
		if a != 0xFF || b != 0xFF || c != 0 {
			return false
		}
	}

	s.Flash.Unlock()
	s.Flash.ClearErrors()
	status := s.Flash.EraseApplication(s.Layout.ApplicationErasePlan())
	s.Flash.Lock()

	if status == flash.Complete {
		s.MainEnd = s.Layout.BootloaderTo
	}

	s.logf(slog.LevelInfo, "flash:erase", slog.String("status", status.String()))
	lk.Send(statusAck(status))
	return true
}

func statusAck(st flash.Status) byte {
	if st == flash.Complete {
		return proto.ACK
	}
	return proto.Error
}

func (s *Session) cmdGo(lk link.Link) bool {
	addr, ok := s.readAddress(lk)
	if !ok {
		return false
	}

	if s.Layout.GoRewriteTarget != 0 {
		if s.Layout.GoRequireBootloaderTo && addr != s.Layout.BootloaderTo {
			return false
		}
		addr = s.Layout.GoRewriteTarget
	}

	var vectors [8]byte
	s.Flash.Read(addr, vectors[:])
	sp := uint32(vectors[0]) | uint32(vectors[1])<<8 | uint32(vectors[2])<<16 | uint32(vectors[3])<<24
	entry := uint32(vectors[4]) | uint32(vectors[5])<<8 | uint32(vectors[6])<<16 | uint32(vectors[7])<<24

	if (sp >> 24) != (s.Layout.SRAMBase >> 24) {
		s.logf(slog.LevelError, "go:bad-vectors", slog.Int("sp", int(sp)), slog.Int("entry", int(entry)))
		return false
	}
	if (entry >> 24) != (s.Layout.FlashBase >> 24) {
		s.logf(slog.LevelError, "go:bad-vectors", slog.Int("sp", int(sp)), slog.Int("entry", int(entry)))
		return false
	}

	s.logf(slog.LevelInfo, "go:handoff", slog.Int("sp", int(sp)), slog.Int("entry", int(entry)))
	lk.Send(proto.ACK)
	s.Launcher.Launch(sp, entry)
	return true
}
