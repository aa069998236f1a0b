// Package framing implements the two small wire grammars that recur across
// several commands: a 4-byte big-endian address plus XOR checksum
// (cmd_get_addr in the original), and a 1-byte length-minus-one plus its
// complement (cmd_get_count). ReadAddress ACKs on success; ReadLength
// sends nothing, leaving the reply to the calling handler.
package framing

import (
	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/proto"
	"github.com/openenterprise/an3155boot/region"
)

// ReadAddress reads a 4-byte big-endian address followed by its XOR
// checksum byte, rebases it into the application's flash window when its
// top byte matches FlashBase's, checks both ends of the span
// [addr, addr+0xFF] with region.CheckAddr, and ACKs on success. ok is false on a timeout, a
// bad checksum, or a region violation; the caller is responsible for
// sending proto.Error in that case.
func ReadAddress(lk link.Link, l bootcfg.Layout, timeoutIters int) (addr uint32, ok bool) {
	var b [5]byte
	for i := range b {
		v, got := lk.WaitByte(timeoutIters)
		if !got {
			return 0, false
		}
		b[i] = v
	}

	if b[0]^b[1]^b[2]^b[3]^b[4] != 0 {
		return 0, false
	}

	addr = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if (addr >> 24) == (l.FlashBase >> 24) {
		addr += l.BootloaderSize()
	}

	if !region.CheckAddr(l, addr) || !region.CheckAddr(l, addr+0xFF) {
		return 0, false
	}

	lk.Send(proto.ACK)
	return addr, true
}

// ReadLength reads the n/~n length pair cmd_get_count uses and returns the
// decoded byte count (n+1, i.e. in [1, 256]). ok is false if the complement
// doesn't match or the read times out.
func ReadLength(lk link.Link, timeoutIters int) (count uint16, ok bool) {
	n, got := lk.WaitByte(timeoutIters)
	if !got {
		return 0, false
	}
	m, got := lk.WaitByte(timeoutIters)
	if !got {
		return 0, false
	}
	if n^m != 0xFF {
		return 0, false
	}
	return uint16(n) + 1, true
}
