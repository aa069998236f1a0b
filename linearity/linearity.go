// Package linearity implements spec.md §4.6's check_lineral: the rule that
// binds a session's flash reads/writes to a single contiguous sweep
// starting at BOOTLOADER_TO, keeping the keystream in lock-step with the
// host.
package linearity

import (
	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/keystream"
)

// Tracker holds the "next expected address" state a Session owns for the
// lifetime of one activation (spec.md §3's next_expected_addr).
type Tracker struct {
	NextExpected uint32
}

// Check validates addr/count against the current sweep state. Addresses
// outside the flash range bypass the tracker entirely (region validation
// still applies upstream). Starting exactly at BootloaderTo begins a new
// sweep and reseeds ks. NextExpected only advances on a successful check
// (spec.md §7: "framing errors ... do not corrupt next_expected_addr; it
// is only updated on successful linearity check").
func (t *Tracker) Check(l bootcfg.Layout, ks *keystream.Stream, addr, count uint32) bool {
	if (addr >> 24) != (l.FlashBase >> 24) {
		return true
	}

	start := addr == l.BootloaderTo
	if start {
		ks.Reseed()
	}

	ok := start || addr == t.NextExpected
	if ok {
		t.NextExpected = addr + count
	}
	return ok
}
