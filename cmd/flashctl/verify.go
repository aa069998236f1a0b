package main

import (
	"fmt"

	"zappem.net/pub/debug/xcrc32"
)

// verifyImage compares the CRC32 of the read-back copy of a just-written
// region against the source image's, the host-side counterpart to the checksum
// validation the device itself performs one byte at a time on the wire.
func verifyImage(written, original []byte) error {
	_, wantCRC := xcrc32.NewCRC32(original)
	_, gotCRC := xcrc32.NewCRC32(written)
	if gotCRC != wantCRC {
		return fmt.Errorf("flashctl: verify failed: got=0x%08x want=0x%08x", gotCRC, wantCRC)
	}
	return nil
}
