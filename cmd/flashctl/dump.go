package main

import "zappem.net/pub/debug/xxd"

// dumpVerbose prints d as a hex/ASCII dump starting at addr, used by the
// read command's --verbose flag instead of writing straight to a file.
func dumpVerbose(addr uint32, d []byte) {
	xxd.Print(int(addr), d)
}
