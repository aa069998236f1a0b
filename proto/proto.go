// Package proto holds the wire-level constants of spec.md §6: control
// bytes, command codes, and the advertised version/capability-count
// values. Nothing here has behavior; it's the shared vocabulary that
// framing, session, and cmd/flashctl are built from.
package proto

// Control bytes.
const (
	Activate byte = 0x7F
	ACK      byte = 0x79
	Error    byte = 0x1F
)

// Command codes, in the exact order _examples/original_source's
// bootloader.c declares and advertises them via GetCommands.
const (
	CmdGet              byte = 0x00
	CmdGetVersionProt   byte = 0x01
	CmdGetID            byte = 0x02
	CmdReadMemory       byte = 0x11
	CmdGo               byte = 0x21
	CmdWriteMemory      byte = 0x31
	CmdErase            byte = 0x43
	CmdEraseExt         byte = 0x44
	CmdWriteProtect     byte = 0x63
	CmdWriteUnprotect   byte = 0x73
	CmdReadoutProtect   byte = 0x82
	CmdReadoutUnprotect byte = 0x92
)

// Version is the bootloader protocol version GetVersion/GetCommands report.
const Version byte = 0x22

// AdvertisedCommandCount is the N byte GetCommands replies with: the number
// of command codes enumerated after it, not counting Version or ACK.
const AdvertisedCommandCount byte = 0x0B

// AdvertisedCommands is the capability list GetCommands sends after N and
// Version, in the original's declared order (spec.md §4.7's GetCommands row).
var AdvertisedCommands = []byte{
	CmdGet,
	CmdGetVersionProt,
	CmdGetID,
	CmdReadMemory,
	CmdGo,
	CmdWriteMemory,
	CmdErase,
	CmdWriteProtect,
	CmdWriteUnprotect,
	CmdReadoutProtect,
	CmdReadoutUnprotect,
}
