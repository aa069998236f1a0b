// Package keystream implements the deterministic, byte-addressable PRNG
// used to mask application-region traffic crossing the UART boundary
// (spec.md §4.2). The generator itself is an implementation choice, but
// once chosen its sequence is part of the wire contract shared with the
// host tool and must never change.
package keystream

// seed is the fixed initial xorshift32 state. It must be non-zero: an
// all-zero state is a fixed point of xorshift and would never advance.
const seed uint32 = 0x9E3779B9

// Stream is a reseedable byte generator. The zero value is not ready to
// use; call Reseed first, exactly as spec.md §4.6 does at the start of
// every sweep.
type Stream struct {
	state uint32
}

// Reseed resets the generator to its documented initial state. Called
// whenever a read or write sweep begins at the application base
// (spec.md §4.6), so that two sweeps starting at BOOTLOADER_TO always
// produce the same mask sequence.
func (s *Stream) Reseed() {
	s.state = seed
}

// Next advances the generator one step and returns the next mask byte.
func (s *Stream) Next() byte {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return byte(x)
}

// XOR masks dst in place with len(dst) bytes of keystream. Handlers use this instead of calling Next in a
// loop so the masking step reads the same way on both the read and write
// paths (spec.md §4.7's ReadMemory and WriteMemory handlers).
func (s *Stream) XOR(dst []byte) {
	for i := range dst {
		dst[i] ^= s.Next()
	}
}
