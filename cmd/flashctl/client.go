package main

import (
	"fmt"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/keystream"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/proto"
)

// Client drives the host side of the wire protocol session/session.go
// implements on the device: it is the AN3155 host role, built directly
// against the same proto constants and bootcfg.Layout the device uses.
type Client struct {
	Link         link.Link
	Layout       bootcfg.Layout
	TimeoutIters int

	keystream keystream.Stream
}

func (c *Client) recvOrTimeout() (byte, error) {
	b, ok := c.Link.WaitByte(c.TimeoutIters)
	if !ok {
		return 0, fmt.Errorf("flashctl: timed out waiting for a response")
	}
	return b, nil
}

func (c *Client) expectACK() error {
	b, err := c.recvOrTimeout()
	if err != nil {
		return err
	}
	if b != proto.ACK {
		return fmt.Errorf("flashctl: device replied 0x%02x, want ACK", b)
	}
	return nil
}

// Activate sends the activation byte until the device ACKs it.
func (c *Client) Activate(attempts int) error {
	for i := 0; i < attempts; i++ {
		c.Link.Send(proto.Activate)
		b, err := c.recvOrTimeout()
		if err == nil && b == proto.ACK {
			return nil
		}
	}
	return fmt.Errorf("flashctl: device did not respond to activation")
}

func (c *Client) sendCommand(cmd byte) error {
	c.Link.Send(cmd)
	c.Link.Send(cmd ^ 0xFF)
	return c.expectACK()
}

// wireAddress converts an application-relative offset into the wire
// encoding session.go's framing.ReadAddress expects: a FlashBase-prefixed
// address that the device will rebase by +BootloaderSize.
func (c *Client) wireAddress(appOffset uint32) uint32 {
	return c.Layout.BootloaderFrom + appOffset
}

func (c *Client) sendAddress(appOffset uint32) error {
	addr := c.wireAddress(appOffset)
	b := []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	c.Link.SendBlock(b)
	c.Link.Send(b[0] ^ b[1] ^ b[2] ^ b[3])
	return c.expectACK()
}

// GetID returns the chip's reported product ID.
func (c *Client) GetID() (uint16, error) {
	if err := c.sendCommand(proto.CmdGetID); err != nil {
		return 0, err
	}
	n, err := c.recvOrTimeout()
	if err != nil {
		return 0, err
	}
	hi, err := c.recvOrTimeout()
	if err != nil {
		return 0, err
	}
	lo, err := c.recvOrTimeout()
	if err != nil {
		return 0, err
	}
	if err := c.expectACK(); err != nil {
		return 0, err
	}
	_ = n
	return uint16(hi)<<8 | uint16(lo), nil
}

// Erase erases the whole application region. Family A (uniform page erase)
// takes the n/~n length pair decoding to 256; Family B (sector erase) takes
// three raw bytes 0xFF 0xFF 0x00, matching cmdErase's two grammars.
func (c *Client) Erase() error {
	if err := c.sendCommand(proto.CmdErase); err != nil {
		return err
	}
	if c.Layout.PageSize != 0 {
		n := byte(0xFF)
		c.Link.Send(n)
		c.Link.Send(n ^ 0xFF)
	} else {
		c.Link.Send(0xFF)
		c.Link.Send(0xFF)
		c.Link.Send(0x00)
	}
	return c.expectACK()
}

// WriteMemory writes data starting at appOffset, chunked into <=256-byte
// word-aligned blocks the way the device's cmd_mem_write expects, masking
// each block with the shared keystream just like session.go does on write.
func (c *Client) WriteMemory(appOffset uint32, data []byte) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("flashctl: write length %d is not word-aligned", len(data))
	}
	if appOffset == 0 {
		c.keystream.Reseed()
	}

	for pos := 0; pos < len(data); {
		chunkLen := 256
		if remaining := len(data) - pos; remaining < chunkLen {
			chunkLen = remaining
		}
		chunk := append([]byte(nil), data[pos:pos+chunkLen]...)
		c.keystream.XOR(chunk)

		if err := c.sendCommand(proto.CmdWriteMemory); err != nil {
			return err
		}
		if err := c.sendAddress(appOffset + uint32(pos)); err != nil {
			return err
		}

		lenByte := byte(chunkLen - 1)
		xor := lenByte
		c.Link.Send(lenByte)
		for _, b := range chunk {
			xor ^= b
			c.Link.Send(b)
		}
		c.Link.Send(xor)
		if err := c.expectACK(); err != nil {
			return fmt.Errorf("flashctl: write at offset %#x: %w", appOffset+uint32(pos), err)
		}

		pos += chunkLen
	}
	return nil
}

// ReadMemory reads n bytes starting at appOffset, unmasking them with the
// shared keystream the same way the write path masked them.
func (c *Client) ReadMemory(appOffset uint32, n int) ([]byte, error) {
	if appOffset == 0 {
		c.keystream.Reseed()
	}

	out := make([]byte, 0, n)
	for len(out) < n {
		chunkLen := 256
		if remaining := n - len(out); remaining < chunkLen {
			chunkLen = remaining
		}

		if err := c.sendCommand(proto.CmdReadMemory); err != nil {
			return nil, err
		}
		if err := c.sendAddress(appOffset + uint32(len(out))); err != nil {
			return nil, err
		}
		lenByte := byte(chunkLen - 1)
		c.Link.Send(lenByte)
		c.Link.Send(^lenByte)
		if err := c.expectACK(); err != nil {
			return nil, err
		}

		chunk := make([]byte, chunkLen)
		for i := range chunk {
			b, err := c.recvOrTimeout()
			if err != nil {
				return nil, err
			}
			chunk[i] = b
		}
		c.keystream.XOR(chunk)
		out = append(out, chunk...)
	}
	return out, nil
}

// Go hands control to the application at appOffset.
func (c *Client) Go(appOffset uint32) error {
	if err := c.sendCommand(proto.CmdGo); err != nil {
		return err
	}
	return c.sendAddress(appOffset)
}
