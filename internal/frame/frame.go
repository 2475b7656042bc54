// go-isp
// Copyright (c) 2026 The Nuvotools Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-isp.
//
// go-isp is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-isp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-isp; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Codec errors
var (
	ErrTruncated        = errors.New("truncated frame")
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	ErrUnknownCommand   = errors.New("unknown command code")
	ErrPayloadTooLarge  = errors.New("payload exceeds frame capacity")
	ErrBadPayloadShape  = errors.New("payload length invalid for command")
	ErrInvalidWidth     = errors.New("invalid frame width")
)

// Config parameterizes the codec for a chip family: frame width and
// checksum algorithm. The zero value is not valid; use DefaultConfig.
type Config struct {
	Width    int
	Checksum ChecksumKind
}

// DefaultConfig returns the codec configuration for the Nuvoton UART
// bootloader: 64-byte frames with a 16-bit byte-sum checksum.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Checksum: ChecksumSum16}
}

// Validate reports whether the configuration describes a usable frame.
func (c Config) Validate() error {
	if c.Width < MinWidth {
		return fmt.Errorf("%w: %d (minimum %d)", ErrInvalidWidth, c.Width, MinWidth)
	}
	return nil
}

// Capacity returns the payload capacity of a frame.
func (c Config) Capacity() int {
	return c.Width - HeaderSize - ChecksumSize
}

// Packet is one decoded frame. Payload always has the full frame capacity;
// unused space is zero padding, which is part of the wire contract.
type Packet struct {
	Payload []byte
	Seq     uint32
	Command byte
}

// Encode lays out cmd, seq and payload into a frame of the configured
// width, zero-pads the unused payload space and appends the checksum over
// all preceding bytes. The command must be one of the known ISP commands
// and the payload must match its shape.
func (c Config) Encode(cmd byte, seq uint32, payload []byte) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	shape, ok := commandShapes[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownCommand, cmd)
	}
	maxLen := shape.max
	if maxLen < 0 {
		maxLen = c.Capacity()
	}
	if len(payload) > c.Capacity() {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrPayloadTooLarge, len(payload), c.Capacity())
	}
	if len(payload) < shape.min || len(payload) > maxLen {
		return nil, fmt.Errorf("%w: command 0x%02X takes %d..%d bytes, got %d",
			ErrBadPayloadShape, cmd, shape.min, maxLen, len(payload))
	}

	buf := make([]byte, c.Width)
	buf[CmdOffset] = cmd
	binary.LittleEndian.PutUint32(buf[SeqOffset:], seq)
	copy(buf[PayloadOffset:], payload)
	sum := c.checksum(buf[:c.Width-ChecksumSize])
	binary.LittleEndian.PutUint16(buf[c.Width-ChecksumSize:], sum)
	return buf, nil
}

// EncodeResponse builds a device-to-host frame acknowledging seq. Used by
// the virtual device; the layout is identical to host frames.
func (c Config) EncodeResponse(cmd byte, seq uint32, payload []byte) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(payload) > c.Capacity() {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrPayloadTooLarge, len(payload), c.Capacity())
	}
	buf := make([]byte, c.Width)
	buf[CmdOffset] = cmd
	binary.LittleEndian.PutUint32(buf[SeqOffset:], seq)
	copy(buf[PayloadOffset:], payload)
	sum := c.checksum(buf[:c.Width-ChecksumSize])
	binary.LittleEndian.PutUint16(buf[c.Width-ChecksumSize:], sum)
	return buf, nil
}

// Decode validates the frame length and checksum of buf and unpacks it.
// Only framing is validated here; command semantics belong to the session.
func (c Config) Decode(buf []byte) (Packet, error) {
	if err := c.Validate(); err != nil {
		return Packet{}, err
	}
	if len(buf) < c.Width {
		return Packet{}, fmt.Errorf("%w: %d bytes, want %d", ErrTruncated, len(buf), c.Width)
	}
	buf = buf[:c.Width]
	want := c.checksum(buf[:c.Width-ChecksumSize])
	got := binary.LittleEndian.Uint16(buf[c.Width-ChecksumSize:])
	if want != got {
		return Packet{}, fmt.Errorf("%w: computed 0x%04X, frame carries 0x%04X", ErrChecksumMismatch, want, got)
	}
	payload := make([]byte, c.Capacity())
	copy(payload, buf[PayloadOffset:c.Width-ChecksumSize])
	return Packet{
		Command: buf[CmdOffset],
		Seq:     binary.LittleEndian.Uint32(buf[SeqOffset:]),
		Payload: payload,
	}, nil
}
