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

// Package frame implements the fixed-width ISP command frame: layout,
// command codes and checksum algorithms.
package frame

// ISP command codes. These match the Nuvoton UART bootloader command set
// and must not be changed: the LDROM firmware on the device side is fixed.
const (
	CmdUpdateAprom     = 0xA0
	CmdUpdateConfig    = 0xA1
	CmdReadConfig      = 0xA2
	CmdEraseAll        = 0xA3
	CmdSyncPackno      = 0xA4
	CmdGetFwVersion    = 0xA6
	CmdRunAprom        = 0xAB
	CmdRunLdrom        = 0xAC
	CmdReset           = 0xAD
	CmdConnect         = 0xAE
	CmdDisconnect      = 0xAF
	CmdGetDeviceID     = 0xB1
	CmdUpdateDataflash = 0xC3
	CmdWriteChecksum   = 0xC9
	CmdGetFlashMode    = 0xCA
	CmdResendPacket    = 0xFF
)

// Frame layout offsets. Multi-byte fields are little-endian, matching the
// target family's native byte order.
const (
	CmdOffset     = 0 // command code
	SeqOffset     = 4 // sequence number, uint32
	PayloadOffset = 8 // payload, zero-padded to capacity

	HeaderSize   = 8 // command byte + 3 reserved bytes + sequence number
	ChecksumSize = 2 // trailing uint16 checksum

	// DefaultWidth is the frame width used by the Nuvoton UART bootloader.
	DefaultWidth = 64

	// MinWidth is the smallest usable frame width: header, checksum and at
	// least one page header's worth of payload.
	MinWidth = 24
)

// StatusOK is the ack status carried in the first payload byte of write and
// erase responses when the operation succeeded.
const StatusOK = 0x00

// payloadShape bounds the payload length accepted for a command. A max of
// -1 means "up to frame capacity".
type payloadShape struct {
	min int
	max int
}

// commandShapes is the closed set of commands this codec will encode. Every
// command's payload layout is checked here so a malformed frame never
// reaches the transport.
var commandShapes = map[byte]payloadShape{
	CmdUpdateAprom:     {min: 9, max: -1}, // addr + length + at least one data byte
	CmdUpdateConfig:    {min: 8, max: 8},  // config0 + config1
	CmdReadConfig:      {min: 0, max: 0},
	CmdEraseAll:        {min: 0, max: 0},
	CmdSyncPackno:      {min: 4, max: 4}, // new sequence number
	CmdGetFwVersion:    {min: 0, max: 0},
	CmdRunAprom:        {min: 0, max: 0},
	CmdRunLdrom:        {min: 0, max: 0},
	CmdReset:           {min: 0, max: 0},
	CmdConnect:         {min: 0, max: 0},
	CmdDisconnect:      {min: 0, max: 0},
	CmdGetDeviceID:     {min: 0, max: 0},
	CmdUpdateDataflash: {min: 9, max: -1},
	CmdWriteChecksum:   {min: 8, max: 8}, // addr + length
	CmdGetFlashMode:    {min: 0, max: 0},
	CmdResendPacket:    {min: 0, max: 0},
}
