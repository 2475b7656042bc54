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

// ChecksumKind selects the checksum algorithm for a frame. The algorithm
// varies by chip family, so it is codec configuration rather than a
// constant.
type ChecksumKind int

const (
	// ChecksumSum16 is the plain 16-bit byte sum used by the Nuvoton UART
	// bootloader (sum of all preceding bytes mod 65536).
	ChecksumSum16 ChecksumKind = iota
	// ChecksumCRC16 is CRC-16-CCITT (poly 0x1021, init 0xFFFF, no final
	// XOR), used by families that replace the sum with a CRC.
	ChecksumCRC16
)

// CRC-16-CCITT parameters.
const (
	crc16Polynomial   = 0x1021
	crc16InitialValue = 0xFFFF
	crc16HighBitMask  = 0x8000
)

// Sum16 returns the 16-bit byte sum of data.
func Sum16(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// CRC16 returns the CRC-16-CCITT checksum of data.
func CRC16(data []byte) uint16 {
	crc := uint16(crc16InitialValue)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&crc16HighBitMask != 0 {
				crc = (crc << 1) ^ crc16Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// checksum computes the configured checksum over data.
func (c Config) checksum(data []byte) uint16 {
	if c.Checksum == ChecksumCRC16 {
		return CRC16(data)
	}
	return Sum16(data)
}
