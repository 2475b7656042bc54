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

package isp

import (
	"context"
	"encoding/binary"
	"fmt"
)

// FlashMode reports which flash region the device is currently booted
// from.
type FlashMode byte

const (
	// FlashModeAPROM means the device reported booting from APROM.
	FlashModeAPROM FlashMode = 1
	// FlashModeLDROM means the device reported booting from LDROM.
	FlashModeLDROM FlashMode = 2
)

func (m FlashMode) String() string {
	switch m {
	case FlashModeAPROM:
		return "APROM"
	case FlashModeLDROM:
		return "LDROM"
	default:
		return fmt.Sprintf("mode(0x%02X)", byte(m))
	}
}

// Inspector issues read-only queries through a connected Session. The
// calls are safe in any order and do not mutate device state; results are
// also cached on the session for later reporting.
type Inspector struct {
	session *Session
}

// NewInspector creates an Inspector over the given session.
func NewInspector(session *Session) *Inspector {
	return &Inspector{session: session}
}

// DeviceID reads the chip's device ID (GET_DEVICEID), a little-endian
// uint32 in the first four payload bytes.
func (i *Inspector) DeviceID(ctx context.Context) (uint32, error) {
	pkt, err := i.session.Execute(ctx, CmdGetDeviceID, nil)
	if err != nil {
		return 0, fmt.Errorf("device id: %w", err)
	}
	if len(pkt.Payload) < 4 {
		return 0, fmt.Errorf("device id: %w: payload too short", ErrCorruptResponse)
	}
	id := binary.LittleEndian.Uint32(pkt.Payload[:4])
	i.session.cacheDeviceID(id)
	return id, nil
}

// FirmwareVersion reads the LDROM firmware version (GET_FWVER).
func (i *Inspector) FirmwareVersion(ctx context.Context) (uint32, error) {
	pkt, err := i.session.Execute(ctx, CmdGetFwVersion, nil)
	if err != nil {
		return 0, fmt.Errorf("firmware version: %w", err)
	}
	if len(pkt.Payload) < 4 {
		return 0, fmt.Errorf("firmware version: %w: payload too short", ErrCorruptResponse)
	}
	version := binary.LittleEndian.Uint32(pkt.Payload[:4])
	i.session.cacheFirmwareVersion(version)
	return version, nil
}

// ConfigRegisters reads the device configuration registers (READ_CONFIG):
// config0 and config1 as little-endian uint32 values.
func (i *Inspector) ConfigRegisters(ctx context.Context) ([]uint32, error) {
	pkt, err := i.session.Execute(ctx, CmdReadConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("config registers: %w", err)
	}
	if len(pkt.Payload) < 8 {
		return nil, fmt.Errorf("config registers: %w: payload too short", ErrCorruptResponse)
	}
	regs := []uint32{
		binary.LittleEndian.Uint32(pkt.Payload[0:4]),
		binary.LittleEndian.Uint32(pkt.Payload[4:8]),
	}
	i.session.cacheConfigRegisters(regs)
	return regs, nil
}

// FlashMode reports whether the device is running from APROM or LDROM
// (GET_FLASHMODE).
func (i *Inspector) FlashMode(ctx context.Context) (FlashMode, error) {
	pkt, err := i.session.Execute(ctx, CmdGetFlashMode, nil)
	if err != nil {
		return 0, fmt.Errorf("flash mode: %w", err)
	}
	if len(pkt.Payload) < 1 {
		return 0, fmt.Errorf("flash mode: %w: payload too short", ErrCorruptResponse)
	}
	return FlashMode(pkt.Payload[0]), nil
}
