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
	"fmt"

	"github.com/nuvotools/go-isp/internal/frame"
)

// Command is one ISP bootloader operation. The set is closed: the codec
// refuses to encode anything outside it.
type Command byte

// ISP command codes (Nuvoton UART bootloader command set)
const (
	CmdUpdateAprom     Command = frame.CmdUpdateAprom
	CmdUpdateConfig    Command = frame.CmdUpdateConfig
	CmdReadConfig      Command = frame.CmdReadConfig
	CmdEraseAll        Command = frame.CmdEraseAll
	CmdSyncPackno      Command = frame.CmdSyncPackno
	CmdGetFwVersion    Command = frame.CmdGetFwVersion
	CmdRunAprom        Command = frame.CmdRunAprom
	CmdRunLdrom        Command = frame.CmdRunLdrom
	CmdReset           Command = frame.CmdReset
	CmdConnect         Command = frame.CmdConnect
	CmdDisconnect      Command = frame.CmdDisconnect
	CmdGetDeviceID     Command = frame.CmdGetDeviceID
	CmdUpdateDataflash Command = frame.CmdUpdateDataflash
	CmdWriteChecksum   Command = frame.CmdWriteChecksum
	CmdGetFlashMode    Command = frame.CmdGetFlashMode
	CmdResendPacket    Command = frame.CmdResendPacket
)

func (c Command) String() string {
	switch c {
	case CmdUpdateAprom:
		return "UPDATE_APROM"
	case CmdUpdateConfig:
		return "UPDATE_CONFIG"
	case CmdReadConfig:
		return "READ_CONFIG"
	case CmdEraseAll:
		return "ERASE_ALL"
	case CmdSyncPackno:
		return "SYNC_PACKNO"
	case CmdGetFwVersion:
		return "GET_FWVER"
	case CmdRunAprom:
		return "RUN_APROM"
	case CmdRunLdrom:
		return "RUN_LDROM"
	case CmdReset:
		return "RESET"
	case CmdConnect:
		return "CONNECT"
	case CmdDisconnect:
		return "DISCONNECT"
	case CmdGetDeviceID:
		return "GET_DEVICEID"
	case CmdUpdateDataflash:
		return "UPDATE_DATAFLASH"
	case CmdWriteChecksum:
		return "WRITE_CHECKSUM"
	case CmdGetFlashMode:
		return "GET_FLASHMODE"
	case CmdResendPacket:
		return "RESEND_PACKET"
	default:
		return fmt.Sprintf("0x%02X", byte(c))
	}
}

// Packet is one decoded response frame. Payload spans the full frame
// capacity; unused space is zero padding.
type Packet struct {
	Payload []byte
	Seq     uint32
	Command Command
}
