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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvotools/go-isp/internal/frame"
)

// inspectorResponder answers device queries with fixed register values.
func inspectorResponder(cmd byte, _ uint32) []byte {
	switch cmd {
	case frame.CmdGetDeviceID:
		return []byte{0x00, 0x00, 0x01, 0x23}
	case frame.CmdGetFwVersion:
		return []byte{0x26, 0x00, 0x00, 0x00}
	case frame.CmdReadConfig:
		return []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x5A, 0x00, 0x00}
	case frame.CmdGetFlashMode:
		return []byte{0x02}
	default:
		return nil
	}
}

func newInspector(t *testing.T) (*Inspector, *Session) {
	t.Helper()
	session, mock := newConnectedSession(t)
	mock.ResponseFunc = autoResponder(inspectorResponder)
	return NewInspector(session), session
}

func TestInspectorDeviceID(t *testing.T) {
	t.Parallel()

	inspector, session := newInspector(t)
	id, err := inspector.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2301_0000), id)

	info := session.Info()
	require.NotNil(t, info.DeviceID)
	assert.Equal(t, id, *info.DeviceID)
}

func TestInspectorFirmwareVersion(t *testing.T) {
	t.Parallel()

	inspector, session := newInspector(t)
	version, err := inspector.FirmwareVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(0x26), version)

	info := session.Info()
	require.NotNil(t, info.FirmwareVersion)
	assert.Equal(t, version, *info.FirmwareVersion)
}

func TestInspectorConfigRegisters(t *testing.T) {
	t.Parallel()

	inspector, session := newInspector(t)
	regs, err := inspector.ConfigRegisters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xFFFF_FFFF, 0x0000_5A00}, regs)
	assert.Equal(t, regs, session.Info().ConfigRegisters)
}

func TestInspectorFlashMode(t *testing.T) {
	t.Parallel()

	inspector, _ := newInspector(t)
	mode, err := inspector.FlashMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FlashModeLDROM, mode)
	assert.Equal(t, "LDROM", mode.String())
}

func TestInspectorAfterTerminalCommand(t *testing.T) {
	t.Parallel()

	inspector, session := newInspector(t)
	require.NoError(t, session.Reset(context.Background()))

	_, err := inspector.DeviceID(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}
