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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvotools/go-isp/internal/frame"
)

// autoResponder builds a ResponseFunc that acknowledges every frame the
// way the bootloader does: command echoed, sequence plus one. payloadFor
// may be nil for all-zero (status OK) payloads.
func autoResponder(payloadFor func(cmd byte, seq uint32) []byte) func([]byte) ([]byte, error) {
	cfg := frame.DefaultConfig()
	return func(sent []byte) ([]byte, error) {
		pkt, err := cfg.Decode(sent)
		if err != nil {
			return nil, err
		}
		var payload []byte
		if payloadFor != nil {
			payload = payloadFor(pkt.Command, pkt.Seq)
		}
		return cfg.EncodeResponse(pkt.Command, pkt.Seq+1, payload)
	}
}

// newConnectedSession returns a session that has completed the handshake
// against a scripted transport, with the transport's records cleared.
func newConnectedSession(t *testing.T, opts ...Option) (*Session, *MockTransport) {
	t.Helper()
	mock := NewMockTransport()
	mock.ResponseFunc = autoResponder(nil)
	session, err := NewSession(mock, opts...)
	require.NoError(t, err)
	require.NoError(t, session.Connect(context.Background()))
	mock.Sent = nil
	mock.ReceiveCalls = 0
	return session, mock
}

func TestConnectNoResponse(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	session, err := NewSession(mock, WithMaxRetries(4))
	require.NoError(t, err)

	err = session.Connect(context.Background())
	require.ErrorIs(t, err, ErrNoResponse)
	assert.Len(t, mock.SentFrames(frame.CmdConnect), 4)
	assert.Equal(t, StateDisconnected, session.State())
}

func TestConnectSucceedsOnNthAttempt(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 3} {
		mock := NewMockTransport()
		mock.ResponseFunc = autoResponder(nil)
		for i := 0; i < n-1; i++ {
			mock.QueueTimeout()
		}

		session, err := NewSession(mock, WithMaxRetries(5))
		require.NoError(t, err)
		require.NoError(t, session.Connect(context.Background()))

		assert.Len(t, mock.SentFrames(frame.CmdConnect), n, "attempt count for n=%d", n)
		assert.Equal(t, StateConnected, session.State())
	}
}

func TestConnectRetriesCorruptFrames(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.ResponseFunc = autoResponder(nil)
	// Line noise while the target comes out of reset.
	mock.QueueResponse(bytes.Repeat([]byte{0x55}, frame.DefaultWidth))

	session, err := NewSession(mock, WithMaxRetries(3))
	require.NoError(t, err)
	require.NoError(t, session.Connect(context.Background()))
	assert.Len(t, mock.SentFrames(frame.CmdConnect), 2)
}

func TestConnectSynchronizesSequence(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t)
	_, err := session.Execute(context.Background(), CmdGetDeviceID, nil)
	require.NoError(t, err)

	// After CONNECT (seq 1) and SYNC_PACKNO (seq reset to 1), the next
	// exchange must go out with sequence 3.
	sent := mock.SentFrames(frame.CmdGetDeviceID)
	require.Len(t, sent, 1)
	pkt, err := frame.DefaultConfig().Decode(sent[0])
	require.NoError(t, err)
	assert.Equal(t, uint32(3), pkt.Seq)
}

func TestExecuteRequiresConnect(t *testing.T) {
	t.Parallel()

	session, err := NewSession(NewMockTransport())
	require.NoError(t, err)

	_, err = session.Execute(context.Background(), CmdGetDeviceID, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestExecuteCorruptResponseNotRetried(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t, WithMaxRetries(5))
	corrupt := bytes.Repeat([]byte{0xA9}, frame.DefaultWidth)
	mock.QueueResponse(corrupt)

	_, err := session.Execute(context.Background(), CmdGetDeviceID, nil)
	require.ErrorIs(t, err, ErrCorruptResponse)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	// A corrupt response is reported, not swallowed by the retry loop.
	assert.Len(t, mock.Sent, 1)
}

func TestExecuteRejectsWrongSequence(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t)
	stale, err := frame.DefaultConfig().EncodeResponse(frame.CmdGetDeviceID, 99, nil)
	require.NoError(t, err)
	mock.QueueResponse(stale)

	_, err = session.Execute(context.Background(), CmdGetDeviceID, nil)
	assert.ErrorIs(t, err, ErrCorruptResponse)
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t, WithRetryConfig(&RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 0,
	}))
	mock.QueueError(NewTransportError("read", "mock", ErrTransportRead, ErrorTypeTransient))

	_, err := session.Execute(context.Background(), CmdGetFwVersion, nil)
	require.NoError(t, err)
	assert.Len(t, mock.SentFrames(frame.CmdGetFwVersion), 2)
}

func TestExecuteTimeout(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t, WithRetryConfig(&RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 0,
	}))
	mock.ResponseFunc = nil

	_, err := session.Execute(context.Background(), CmdGetDeviceID, nil)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Len(t, mock.Sent, 2)
}

func TestTerminalCommandsCloseSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		run  func(*Session, context.Context) error
		name string
		cmd  byte
	}{
		{name: "run aprom", cmd: frame.CmdRunAprom, run: (*Session).RunAPROM},
		{name: "run ldrom", cmd: frame.CmdRunLdrom, run: (*Session).RunLDROM},
		{name: "reset", cmd: frame.CmdReset, run: (*Session).Reset},
		{name: "disconnect", cmd: frame.CmdDisconnect, run: (*Session).Disconnect},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			session, mock := newConnectedSession(t)

			require.NoError(t, tt.run(session, context.Background()))
			assert.Equal(t, StateClosed, session.State())
			assert.Len(t, mock.Sent, 1)
			assert.Equal(t, tt.cmd, mock.Sent[0][0])
			// The device reboots: no response is read for the terminal
			// frame, and no further I/O is attempted.
			assert.Equal(t, 0, mock.ReceiveCalls)

			_, err := session.Execute(context.Background(), CmdGetDeviceID, nil)
			assert.ErrorIs(t, err, ErrSessionClosed)
			assert.False(t, session.Info().Connected)
		})
	}
}

func TestWritePageOrdering(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t)
	ctx := context.Background()
	page := make([]byte, 16)

	_, err := session.WritePage(ctx, CmdUpdateAprom, 0, page)
	require.NoError(t, err)
	sentBefore := len(mock.Sent)

	// Skipping ahead of the device's write pointer must be refused
	// before anything reaches the wire.
	_, err = session.WritePage(ctx, CmdUpdateAprom, 999, page)
	require.ErrorIs(t, err, ErrOutOfOrderWrite)
	assert.Len(t, mock.Sent, sentBefore)

	_, err = session.WritePage(ctx, CmdUpdateAprom, 16, page)
	require.NoError(t, err)

	// Sync resets the write pointer for a fresh image.
	require.NoError(t, session.Sync(ctx))
	_, err = session.WritePage(ctx, CmdUpdateAprom, 0, page)
	assert.NoError(t, err)
}

func TestWritePageValidation(t *testing.T) {
	t.Parallel()

	session, _ := newConnectedSession(t)
	ctx := context.Background()

	_, err := session.WritePage(ctx, CmdEraseAll, 0, make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = session.WritePage(ctx, CmdUpdateAprom, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = session.WritePage(ctx, CmdUpdateAprom, 0, make([]byte, session.PageCapacity()+1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestWritePagePayloadLayout(t *testing.T) {
	t.Parallel()

	session, mock := newConnectedSession(t)
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	_, err := session.WritePage(context.Background(), CmdUpdateAprom, 0x0000_1200, data)
	require.NoError(t, err)

	sent := mock.SentFrames(frame.CmdUpdateAprom)
	require.Len(t, sent, 1)
	pkt, err := frame.DefaultConfig().Decode(sent[0])
	require.NoError(t, err)
	// [addr u32][len u32][data], little-endian
	assert.Equal(t, []byte{0x00, 0x12, 0x00, 0x00}, pkt.Payload[0:4])
	assert.Equal(t, []byte{0x04, 0x00, 0x00, 0x00}, pkt.Payload[4:8])
	assert.Equal(t, data, pkt.Payload[8:12])
}
