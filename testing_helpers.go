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
	"time"
)

// mockReply is one scripted transport response: frame bytes, an injected
// error, or neither (a read timeout).
type mockReply struct {
	err  error
	data []byte
}

// MockTransport is a scripted transport for tests. Frames written via
// Send are recorded; Receive serves scripted replies in order, falling
// back to a response function, and times out when nothing is scripted.
type MockTransport struct {
	// ResponseFunc, when set and the script queue is empty, computes the
	// reply to the most recently sent frame
	ResponseFunc func(sent []byte) ([]byte, error)
	// Sent records every frame written, in order
	Sent    [][]byte
	queue   []mockReply
	timeout time.Duration
	// ReceiveCalls counts Receive invocations
	ReceiveCalls int
	closed       bool
}

// NewMockTransport creates an empty scripted transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{timeout: time.Second}
}

// QueueResponse scripts a frame to be served by the next Receive.
func (m *MockTransport) QueueResponse(data []byte) {
	m.queue = append(m.queue, mockReply{data: append([]byte(nil), data...)})
}

// QueueError scripts an error to be returned by the next Receive.
func (m *MockTransport) QueueError(err error) {
	m.queue = append(m.queue, mockReply{err: err})
}

// QueueTimeout scripts a read timeout for the next Receive.
func (m *MockTransport) QueueTimeout() {
	m.queue = append(m.queue, mockReply{})
}

// SentFrames returns the recorded frames whose command byte matches cmd.
func (m *MockTransport) SentFrames(cmd byte) [][]byte {
	var frames [][]byte
	for _, f := range m.Sent {
		if len(f) > 0 && f[0] == cmd {
			frames = append(frames, f)
		}
	}
	return frames
}

// Send records the frame.
func (m *MockTransport) Send(frame []byte) error {
	if m.closed {
		return NewTransportError("write", "mock", ErrTransportWrite, ErrorTypePermanent)
	}
	m.Sent = append(m.Sent, append([]byte(nil), frame...))
	return nil
}

// Receive serves the next scripted reply, or consults ResponseFunc, or
// reports a timeout.
func (m *MockTransport) Receive(n int) ([]byte, error) {
	m.ReceiveCalls++
	if m.closed {
		return nil, NewTransportError("read", "mock", ErrTransportRead, ErrorTypePermanent)
	}
	if len(m.queue) > 0 {
		reply := m.queue[0]
		m.queue = m.queue[1:]
		if reply.err != nil {
			return nil, reply.err
		}
		if reply.data == nil {
			return nil, NewTimeoutError("receive", "mock")
		}
		return reply.data, nil
	}
	if m.ResponseFunc != nil && len(m.Sent) > 0 {
		return m.ResponseFunc(m.Sent[len(m.Sent)-1])
	}
	return nil, NewTimeoutError("receive", "mock")
}

// SetTimeout records the timeout.
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.timeout = timeout
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.closed = true
	return nil
}

// IsConnected reports whether the transport is still open.
func (m *MockTransport) IsConnected() bool {
	return !m.closed
}

// Type returns TransportMock.
func (*MockTransport) Type() TransportType {
	return TransportMock
}
