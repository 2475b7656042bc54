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

import "time"

// Transport carries raw frames between the host and the bootloader. It is
// a blocking byte pipe with a configurable read timeout; framing, checksums
// and retry policy live above it in the Session.
//
// A Transport is exclusively owned by one Session for the lifetime of a run.
type Transport interface {
	// Send writes one encoded frame to the device
	Send(frame []byte) error

	// Receive reads exactly n bytes from the device, blocking up to the
	// configured timeout. A timeout surfaces as a retryable timeout error.
	Receive(n int) ([]byte, error)

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
	// TransportVirtual represents a simulated bootloader device
	TransportVirtual TransportType = "virtual"
)
