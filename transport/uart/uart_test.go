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

package uart

import (
	"testing"
	"time"

	isp "github.com/nuvotools/go-isp"
)

// TestTransportCreation verifies basic transport construction and properties
func TestTransportCreation(t *testing.T) {
	t.Parallel()

	testPortName := "/dev/ttyUSB0"
	transport := &Transport{
		portName: testPortName,
		baudRate: DefaultBaudRate,
	}

	if transport.portName != testPortName {
		t.Errorf("Expected port name %s, got %s", testPortName, transport.portName)
	}
	if transport.PortName() != testPortName {
		t.Errorf("Expected PortName() %s, got %s", testPortName, transport.PortName())
	}

	expectedType := isp.TransportUART
	if transport.Type() != expectedType {
		t.Errorf("Expected transport type %v, got %v", expectedType, transport.Type())
	}

	// An unopened transport must not report as connected
	if transport.IsConnected() {
		t.Error("Expected IsConnected() to return false for uninitialized transport")
	}
}

func TestTransportClosedErrors(t *testing.T) {
	t.Parallel()

	transport := &Transport{portName: "/dev/ttyUSB0"}

	if err := transport.Send([]byte{0x00}); err == nil {
		t.Error("Expected Send on a closed transport to fail")
	}
	if _, err := transport.Receive(1); err == nil {
		t.Error("Expected Receive on a closed transport to fail")
	}
	// Close and SetTimeout on an unopened transport are no-ops
	if err := transport.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got %v", err)
	}
	if err := transport.SetTimeout(500 * time.Millisecond); err != nil {
		t.Errorf("Expected SetTimeout to succeed, got %v", err)
	}
}

func TestWithBaudRate(t *testing.T) {
	t.Parallel()

	transport := &Transport{baudRate: DefaultBaudRate}
	WithBaudRate(9600)(transport)
	if transport.baudRate != 9600 {
		t.Errorf("Expected baud rate 9600, got %d", transport.baudRate)
	}
}
