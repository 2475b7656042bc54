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

// Package uart provides a serial transport for talking to a Nuvoton
// LDROM bootloader over a UART or USB-serial adapter.
package uart

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	isp "github.com/nuvotools/go-isp"
)

// DefaultBaudRate is the rate Nuvoton LDROM bootloaders listen at.
const DefaultBaudRate = 115200

const defaultTimeout = 1 * time.Second

// Transport implements isp.Transport over a serial port.
type Transport struct {
	port      serial.Port
	portName  string
	baudRate  int
	timeout   time.Duration
	mu        sync.Mutex
	connected bool
}

// Option configures the transport before the port is opened.
type Option func(*Transport)

// WithBaudRate overrides the default 115200 baud.
func WithBaudRate(rate int) Option {
	return func(t *Transport) {
		t.baudRate = rate
	}
}

// New opens the named serial port in 8N1 mode and returns a transport
// ready for a session handshake.
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		portName: portName,
		baudRate: DefaultBaudRate,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	mode := &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, isp.NewTransportError("open", portName,
			fmt.Errorf("%w: %w", isp.ErrDeviceNotFound, err), isp.ErrorTypePermanent)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, isp.NewTransportError("open", portName, err, isp.ErrorTypePermanent)
	}

	// Drop anything queued from before the bootloader entered ISP mode.
	_ = port.ResetInputBuffer()
	_ = port.ResetOutputBuffer()

	t.port = port
	t.connected = true
	return t, nil
}

// Send writes one frame to the port.
func (t *Transport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return isp.NewTransportError("send", t.portName, isp.ErrTransportWrite, isp.ErrorTypePermanent)
	}

	n, err := t.port.Write(frame)
	if err != nil {
		return isp.NewTransportError("send", t.portName,
			fmt.Errorf("%w: %w", isp.ErrTransportWrite, err), isp.ErrorTypeTransient)
	}
	if n != len(frame) {
		return isp.NewTransportError("send", t.portName,
			fmt.Errorf("%w: short write (%d of %d bytes)", isp.ErrTransportWrite, n, len(frame)),
			isp.ErrorTypeTransient)
	}
	return nil
}

// Receive reads exactly n bytes, accumulating partial reads until the
// read timeout expires with no further data.
func (t *Transport) Receive(n int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil, isp.NewTransportError("receive", t.portName, isp.ErrTransportRead, isp.ErrorTypePermanent)
	}

	buf := make([]byte, n)
	got := 0
	for got < n {
		read, err := t.port.Read(buf[got:])
		if err != nil {
			return nil, isp.NewTransportError("receive", t.portName,
				fmt.Errorf("%w: %w", isp.ErrTransportRead, err), isp.ErrorTypeTransient)
		}
		if read == 0 {
			// go.bug.st/serial signals an expired read timeout with a
			// zero-byte read rather than an error.
			return nil, isp.NewTimeoutError("receive", t.portName)
		}
		got += read
	}
	return buf, nil
}

// SetTimeout adjusts the read timeout for subsequent Receive calls.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	if t.port == nil {
		return nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return isp.NewTransportError("set timeout", t.portName, err, isp.ErrorTypePermanent)
	}
	return nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.portName, err)
	}
	t.port = nil
	return nil
}

// IsConnected reports whether the port is open.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type returns TransportUART.
func (t *Transport) Type() isp.TransportType {
	return isp.TransportUART
}

// PortName returns the device path the transport was opened on.
func (t *Transport) PortName() string {
	return t.portName
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
