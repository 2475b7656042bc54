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

// Package ispdev provides a simulated LDROM bootloader for integration
// testing without hardware. Device implements isp.Transport, so a real
// Session can be driven end to end against it.
package ispdev

import (
	"encoding/binary"
	"sync"
	"time"

	isp "github.com/nuvotools/go-isp"
	"github.com/nuvotools/go-isp/internal/frame"
)

// PageWrite records one accepted page update.
type PageWrite struct {
	Data    []byte
	Address uint32
	Command byte
}

// Device simulates a Nuvoton LDROM bootloader behind the Transport
// interface. All exported fields are read or set between exchanges;
// Device itself serializes Send/Receive with a mutex.
type Device struct {
	flash map[uint32]byte

	// DeviceID, FirmwareVersion, Config0 and Config1 are the register
	// values the simulated chip reports.
	DeviceID        uint32
	FirmwareVersion uint32
	Config0         uint32
	Config1         uint32

	// BootMode is what GET_FLASHMODE reports (1 APROM, 2 LDROM).
	BootMode byte

	// DropConnects makes the device swallow that many CONNECT frames
	// before answering, simulating a target still in reset.
	DropConnects int

	// FailAtPage, when non-negative, rejects the Nth page update
	// (0-based) with RejectStatus instead of writing it.
	FailAtPage   int
	RejectStatus byte

	// Writes logs every accepted page update in order.
	Writes []PageWrite

	// Erased counts ERASE_ALL commands handled.
	Erased int

	cfg       frame.Config
	pending   []byte
	pageCount int
	mu        sync.Mutex
	connected bool
	closed    bool
}

// New creates a Device with sane register defaults and the given frame
// configuration (use frame.DefaultConfig() for the stock 64-byte wire).
func New(cfg frame.Config) *Device {
	return &Device{
		cfg:             cfg,
		flash:           make(map[uint32]byte),
		DeviceID:        0x0000_1023,
		FirmwareVersion: 0x26,
		Config0:         0xFFFF_FFFF,
		Config1:         0xFFFF_FFFF,
		BootMode:        2,
		FailAtPage:      -1,
		RejectStatus:    0x1C,
	}
}

// Flash returns n bytes of simulated flash starting at addr. Unwritten
// bytes read back as 0xFF, matching erased NOR flash.
func (d *Device) Flash(addr uint32, n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		if b, ok := d.flash[addr+uint32(i)]; ok {
			out[i] = b
		} else {
			out[i] = 0xFF
		}
	}
	return out
}

// Send accepts one host frame and, when the bootloader would answer,
// stages the response for the next Receive.
func (d *Device) Send(raw []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return isp.NewTransportError("send", "virtual", isp.ErrTransportWrite, isp.ErrorTypePermanent)
	}

	pkt, err := d.cfg.Decode(raw)
	if err != nil {
		// A garbled frame gets no answer; the host times out and resends.
		return nil
	}
	d.handle(pkt)
	return nil
}

func (d *Device) handle(pkt frame.Packet) {
	switch pkt.Command {
	case frame.CmdConnect:
		if d.DropConnects > 0 {
			d.DropConnects--
			return
		}
		d.connected = true
		d.reply(pkt, nil)
	case frame.CmdSyncPackno:
		d.reply(pkt, nil)
	case frame.CmdGetDeviceID:
		d.replyU32(pkt, d.DeviceID)
	case frame.CmdGetFwVersion:
		d.replyU32(pkt, d.FirmwareVersion)
	case frame.CmdReadConfig:
		payload := make([]byte, 8)
		binary.LittleEndian.PutUint32(payload[0:4], d.Config0)
		binary.LittleEndian.PutUint32(payload[4:8], d.Config1)
		d.reply(pkt, payload)
	case frame.CmdGetFlashMode:
		d.reply(pkt, []byte{d.BootMode})
	case frame.CmdEraseAll:
		d.flash = make(map[uint32]byte)
		d.Erased++
		d.reply(pkt, nil)
	case frame.CmdUpdateAprom, frame.CmdUpdateDataflash, frame.CmdUpdateConfig:
		d.handleUpdate(pkt)
	case frame.CmdRunAprom, frame.CmdRunLdrom, frame.CmdReset, frame.CmdDisconnect:
		// The chip reboots: the session ends and nothing is sent back.
		d.connected = false
		d.pending = nil
	default:
		d.reply(pkt, nil)
	}
}

func (d *Device) handleUpdate(pkt frame.Packet) {
	if len(pkt.Payload) < 8 {
		d.reply(pkt, []byte{0x01})
		return
	}
	addr := binary.LittleEndian.Uint32(pkt.Payload[0:4])
	length := binary.LittleEndian.Uint32(pkt.Payload[4:8])
	if int(length) > len(pkt.Payload)-8 {
		d.reply(pkt, []byte{0x01})
		return
	}

	index := d.pageCount
	d.pageCount++
	if d.FailAtPage >= 0 && index == d.FailAtPage {
		d.reply(pkt, []byte{d.RejectStatus})
		return
	}

	data := make([]byte, length)
	copy(data, pkt.Payload[8:8+length])
	for i, b := range data {
		d.flash[addr+uint32(i)] = b
	}
	d.Writes = append(d.Writes, PageWrite{
		Data:    data,
		Address: addr,
		Command: pkt.Command,
	})
	d.reply(pkt, nil)
}

func (d *Device) reply(pkt frame.Packet, payload []byte) {
	out, err := d.cfg.EncodeResponse(pkt.Command, pkt.Seq+1, payload)
	if err != nil {
		return
	}
	d.pending = out
}

func (d *Device) replyU32(pkt frame.Packet, v uint32) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, v)
	d.reply(pkt, payload)
}

// Receive returns the staged response, or a timeout error when the
// bootloader has nothing to say.
func (d *Device) Receive(n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, isp.NewTransportError("receive", "virtual", isp.ErrTransportRead, isp.ErrorTypePermanent)
	}
	if d.pending == nil {
		return nil, isp.NewTimeoutError("receive", "virtual")
	}
	out := d.pending
	d.pending = nil
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// SetTimeout is a no-op; the simulated device answers immediately.
func (d *Device) SetTimeout(time.Duration) error { return nil }

// Close shuts the device down; further I/O fails.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.connected = false
	return nil
}

// IsConnected reports whether a CONNECT handshake has completed.
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Type returns TransportVirtual.
func (d *Device) Type() isp.TransportType {
	return isp.TransportVirtual
}
