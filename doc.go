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

/*
Package isp flashes firmware onto Nuvoton microcontrollers over a UART
link, speaking to the chip's ROM-resident bootloader (LDROM).

The library is organized around three pieces. A Session owns the serial
transport and drives the ISP command protocol: fixed-width checksummed
frames, the connect handshake, sequence tracking and retry policy. A
Programmer walks a firmware image page by page through the session. An
Inspector issues read-only queries: device ID, LDROM firmware version and
configuration registers.

Basic Usage:

	import (
	    "github.com/nuvotools/go-isp"
	    "github.com/nuvotools/go-isp/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	session, err := isp.NewSession(transport,
	    isp.WithTimeout(time.Second),
	    isp.WithMaxRetries(10),
	)
	if err != nil {
	    log.Fatal(err)
	}

	// The LDROM only listens briefly after reset: reset or power-cycle
	// the target while Connect is probing.
	if err := session.Connect(ctx); err != nil {
	    log.Fatal(err)
	}

	image, err := isp.LoadFirmware("firmware.bin")
	if err != nil {
	    log.Fatal(err)
	}

	prog, err := isp.NewProgrammer(session)
	if err != nil {
	    log.Fatal(err)
	}
	if err := prog.EraseAll(ctx); err != nil {
	    log.Fatal(err)
	}
	if err := prog.Write(ctx, image); err != nil {
	    log.Fatal(err)
	}

	// Boot the freshly written application. The session is closed
	// afterward; the device no longer acknowledges frames.
	_ = session.RunAPROM(ctx)

Chip Families:

Frame width and checksum algorithm vary across Nuvoton families. Both are
session options (WithFrameWidth, WithChecksum) rather than constants;
the defaults match the common 64-byte, 16-bit-sum UART bootloader.

Error Handling:

All operations return errors that can be inspected with errors.Is and
errors.As:

	if errors.Is(err, isp.ErrNoResponse) {
	    // target was never reset into the bootloader window
	}
	var rejected *isp.PageRejectedError
	if errors.As(err, &rejected) {
	    // flash address rejected by the device: rejected.Address
	}

Thread Safety:

Session operations are not thread-safe. The protocol is half-duplex with
one command in flight at a time; drive a session from a single goroutine.
*/
package isp
