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
	"fmt"
	"time"

	"github.com/nuvotools/go-isp/internal/frame"
)

// Flash region base addresses for the Nuvoton parts this tool targets.
const (
	// BaseAPROM is the application flash base address.
	BaseAPROM uint32 = 0x0000_0000
	// BaseLDROM is the bootloader flash base address.
	BaseLDROM uint32 = 0x0010_0000
)

// Progress describes one step of a programming run, for progress bars and
// logging.
type Progress struct {
	// Written is the number of image bytes flashed so far
	Written int
	// Total is the image length in bytes
	Total int
	// Address is the flash address of the page just written
	Address uint32
}

// ProgressFunc receives programming progress updates.
type ProgressFunc func(Progress)

// Programmer walks a firmware image and drives the session to erase, write
// and verify pages. A rejected page aborts the whole run: partial,
// undetected corruption is worse than a hard stop.
type Programmer struct {
	session      *Session
	progress     ProgressFunc
	pageSize     int
	base         uint32
	command      Command
	fill         byte
	eraseTimeout time.Duration
}

// ProgrammerOption is a functional option for configuring a Programmer.
type ProgrammerOption func(*Programmer) error

// WithPageSize sets the page size. It must fit the session's frame
// capacity; the default uses the full capacity.
func WithPageSize(size int) ProgrammerOption {
	return func(p *Programmer) error {
		if size <= 0 || size > p.session.PageCapacity() {
			return fmt.Errorf("%w: page size %d (1..%d)",
				ErrInvalidParameter, size, p.session.PageCapacity())
		}
		p.pageSize = size
		return nil
	}
}

// WithBaseAddress sets the destination flash base address.
func WithBaseAddress(addr uint32) ProgrammerOption {
	return func(p *Programmer) error {
		p.base = addr
		return nil
	}
}

// WithDataFlash targets the data flash region (UPDATE_DATAFLASH) instead
// of APROM.
func WithDataFlash() ProgrammerOption {
	return func(p *Programmer) error {
		p.command = CmdUpdateDataflash
		return nil
	}
}

// WithFillByte sets the pad byte for a partial tail page. Use 0xFF for
// parts whose erased state is all-ones.
func WithFillByte(fill byte) ProgrammerOption {
	return func(p *Programmer) error {
		p.fill = fill
		return nil
	}
}

// WithEraseTimeout sets the response timeout used for ERASE_ALL, which
// takes much longer than a normal exchange.
func WithEraseTimeout(timeout time.Duration) ProgrammerOption {
	return func(p *Programmer) error {
		p.eraseTimeout = timeout
		return nil
	}
}

// WithProgress sets a callback invoked after each page is acknowledged.
func WithProgress(fn ProgressFunc) ProgrammerOption {
	return func(p *Programmer) error {
		p.progress = fn
		return nil
	}
}

// NewProgrammer creates a Programmer driving the given session.
func NewProgrammer(session *Session, opts ...ProgrammerOption) (*Programmer, error) {
	p := &Programmer{
		session:      session,
		pageSize:     session.PageCapacity(),
		base:         BaseAPROM,
		command:      CmdUpdateAprom,
		fill:         0x00,
		eraseTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EraseAll erases the entire flash. Destructive and irreversible; only
// call it when the user explicitly asked for it.
func (p *Programmer) EraseAll(ctx context.Context) error {
	previous := p.session.Timeout()
	if err := p.session.SetTimeout(p.eraseTimeout); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	defer func() { _ = p.session.SetTimeout(previous) }()

	pkt, err := p.session.Execute(ctx, CmdEraseAll, nil)
	if err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if status := pkt.Payload[0]; status != frame.StatusOK {
		return fmt.Errorf("erase: %w: status 0x%02X", ErrEraseFailed, status)
	}
	return nil
}

// Write flashes the image page by page in ascending address order,
// starting at the configured base address. Each page is acknowledged
// before the next is sent; a rejected page aborts with PageRejectedError
// carrying the offending flash address. A rejected page is a protocol
// failure, not a transport glitch, so it is never retried here.
func (p *Programmer) Write(ctx context.Context, image *FirmwareImage) error {
	if image == nil || image.Len() == 0 {
		return fmt.Errorf("write: %w: empty firmware image", ErrInvalidParameter)
	}

	// Re-synchronize so the bootloader's write pointer starts clean.
	if err := p.session.Sync(ctx); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	total := image.Len()
	for offset := 0; offset < total; offset += p.pageSize {
		page := image.Page(offset, p.pageSize, p.fill)
		addr := p.base + uint32(offset)

		pkt, err := p.session.WritePage(ctx, p.command, addr, page)
		if err != nil {
			return fmt.Errorf("write page at 0x%08X: %w", addr, err)
		}
		if status := pkt.Payload[0]; status != frame.StatusOK {
			return fmt.Errorf("write: %w", &PageRejectedError{Address: addr, Status: status})
		}

		written := offset + len(page)
		if written > total {
			written = total
		}
		if p.progress != nil {
			p.progress(Progress{Written: written, Total: total, Address: addr})
		}
	}
	return nil
}
