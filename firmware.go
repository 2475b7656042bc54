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
	"os"
)

// FirmwareImage is a flat binary firmware image, loaded once and consumed
// page by page. There is no header or embedded length field; the length is
// the file size.
type FirmwareImage struct {
	data []byte
}

// LoadFirmware reads a flat binary image from path.
func LoadFirmware(path string) (*FirmwareImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read firmware file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: firmware file %s is empty", ErrInvalidParameter, path)
	}
	return &FirmwareImage{data: data}, nil
}

// NewFirmware wraps raw image bytes. The image keeps its own copy so the
// caller's slice cannot mutate it afterward.
func NewFirmware(data []byte) *FirmwareImage {
	return &FirmwareImage{data: append([]byte(nil), data...)}
}

// Len returns the image length in bytes.
func (f *FirmwareImage) Len() int {
	return len(f.data)
}

// Bytes returns the image content. The returned slice must not be
// modified.
func (f *FirmwareImage) Bytes() []byte {
	return f.data
}

// Page returns the page of the given size starting at offset. A tail page
// past the end of the image is padded with fill, never left uninitialized:
// the padding is flashed alongside the data.
func (f *FirmwareImage) Page(offset, size int, fill byte) []byte {
	page := make([]byte, size)
	n := copy(page, f.data[offset:])
	for i := n; i < size; i++ {
		page[i] = fill
	}
	return page
}
