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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirmware(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.bin")
	content := []byte{0x00, 0x10, 0x00, 0x20, 0xC1, 0x00, 0x00, 0x00}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	image, err := LoadFirmware(path)
	require.NoError(t, err)
	assert.Equal(t, len(content), image.Len())
	assert.Equal(t, content, image.Bytes())
}

func TestLoadFirmwareMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFirmware(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err)
}

func TestLoadFirmwareEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := LoadFirmware(path)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFirmwareCopiesInput(t *testing.T) {
	t.Parallel()

	src := []byte{1, 2, 3}
	image := NewFirmware(src)
	src[0] = 0xFF
	assert.Equal(t, byte(1), image.Bytes()[0])
}

func TestFirmwarePage(t *testing.T) {
	t.Parallel()

	image := NewFirmware([]byte{1, 2, 3, 4, 5})

	assert.Equal(t, []byte{1, 2, 3, 4}, image.Page(0, 4, 0xFF))
	// Tail page padded with the fill byte up to the page size.
	assert.Equal(t, []byte{5, 0xFF, 0xFF, 0xFF}, image.Page(4, 4, 0xFF))
}
