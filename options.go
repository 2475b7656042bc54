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

	"github.com/nuvotools/go-isp/internal/frame"
)

// ChecksumAlgorithm selects the frame checksum scheme. The algorithm and
// frame width vary across Nuvoton chip families, so both are session
// configuration rather than constants.
type ChecksumAlgorithm int

const (
	// ChecksumSum16 is the 16-bit byte sum used by most Nuvoton parts.
	ChecksumSum16 ChecksumAlgorithm = ChecksumAlgorithm(frame.ChecksumSum16)
	// ChecksumCRC16 is CRC-16-CCITT, used by families that replace the
	// byte sum with a CRC.
	ChecksumCRC16 ChecksumAlgorithm = ChecksumAlgorithm(frame.ChecksumCRC16)
)

// Option is a functional option for configuring a Session
type Option func(*Session) error

// WithTimeout sets the per-exchange response timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) error {
		s.config.Timeout = timeout
		return nil
	}
}

// WithMaxRetries sets the attempt budget used for CONNECT probes and for
// retrying transient transport failures
func WithMaxRetries(maxAttempts int) Option {
	return func(s *Session) error {
		if s.config.RetryConfig == nil {
			s.config.RetryConfig = DefaultRetryConfig()
		}
		s.config.RetryConfig.MaxAttempts = maxAttempts
		return nil
	}
}

// WithRetryConfig sets the full retry configuration
func WithRetryConfig(config *RetryConfig) Option {
	return func(s *Session) error {
		if config == nil {
			config = DefaultRetryConfig()
		}
		s.config.RetryConfig = config
		return nil
	}
}

// WithFrameWidth sets the wire frame width for the target chip family
func WithFrameWidth(width int) Option {
	return func(s *Session) error {
		s.frameCfg.Width = width
		return s.frameCfg.Validate()
	}
}

// WithChecksum sets the frame checksum algorithm for the target chip family
func WithChecksum(algorithm ChecksumAlgorithm) Option {
	return func(s *Session) error {
		s.frameCfg.Checksum = frame.ChecksumKind(algorithm)
		return nil
	}
}
