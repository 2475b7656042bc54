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
	"errors"
	"fmt"
	"os"

	"github.com/nuvotools/go-isp/internal/frame"
)

// Codec errors, surfaced from the frame package so callers can match them
// without importing internals.
var (
	// ErrFrameTruncated indicates a response shorter than one frame.
	ErrFrameTruncated = frame.ErrTruncated
	// ErrChecksumMismatch indicates a frame whose checksum does not match
	// its content.
	ErrChecksumMismatch = frame.ErrChecksumMismatch
)

// Session errors
var (
	// ErrNoResponse is returned by Connect after every attempt went
	// unanswered.
	ErrNoResponse = errors.New("no response from device")
	// ErrTimeout is returned when a command exchange exhausted its timeout
	// (and retries) without a response.
	ErrTimeout = errors.New("operation timeout")
	// ErrCorruptResponse is returned when the device answered but the frame
	// failed checksum or sequence validation. Never retried silently.
	ErrCorruptResponse = errors.New("corrupt response")
	// ErrSessionClosed is returned for any I/O attempted after a terminal
	// command (RUN_APROM, RUN_LDROM, RESET, DISCONNECT).
	ErrSessionClosed = errors.New("session closed")
	// ErrNotConnected is returned for commands issued before Connect
	// succeeded.
	ErrNotConnected = errors.New("not connected")
	// ErrOutOfOrderWrite is returned when a page write does not continue at
	// the device's write pointer. The bootloader advances its pointer
	// across successive update commands, so the host refuses to reorder.
	ErrOutOfOrderWrite = errors.New("out-of-order page write")
)

// Programmer errors
var (
	// ErrEraseFailed indicates the device rejected or failed ERASE_ALL.
	ErrEraseFailed = errors.New("erase failed")
)

// Transport errors
var (
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrCommunicationFailed = errors.New("communication failed")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// ErrorType classifies an error for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve on retry
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve on retry
	ErrorTypeTransient
	// ErrorTypeTimeout indicates the operation timed out
	ErrorTypeTimeout
)

// TransportError wraps a transport failure with enough context to diagnose
// a cabling issue versus a protocol issue.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("transport %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with retryability derived from
// the error type.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError for a read deadline that expired
// without data.
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportTimeout,
		Type:      ErrorTypeTimeout,
		Retryable: true,
	}
}

// PageRejectedError indicates the device refused a page write. This is a
// protocol-level failure, not a transport glitch: the programmer aborts the
// run rather than retrying it.
type PageRejectedError struct {
	Address uint32
	Status  byte
}

func (e *PageRejectedError) Error() string {
	return fmt.Sprintf("page rejected at 0x%08X (status 0x%02X)", e.Address, e.Status)
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Corrupt responses and protocol-state errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	switch {
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, os.ErrDeadlineExceeded):
		return true
	}
	return false
}

// GetErrorType classifies err for reporting.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrTimeout),
		errors.Is(err, os.ErrDeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed):
		return ErrorTypeTransient
	}
	return ErrorTypePermanent
}

// isTimeout reports whether err is any flavor of expired deadline.
func isTimeout(err error) bool {
	return GetErrorType(err) == ErrorTypeTimeout
}
