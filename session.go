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
	"encoding/binary"
	"fmt"
	"time"

	"github.com/nuvotools/go-isp/internal/frame"
)

// SessionState tracks where the session is in its lifecycle.
type SessionState int

const (
	// StateDisconnected is the initial state, before Connect.
	StateDisconnected SessionState = iota
	// StateConnecting is the state while the handshake is in progress.
	StateConnecting
	// StateConnected allows command execution and programming.
	StateConnected
	// StateClosed is terminal: the device rebooted after RUN_APROM,
	// RUN_LDROM, RESET or DISCONNECT and no longer acknowledges frames.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionConfig contains configuration options for a Session.
type SessionConfig struct {
	// RetryConfig configures the retry budget: transient transport
	// failures during exchanges, and CONNECT probes during the handshake
	RetryConfig *RetryConfig
	// Timeout is the per-exchange response timeout
	Timeout time.Duration
}

// DefaultSessionConfig returns the default session configuration. The
// 1-second timeout matches the bootloader's listening window default.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     1 * time.Second,
	}
}

// DeviceInfo is the session's view of the device, populated as read-only
// queries succeed. It is reported by the Inspector and never mutated
// externally.
type DeviceInfo struct {
	DeviceID        *uint32
	FirmwareVersion *uint32
	ConfigRegisters []uint32
	Connected       bool
}

// Session drives the stateful ISP conversation with the bootloader. It is
// the only component that touches the Transport, and it enforces the
// protocol's strict one-command-in-flight, ascending-write-order
// discipline.
//
// Thread Safety: Session is NOT thread-safe. The protocol is half-duplex
// and the bootloader's flash state machine is single-threaded, so all
// methods must be called from a single goroutine.
type Session struct {
	transport Transport
	config    *SessionConfig
	frameCfg  frame.Config
	info      DeviceInfo
	seq       uint32
	nextAddr  uint32
	state     SessionState
	haveNext  bool
}

// NewSession creates a Session owning the given transport.
func NewSession(transport Transport, opts ...Option) (*Session, error) {
	s := &Session{
		transport: transport,
		config:    DefaultSessionConfig(),
		frameCfg:  frame.DefaultConfig(),
		state:     StateDisconnected,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.frameCfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.transport.SetTimeout(s.config.Timeout); err != nil {
		return nil, fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return s, nil
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// Info returns a copy of the session's accumulated device information.
func (s *Session) Info() DeviceInfo {
	info := s.info
	info.Connected = s.state == StateConnected
	if s.info.ConfigRegisters != nil {
		info.ConfigRegisters = append([]uint32(nil), s.info.ConfigRegisters...)
	}
	return info
}

// Transport returns the underlying transport.
func (s *Session) Transport() Transport {
	return s.transport
}

// Timeout returns the per-exchange response timeout.
func (s *Session) Timeout() time.Duration {
	return s.config.Timeout
}

// SetTimeout sets the per-exchange response timeout.
func (s *Session) SetTimeout(timeout time.Duration) error {
	s.config.Timeout = timeout
	if err := s.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// PageCapacity returns the largest page data length that fits in one
// update frame alongside the 8-byte page header.
func (s *Session) PageCapacity() int {
	return s.frameCfg.Capacity() - 8
}

// Connect repeatedly probes the bootloader with CONNECT frames until one is
// acknowledged or the attempt budget is exhausted, then synchronizes the
// sequence counter. Each attempt blocks up to the session timeout.
//
// The LDROM is only listening for a short window after reset, so the
// target must be reset or power-cycled while Connect is running. Garbage
// or corrupt frames during the window are treated as a failed attempt and
// probed again; ErrNoResponse is returned once attempts run out.
func (s *Session) Connect(ctx context.Context) error {
	switch s.state {
	case StateClosed:
		return fmt.Errorf("connect: %w", ErrSessionClosed)
	case StateConnected:
		return nil
	case StateDisconnected, StateConnecting:
	}

	s.setState(StateConnecting)
	buf, err := s.frameCfg.Encode(frame.CmdConnect, 1, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	attempts := s.config.RetryConfig.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.setState(StateDisconnected)
			return fmt.Errorf("connect: %w", ctxErr)
		}

		s.seq = 1
		if err := s.transport.Send(buf); err != nil {
			debugf("connect attempt %d: send: %v", attempt, err)
			continue
		}
		raw, err := s.transport.Receive(s.frameCfg.Width)
		if err != nil {
			debugf("connect attempt %d: %v", attempt, err)
			continue
		}
		pkt, err := s.frameCfg.Decode(raw)
		if err != nil || pkt.Seq != s.seq+1 {
			// Line noise while the chip comes out of reset; probe again.
			debugf("connect attempt %d: discarding frame: %v", attempt, err)
			continue
		}

		s.seq += 2
		s.setState(StateConnected)
		debugf("connected after %d attempt(s)", attempt)
		if err := s.Sync(ctx); err != nil {
			s.setState(StateDisconnected)
			return err
		}
		return nil
	}

	s.setState(StateDisconnected)
	return fmt.Errorf("connect: %w after %d attempts", ErrNoResponse, attempts)
}

// Sync resets the packet sequence counter on both sides (SYNC_PACKNO) and
// clears the session's write pointer. The programmer calls it before each
// image so the bootloader's internal state is known-good.
func (s *Session) Sync(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	s.seq = 1
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, s.seq)
	if _, err := s.exchange(ctx, CmdSyncPackno, payload); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	s.haveNext = false
	return nil
}

// Execute sends one command and waits for its response. Transient
// transport failures are retried per the retry configuration; a response
// that fails checksum or sequence validation is surfaced immediately as
// ErrCorruptResponse and never masked by a retry.
func (s *Session) Execute(ctx context.Context, cmd Command, payload []byte) (*Packet, error) {
	if err := s.requireConnected(); err != nil {
		return nil, fmt.Errorf("command %s: %w", cmd, err)
	}
	return s.exchange(ctx, cmd, payload)
}

// WritePage sends one page of firmware data. Every page frame carries its
// own destination address and data length; the session refuses pages that
// do not continue at the device's write pointer, because the bootloader
// advances that pointer across successive update commands and reordering
// would silently corrupt flash.
func (s *Session) WritePage(ctx context.Context, cmd Command, addr uint32, page []byte) (*Packet, error) {
	if err := s.requireConnected(); err != nil {
		return nil, fmt.Errorf("command %s: %w", cmd, err)
	}
	if cmd != CmdUpdateAprom && cmd != CmdUpdateDataflash {
		return nil, fmt.Errorf("%w: %s is not an update command", ErrInvalidParameter, cmd)
	}
	if len(page) == 0 || len(page) > s.PageCapacity() {
		return nil, fmt.Errorf("%w: page length %d (capacity %d)",
			ErrInvalidParameter, len(page), s.PageCapacity())
	}
	if s.haveNext && addr != s.nextAddr {
		return nil, fmt.Errorf("%w: page at 0x%08X, device write pointer at 0x%08X",
			ErrOutOfOrderWrite, addr, s.nextAddr)
	}

	payload := make([]byte, 8+len(page))
	binary.LittleEndian.PutUint32(payload[0:4], addr)
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(page)))
	copy(payload[8:], page)

	pkt, err := s.exchange(ctx, cmd, payload)
	if err != nil {
		return nil, err
	}
	s.haveNext = true
	s.nextAddr = addr + uint32(len(page))
	return pkt, nil
}

// RunAPROM boots the application firmware. Terminal: the session closes.
func (s *Session) RunAPROM(ctx context.Context) error {
	return s.terminate(ctx, CmdRunAprom)
}

// RunLDROM reboots into the bootloader. Terminal: the session closes.
func (s *Session) RunLDROM(ctx context.Context) error {
	return s.terminate(ctx, CmdRunLdrom)
}

// Reset resets the device. Terminal: the session closes.
func (s *Session) Reset(ctx context.Context) error {
	return s.terminate(ctx, CmdReset)
}

// Disconnect tells the bootloader the host is done. Terminal: the session
// closes.
func (s *Session) Disconnect(ctx context.Context) error {
	return s.terminate(ctx, CmdDisconnect)
}

// Close closes the session's transport. The session is unusable afterward.
func (s *Session) Close() error {
	s.setState(StateClosed)
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// terminate fires a reboot-class command. The device stops acknowledging
// once it receives one, so the frame is sent without awaiting a response
// and the session refuses all further I/O.
func (s *Session) terminate(ctx context.Context, cmd Command) error {
	if err := s.requireConnected(); err != nil {
		return fmt.Errorf("command %s: %w", cmd, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("command %s: %w", cmd, ctxErr)
	}
	buf, err := s.frameCfg.Encode(byte(cmd), s.seq, nil)
	if err != nil {
		return fmt.Errorf("command %s: %w", cmd, err)
	}
	sendErr := s.transport.Send(buf)
	s.setState(StateClosed)
	if sendErr != nil {
		return fmt.Errorf("command %s: %w", cmd, sendErr)
	}
	debugf("sent %s, session closed", cmd)
	return nil
}

func (s *Session) setState(next SessionState) {
	if s.state != next {
		debugln("session state:", s.state, "->", next)
	}
	s.state = next
}

func (s *Session) requireConnected() error {
	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateConnected:
		return nil
	case StateDisconnected, StateConnecting:
	}
	return ErrNotConnected
}

// exchange performs one strict request/response round trip and advances
// the sequence counter. The device answers with the host sequence plus
// one; the host then steps by two, mirroring the bootloader's counter.
func (s *Session) exchange(ctx context.Context, cmd Command, payload []byte) (*Packet, error) {
	buf, err := s.frameCfg.Encode(byte(cmd), s.seq, payload)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", cmd, err)
	}

	var raw []byte
	err = RetryWithConfig(ctx, s.config.RetryConfig, func() error {
		if sendErr := s.transport.Send(buf); sendErr != nil {
			return sendErr
		}
		var recvErr error
		raw, recvErr = s.transport.Receive(s.frameCfg.Width)
		return recvErr
	})
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("command %s: %w: %w", cmd, ErrTimeout, err)
		}
		return nil, fmt.Errorf("command %s: %w", cmd, err)
	}

	pkt, err := s.frameCfg.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w: %w", cmd, ErrCorruptResponse, err)
	}
	if pkt.Seq != s.seq+1 {
		return nil, fmt.Errorf("command %s: %w: sequence %d, want %d",
			cmd, ErrCorruptResponse, pkt.Seq, s.seq+1)
	}

	s.seq += 2
	debugf("%s ok (seq %d)", cmd, pkt.Seq)
	return &Packet{
		Command: Command(pkt.Command),
		Seq:     pkt.Seq,
		Payload: pkt.Payload,
	}, nil
}

// cache setters used by the Inspector

func (s *Session) cacheDeviceID(id uint32) {
	s.info.DeviceID = &id
}

func (s *Session) cacheFirmwareVersion(v uint32) {
	s.info.FirmwareVersion = &v
}

func (s *Session) cacheConfigRegisters(regs []uint32) {
	s.info.ConfigRegisters = append([]uint32(nil), regs...)
}
