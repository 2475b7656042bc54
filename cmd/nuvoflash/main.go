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

// nuvoflash flashes firmware onto Nuvoton microcontrollers through the
// LDROM serial bootloader.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	isp "github.com/nuvotools/go-isp"
	"github.com/nuvotools/go-isp/transport/uart"
)

type config struct {
	port       *string
	file       *string
	baud       *int
	timeout    *time.Duration
	retries    *int
	frameWidth *int
	crc16      *bool
	dataFlash  *bool
	erase      *bool
	runAPROM   *bool
	runLDROM   *bool
	reset      *bool
	info       *bool
	listPorts  *bool
	debug      *bool
}

func parseFlags() *config {
	cfg := &config{
		port:       flag.String("port", "", "Serial device path (e.g., /dev/ttyUSB0 or COM3)"),
		file:       flag.String("file", "", "Firmware image to flash into APROM"),
		baud:       flag.Int("baud", uart.DefaultBaudRate, "Serial baud rate"),
		timeout:    flag.Duration("timeout", time.Second, "Per-command response timeout"),
		retries:    flag.Int("retries", 3, "Attempts per command before giving up"),
		frameWidth: flag.Int("frame-width", 64, "Wire frame width in bytes for the chip family"),
		crc16:      flag.Bool("crc16", false, "Use CRC-16/CCITT framing instead of the additive checksum"),
		dataFlash:  flag.Bool("data-flash", false, "Write the image to data flash instead of APROM"),
		erase:      flag.Bool("erase", false, "Erase all flash before writing"),
		runAPROM:   flag.Bool("run-aprom", false, "Boot the application after all other operations"),
		runLDROM:   flag.Bool("run-ldrom", false, "Reboot back into the bootloader when done"),
		reset:      flag.Bool("reset", false, "Issue a chip reset when done"),
		info:       flag.Bool("info", false, "Print device ID, firmware version and config registers"),
		listPorts:  flag.Bool("list", false, "List available serial ports and exit"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		isp.SetDebugEnabled(true)
	}

	return cfg
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "nuvoflash: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	if *cfg.listPorts {
		return listPorts()
	}
	if *cfg.port == "" {
		return errors.New("no serial port given (use -port, or -list to enumerate)")
	}
	if *cfg.file == "" && !*cfg.erase && !*cfg.info &&
		!*cfg.runAPROM && !*cfg.runLDROM && !*cfg.reset {
		return errors.New("nothing to do (use -file, -erase, -info or a boot flag)")
	}

	ctx := context.Background()

	transport, err := uart.New(*cfg.port, uart.WithBaudRate(*cfg.baud))
	if err != nil {
		return fmt.Errorf("open port: %w", err)
	}

	opts := []isp.Option{
		isp.WithTimeout(*cfg.timeout),
		isp.WithMaxRetries(*cfg.retries),
		isp.WithFrameWidth(*cfg.frameWidth),
	}
	if *cfg.crc16 {
		opts = append(opts, isp.WithChecksum(isp.ChecksumCRC16))
	}

	session, err := isp.NewSession(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return err
	}
	defer func() { _ = session.Close() }()

	fmt.Printf("Connecting to bootloader on %s...\n", *cfg.port)
	if err := session.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w (is the chip in ISP mode?)", err)
	}

	if *cfg.info {
		if err := printInfo(ctx, session); err != nil {
			return err
		}
	}

	if *cfg.file != "" || *cfg.erase {
		if err := program(ctx, session, cfg); err != nil {
			return err
		}
	}

	switch {
	case *cfg.runAPROM:
		fmt.Println("Booting APROM...")
		return session.RunAPROM(ctx)
	case *cfg.runLDROM:
		fmt.Println("Rebooting into LDROM...")
		return session.RunLDROM(ctx)
	case *cfg.reset:
		fmt.Println("Resetting chip...")
		return session.Reset(ctx)
	}
	return nil
}

func listPorts() error {
	ports, err := uart.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}
	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}

func printInfo(ctx context.Context, session *isp.Session) error {
	inspector := isp.NewInspector(session)

	id, err := inspector.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("read device ID: %w", err)
	}
	fmt.Printf("Device ID:        0x%08X\n", id)

	version, err := inspector.FirmwareVersion(ctx)
	if err != nil {
		return fmt.Errorf("read firmware version: %w", err)
	}
	fmt.Printf("Firmware version: 0x%08X\n", version)

	regs, err := inspector.ConfigRegisters(ctx)
	if err != nil {
		return fmt.Errorf("read config registers: %w", err)
	}
	for i, reg := range regs {
		fmt.Printf("Config%d:          0x%08X\n", i, reg)
	}

	mode, err := inspector.FlashMode(ctx)
	if err != nil {
		return fmt.Errorf("read flash mode: %w", err)
	}
	fmt.Printf("Boot region:      %s\n", mode)
	return nil
}

func program(ctx context.Context, session *isp.Session, cfg *config) error {
	var popts []isp.ProgrammerOption
	if *cfg.dataFlash {
		popts = append(popts, isp.WithDataFlash())
	}

	var bar *progressbar.ProgressBar
	popts = append(popts, isp.WithProgress(func(p isp.Progress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Writing"),
				progressbar.OptionShowBytes(true),
				progressbar.OptionOnCompletion(func() { fmt.Println() }),
			)
		}
		_ = bar.Set(p.Written)
	}))

	programmer, err := isp.NewProgrammer(session, popts...)
	if err != nil {
		return err
	}

	if *cfg.erase {
		fmt.Println("Erasing flash...")
		if err := programmer.EraseAll(ctx); err != nil {
			return fmt.Errorf("erase: %w", err)
		}
	}

	if *cfg.file == "" {
		return nil
	}

	image, err := isp.LoadFirmware(*cfg.file)
	if err != nil {
		return fmt.Errorf("load firmware: %w", err)
	}
	fmt.Printf("Flashing %s (%d bytes)...\n", *cfg.file, image.Len())

	if err := programmer.Write(ctx, image); err != nil {
		return fmt.Errorf("flash: %w", err)
	}
	return nil
}
