// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialbus carries BNO055 register transactions over its UART
// interface and presents them as an i2c.Bus, so the bno055 driver works
// unchanged when the sensor is strapped for serial.
package serialbus

import (
	"errors"
	"fmt"
	"io"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Frame bytes of the BNO055 UART protocol.
const (
	startByte    = 0xAA
	cmdWrite     = 0x00
	cmdRead      = 0x01
	respStatus   = 0xEE
	respReadData = 0xBB

	statusWriteSuccess = 0x01
)

// MaxLength is the longest register block one frame can carry.
const MaxLength = 128

// DefaultBaudRate is the only rate the BNO055 UART supports.
const DefaultBaudRate = 115200

// StatusError is an error status returned by the device.
type StatusError byte

var statusText = map[StatusError]string{
	0x02: "read fail",
	0x03: "write fail",
	0x04: "invalid register address",
	0x05: "register write disabled",
	0x06: "wrong start byte",
	0x07: "bus over run",
	0x08: "max length error",
	0x09: "min length error",
	0x0A: "receive character timeout",
}

func (s StatusError) Error() string {
	if txt, ok := statusText[s]; ok {
		return fmt.Sprintf("serialbus: device status 0x%02X: %s", byte(s), txt)
	}
	return fmt.Sprintf("serialbus: device status 0x%02X", byte(s))
}

// Bus is an i2c.BusCloser over a BNO055 UART link. The device address passed
// to Tx is ignored since the link is point to point.
type Bus struct {
	mu       sync.Mutex
	name     string
	port     io.ReadWriteCloser
	reg      byte
	selected bool
}

var _ i2c.BusCloser = (*Bus)(nil)

// Open opens the serial port at portName. A baud of 0 selects
// DefaultBaudRate.
func Open(portName string, baud uint) (*Bus, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("serialbus: open %s: %w", portName, err)
	}
	return New(port, portName), nil
}

// New wraps an already opened port.
func New(port io.ReadWriteCloser, name string) *Bus {
	return &Bus{name: name, port: port}
}

func (b *Bus) String() string { return "serial(" + b.name + ")" }

// Close closes the port.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}

// SetSpeed is not supported; the speed is the baud rate.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return errors.New("serialbus: speed is fixed by the baud rate")
}

// Tx maps an I²C style transaction onto UART frames:
//   - w=[reg], r empty: selects reg for the next read without a register byte
//   - w=[reg, data...], r empty: register write
//   - r non empty: register read from w[0], or from the selected register when
//     w is empty
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(r) == 0 {
		switch len(w) {
		case 0:
			return nil
		case 1:
			b.reg, b.selected = w[0], true
			return nil
		}
		return b.write(w[0], w[1:])
	}

	var reg byte
	switch len(w) {
	case 0:
		if !b.selected {
			return errors.New("serialbus: read without a selected register")
		}
		reg = b.reg
	case 1:
		reg = w[0]
	default:
		return errors.New("serialbus: write followed by read is not supported")
	}
	return b.read(reg, r)
}

func (b *Bus) write(reg byte, data []byte) error {
	if len(data) > MaxLength {
		return fmt.Errorf("serialbus: write of %d bytes exceeds %d", len(data), MaxLength)
	}
	frame := append([]byte{startByte, cmdWrite, reg, byte(len(data))}, data...)
	if _, err := b.port.Write(frame); err != nil {
		return fmt.Errorf("serialbus: write register 0x%02X: %w", reg, err)
	}
	var resp [2]byte
	if _, err := io.ReadFull(b.port, resp[:]); err != nil {
		return fmt.Errorf("serialbus: write register 0x%02X ack: %w", reg, err)
	}
	if resp[0] != respStatus {
		return fmt.Errorf("serialbus: write register 0x%02X: unexpected response 0x%02X", reg, resp[0])
	}
	if resp[1] != statusWriteSuccess {
		return StatusError(resp[1])
	}
	return nil
}

func (b *Bus) read(reg byte, r []byte) error {
	if len(r) > MaxLength {
		return fmt.Errorf("serialbus: read of %d bytes exceeds %d", len(r), MaxLength)
	}
	if _, err := b.port.Write([]byte{startByte, cmdRead, reg, byte(len(r))}); err != nil {
		return fmt.Errorf("serialbus: read register 0x%02X: %w", reg, err)
	}
	var hdr [2]byte
	if _, err := io.ReadFull(b.port, hdr[:]); err != nil {
		return fmt.Errorf("serialbus: read register 0x%02X header: %w", reg, err)
	}
	switch hdr[0] {
	case respReadData:
	case respStatus:
		return StatusError(hdr[1])
	default:
		return fmt.Errorf("serialbus: read register 0x%02X: unexpected response 0x%02X", reg, hdr[0])
	}
	if int(hdr[1]) != len(r) {
		return fmt.Errorf("serialbus: read register 0x%02X: got %d bytes, want %d", reg, hdr[1], len(r))
	}
	if _, err := io.ReadFull(b.port, r); err != nil {
		return fmt.Errorf("serialbus: read register 0x%02X data: %w", reg, err)
	}
	return nil
}
